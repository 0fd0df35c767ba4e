package document

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CountPDFPages counts the pages in a rendered PDF. It tries pdfinfo first
// and falls back to ghostscript; page counting is best effort, so callers
// treat an error as "unknown" rather than a stage failure.
func CountPDFPages(pdfPath string) (int, error) {
	if count, err := countPagesWithPdfinfo(pdfPath); err == nil {
		return count, nil
	}
	if count, err := countPagesWithGhostscript(pdfPath); err == nil {
		return count, nil
	}
	return 0, fmt.Errorf("neither pdfinfo nor ghostscript could read %s", pdfPath)
}

func countPagesWithPdfinfo(pdfPath string) (int, error) {
	output, err := exec.Command("pdfinfo", pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo command failed: %w", err)
	}

	for _, line := range strings.Split(string(output), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			if count, err := strconv.Atoi(parts[1]); err == nil {
				return count, nil
			}
		}
	}
	return 0, fmt.Errorf("could not parse page count from pdfinfo output")
}

func countPagesWithGhostscript(pdfPath string) (int, error) {
	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", pdfPath)
	output, err := exec.Command("gs", "-q", "-dNODISPLAY", "-c", script).Output()
	if err != nil {
		return 0, fmt.Errorf("ghostscript command failed: %w", err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0, fmt.Errorf("could not parse page count from ghostscript output: %s", output)
	}
	return count, nil
}
