// Package document renders the approved report to a distributable PDF with
// a companion chart page. The stage is optional: a host with no conversion
// backend installed skips formatting without failing the workflow.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/types"
)

// Formatter is the document formatting stage.
type Formatter struct {
	backends []Backend
	logger   *zap.Logger
}

// NewFormatter creates a formatter using the backends installed on the
// host. Pass explicit backends in tests.
func NewFormatter(logger *zap.Logger, backends ...Backend) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(backends) == 0 {
		backends = DetectBackends()
	}
	return &Formatter{
		backends: backends,
		logger:   logger,
	}
}

// Execute renders the report to a PDF at outputPath. No installed backend
// is a skip, not a failure; a backend that is present but cannot convert
// fails the stage.
func (f *Formatter) Execute(ctx context.Context, report *types.GeneratedReport, outputPath string) (result types.AgentResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = types.NewFailureResult(types.StageFormat, fmt.Errorf("document formatting panicked: %v", r), started)
		}
	}()

	if report == nil {
		return types.NewFailureResult(types.StageFormat, fmt.Errorf("no report to format"), started)
	}
	if outputPath == "" {
		return types.NewFailureResult(types.StageFormat, fmt.Errorf("no output path configured"), started)
	}

	output := &types.DocumentOutput{ID: uuid.NewString()}

	if len(f.backends) == 0 {
		f.logger.Info("no conversion backend installed, skipping document formatting")
		output.Status = types.DocumentSkipped
		return types.NewSuccessResult(types.StageFormat, output, started)
	}

	html, err := RenderHTML(report)
	if err != nil {
		return types.NewFailureResult(types.StageFormat, fmt.Errorf("html rendering failed: %w", err), started)
	}

	htmlPath, err := writeTempHTML(html)
	if err != nil {
		return types.NewFailureResult(types.StageFormat, err, started)
	}
	defer os.Remove(htmlPath)

	backend, err := f.renderWithFallback(ctx, htmlPath, outputPath)
	if err != nil {
		return types.NewFailureResult(types.StageFormat, err, started)
	}
	output.Status = types.DocumentSuccess
	output.Backend = backend
	output.Path = outputPath

	if info, err := os.Stat(outputPath); err == nil {
		output.SizeBytes = info.Size()
	}
	if count, err := CountPDFPages(outputPath); err == nil {
		output.PageCount = count
	} else {
		f.logger.Debug("page count unavailable", zap.Error(err))
	}

	if err := WriteChartsPage(report, chartsPath(outputPath)); err != nil {
		f.logger.Warn("charts page not written", zap.Error(err))
	}

	f.logger.Info("document rendered",
		zap.String("backend", output.Backend),
		zap.String("path", output.Path),
		zap.Int("pages", output.PageCount),
		zap.Int64("bytes", output.SizeBytes))

	return types.NewSuccessResult(types.StageFormat, output, started)
}

// renderWithFallback tries each backend in order until one produces the PDF.
func (f *Formatter) renderWithFallback(ctx context.Context, htmlPath, pdfPath string) (string, error) {
	var errs []string
	for _, backend := range f.backends {
		if err := backend.Render(ctx, htmlPath, pdfPath); err != nil {
			f.logger.Warn("conversion backend failed",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s: %v", backend.Name(), err))
			continue
		}
		return backend.Name(), nil
	}
	return "", fmt.Errorf("all conversion backends failed: %s", strings.Join(errs, "; "))
}

func writeTempHTML(html string) (string, error) {
	tmp, err := os.CreateTemp("", "assessment-*.html")
	if err != nil {
		return "", fmt.Errorf("creating intermediate html: %w", err)
	}
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing intermediate html: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing intermediate html: %w", err)
	}
	return tmp.Name(), nil
}

// chartsPath places the companion chart page next to the PDF.
func chartsPath(pdfPath string) string {
	ext := filepath.Ext(pdfPath)
	return strings.TrimSuffix(pdfPath, ext) + ".charts.html"
}
