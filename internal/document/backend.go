package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// renderTimeout bounds a single HTML-to-PDF conversion.
const renderTimeout = 60 * time.Second

// browserBinaries are the executables probed for the headless-browser
// backend, in preference order.
var browserBinaries = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
}

// Backend converts a rendered HTML file into a PDF.
type Backend interface {
	// Name identifies the backend in logs and stage output.
	Name() string
	// Render converts htmlPath to a PDF at pdfPath.
	Render(ctx context.Context, htmlPath, pdfPath string) error
}

// DetectBackends probes the host for installed conversion tools and returns
// a backend per tool found, browser first. An empty slice means the
// formatting stage will be skipped.
func DetectBackends() []Backend {
	var backends []Backend
	for _, binary := range browserBinaries {
		if path, err := exec.LookPath(binary); err == nil {
			backends = append(backends, &browserBackend{execPath: path})
			break
		}
	}
	if path, err := exec.LookPath("wkhtmltopdf"); err == nil {
		backends = append(backends, &wkhtmltopdfBackend{execPath: path})
	}
	return backends
}

// browserBackend prints the page through a headless browser.
type browserBackend struct {
	execPath string
}

func (b *browserBackend) Name() string { return "chromium" }

func (b *browserBackend) Render(ctx context.Context, htmlPath, pdfPath string) error {
	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(renderCtx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(b.execPath),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// A4 portrait with print backgrounds, matching the stylesheet's
			// print rules.
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("browser print failed: %w", err)
	}

	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// wkhtmltopdfBackend shells out to wkhtmltopdf.
type wkhtmltopdfBackend struct {
	execPath string
}

func (b *wkhtmltopdfBackend) Name() string { return "wkhtmltopdf" }

func (b *wkhtmltopdfBackend) Render(ctx context.Context, htmlPath, pdfPath string) error {
	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	cmd := exec.CommandContext(renderCtx, b.execPath,
		"--quiet",
		"--enable-local-file-access",
		"--page-size", "A4",
		htmlPath, pdfPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wkhtmltopdf failed: %w: %s", err, string(output))
	}
	return nil
}
