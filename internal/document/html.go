package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dstrand/maturity-agent/internal/types"
)

// pageStyle is the print stylesheet embedded in every rendered document.
const pageStyle = `
body { font-family: Georgia, "Times New Roman", serif; max-width: 52em; margin: 0 auto; padding: 2em; color: #1a1a1a; line-height: 1.5; }
h1 { border-bottom: 2px solid #2c3e50; padding-bottom: 0.3em; }
h2 { color: #2c3e50; margin-top: 1.6em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.6em; text-align: left; }
th { background: #f0f3f6; }
nav.toc { background: #f7f9fb; border: 1px solid #dde3e9; padding: 1em 1.5em; margin: 1.5em 0; }
nav.toc ul { margin: 0.3em 0; }
@media print { body { padding: 0; } h2 { page-break-after: avoid; } table { page-break-inside: avoid; } }
`

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// RenderHTML converts the report to a styled, self-contained HTML page with
// a table of contents. The markdown form of the report is the single source
// of content; this only adds print structure around it.
func RenderHTML(report *types.GeneratedReport) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(report.Markdown()), &body); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s Maturity Assessment</title>
<style>%s</style>
</head>
<body>
%s
</body>
</html>`, report.Dimension, pageStyle, body.String())

	return injectTOC(page)
}

// injectTOC assigns anchors to every h2 heading and inserts a linked table
// of contents after the document title. A document without h2 headings is
// returned unchanged.
func injectTOC(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("html parse failed: %w", err)
	}

	var toc strings.Builder
	doc.Find("h2").Each(func(i int, heading *goquery.Selection) {
		anchor := headingAnchor(heading.Text(), i)
		heading.SetAttr("id", anchor)
		toc.WriteString(fmt.Sprintf("<li><a href=\"#%s\">%s</a></li>\n", anchor, heading.Text()))
	})

	if toc.Len() > 0 {
		doc.Find("h1").First().AfterHtml(
			"<nav class=\"toc\"><strong>Contents</strong><ul>\n" + toc.String() + "</ul></nav>")
	}

	rendered, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("html serialization failed: %w", err)
	}
	return rendered, nil
}

// headingAnchor derives a stable anchor id from a heading. The index suffix
// keeps duplicate headings distinct.
func headingAnchor(text string, index int) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "section"
	}
	return fmt.Sprintf("%s-%d", slug, index)
}
