package output

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/dshills/inspect/internal/review"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLWriter renders the Markdown report as a standalone HTML page.
type HTMLWriter struct{}

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// The writer's own <details> blocks are raw HTML; model text is escaped
	// before it reaches the renderer.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 8px; }
pre { background: #f6f8fa; padding: 8px; overflow-x: auto; }
</style>
</head>
<body>
`

func (h *HTMLWriter) Write(w io.Writer, report *review.Report) error {
	var md bytes.Buffer
	if err := (&MarkdownWriter{escapeHTML: true}).Write(&md, report); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := markdownRenderer.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}

	ew := &errWriter{w: w}
	ew.printf(htmlHead, html.EscapeString("Code Review: "+report.Summary.File))
	if ew.err == nil {
		_, ew.err = w.Write(body.Bytes())
	}
	ew.printf("</body>\n</html>\n")
	return ew.err
}
