package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// HTML converts a markdown report into a standalone HTML page
func HTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// WriteReport writes md to path and an HTML rendering next to it with the
// extension replaced by .html. It returns the HTML path.
func WriteReport(path, md string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if err := os.WriteFile(htmlPath, HTML(md, "Felony sentencing association report"), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", htmlPath, err)
	}
	return htmlPath, nil
}
