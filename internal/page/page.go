// Package page loads hosting pages into a mutable HTML tree and writes them back.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

//go:embed static/style.css
var Stylesheet string

// Markdown pages keep raw HTML so authors can mark date elements inline.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
{{.Style}}
</style>
</head>
<body>
{{.Body}}
</body></html>
`))

// IsMarkdown reports whether path names a Markdown source.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Load reads path into a document. Markdown is rendered to HTML first.
func Load(path string) (*goquery.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	if IsMarkdown(path) {
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		data, err = FromMarkdown(title, data)
		if err != nil {
			return nil, err
		}
	}
	return Parse(bytes.NewReader(data))
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}

// FromMarkdown renders Markdown into a complete HTML page.
func FromMarkdown(title string, src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	var out bytes.Buffer
	err := shell.Execute(&out, map[string]any{
		"Title": title,
		"Style": template.CSS(Stylesheet),
		"Body":  template.HTML(body.String()), //nolint: gosec
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page shell: %w", err)
	}
	return out.Bytes(), nil
}

// Render writes the whole document, doctype included.
func Render(w io.Writer, doc *goquery.Document) error {
	for _, n := range doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("rendering page: %w", err)
		}
	}
	return nil
}

// Write renders doc to path via a temp file in the same directory, so
// readers never see a half-written page.
func Write(doc *goquery.Document, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.inprogress")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Render(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving page into place: %w", err)
	}
	return nil
}

// OutputPath returns where an annotated copy of input goes when no explicit
// output is given. HTML pages are annotated in place; Markdown sources get a
// sibling .html file.
func OutputPath(input, output string) string {
	if output != "" {
		return output
	}
	if IsMarkdown(input) {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
	}
	return input
}
