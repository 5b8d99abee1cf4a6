// Package docx converts Office Open XML word-processing documents to HTML.
//
// Only the document body is converted: paragraphs, headings, run
// formatting, hyperlinks, lists, tables and embedded images. Images are
// inlined as data URIs so every post is a single self-contained file.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"

	"golang.org/x/net/html"

	"github.com/starford/docpress/internal/apperr"
)

// Converter turns document bytes into markup.
type Converter interface {
	Convert(data []byte) (string, error)
}

// HTMLConverter converts .docx documents to HTML fragments.
type HTMLConverter struct {
	// SkipImages drops embedded images instead of inlining them.
	SkipImages bool
}

// NewHTMLConverter returns a converter that inlines images.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{}
}

// Convert renders the body of the document in data as HTML.
func (c *HTMLConverter) Convert(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: open archive: %w: %w", apperr.ErrConversion, err)
	}
	pkg, err := openPackage(zr)
	if err != nil {
		return "", fmt.Errorf("docx: %w: %w", apperr.ErrConversion, err)
	}

	w := &writer{pkg: pkg, skipImages: c.SkipImages}
	nodes := w.body(pkg.document)

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("docx: render: %w", err)
		}
	}
	return buf.String(), nil
}

var _ Converter = (*HTMLConverter)(nil)
