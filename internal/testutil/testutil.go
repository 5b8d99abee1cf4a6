// Package testutil provides shared test helpers for building .docx fixtures
// and source/output directories.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docpress/internal/storage"
)

const namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

// Docx zips parts into a .docx archive.
func Docx(t testing.TB, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// DocumentXML wraps body content in a word/document.xml envelope.
func DocumentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + namespaces + `><w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

// Escape XML-escapes s.
func Escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Para returns a single-run paragraph.
func Para(s string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + Escape(s) + `</w:t></w:r></w:p>`
}

// MetadataTable returns a two-column table with one row per pair.
func MetadataTable(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, r := range rows {
		b.WriteString("<w:tr><w:tc>" + Para(r[0]) + "</w:tc><w:tc>" + Para(r[1]) + "</w:tc></w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// Post builds a .docx whose first table holds rows, followed by paragraphs.
func Post(t testing.TB, rows [][2]string, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	if len(rows) > 0 {
		body.WriteString(MetadataTable(rows...))
	}
	for _, p := range paragraphs {
		body.WriteString(Para(p))
	}
	return Docx(t, map[string]string{"word/document.xml": DocumentXML(body.String())})
}

// WriteFile writes data to dir/name.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestDir creates a temporary directory with a storage.Provider rooted at it.
func TestDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Names lists the file names in dir, sorted.
func Names(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}
