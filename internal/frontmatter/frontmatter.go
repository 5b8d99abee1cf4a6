// Package frontmatter writes and reads the YAML front-matter block of a post.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/docpress/internal/metadata"
)

// Delimiter opens and closes the front-matter block.
const Delimiter = "---"

type document struct {
	Layout     string   `yaml:"layout"`
	Title      string   `yaml:"title,omitempty"`
	Author     string   `yaml:"author,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
}

// Compose renders rec as YAML between delimiter lines followed by body.
// Surrounding whitespace of the result is trimmed.
func Compose(rec *metadata.Record, body string) (string, error) {
	doc := document{
		Layout:     rec.Layout,
		Title:      rec.Title,
		Author:     rec.Author,
		Categories: rec.Categories(),
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("frontmatter: marshal: %w", err)
	}

	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	b.Write(out)
	b.WriteString(Delimiter + "\n")
	b.WriteString(body)
	return strings.TrimSpace(b.String()), nil
}

// Parse reads a composed post back into its record and body. Content
// without a front-matter block yields an empty record and the whole content
// as body.
func Parse(content []byte) (*metadata.Record, string, error) {
	var doc document
	body, err := frontmatter.Parse(bytes.NewReader(content), &doc)
	if err != nil {
		return nil, "", fmt.Errorf("frontmatter: parse: %w", err)
	}

	rec := &metadata.Record{
		Title:  doc.Title,
		Author: doc.Author,
		Layout: doc.Layout,
	}
	for _, c := range doc.Categories {
		rec.AddCategory(c)
	}
	return rec, strings.TrimLeft(string(body), "\r\n"), nil
}
