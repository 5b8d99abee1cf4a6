package docx

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ToMarkdown converts an HTML fragment to Markdown. Embedded data-URI
// images are kept as Markdown image links.
func ToMarkdown(markup string) (string, error) {
	md, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("docx: convert to markdown: %w", err)
	}
	return md, nil
}
