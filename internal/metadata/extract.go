// Package metadata reads the metadata table embedded in converted documents.
//
// The first table of a document holds page metadata: one key per row in the
// first cell, its value in the second. Keys may be written in English,
// Chinese, German, French or Spanish.
package metadata

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/docpress/internal/apperr"
)

// Extract locates the metadata table in markup, folds it into a Record and
// returns the markup with the table removed.
func Extract(markup, layout string) (*Record, string, error) {
	root, err := parseFragment(markup)
	if err != nil {
		return nil, "", err
	}

	table := findFirst(root, atom.Table)
	if table == nil {
		return nil, "", apperr.ErrMetadataMissing
	}

	rec, err := Fold(TableRows(table), layout)
	if err != nil {
		return nil, "", err
	}

	table.Parent.RemoveChild(table)

	body, err := renderChildren(root)
	if err != nil {
		return nil, "", fmt.Errorf("metadata: render: %w", err)
	}
	return rec, body, nil
}

// TableRows reads the first two cells of every row of table. Rows with fewer
// than two cells and rows where both cells are blank are dropped. Rows of
// nested tables are not included.
func TableRows(table *html.Node) []Row {
	var rows []Row
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				cells := rowCells(c)
				if len(cells) < 2 {
					continue
				}
				row := Row{
					Key:   strings.ToLower(cellText(cells[0])),
					Value: cellText(cells[1]),
				}
				if row.Key == "" && row.Value == "" {
					continue
				}
				rows = append(rows, row)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func parseFragment(markup string) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, fmt.Errorf("metadata: parse markup: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil && len(cells) < 2; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

// cellText joins every text node under n with newlines and trims the result.
func cellText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
