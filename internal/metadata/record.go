package metadata

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/docpress/internal/apperr"
)

// DefaultLayout is the site layout stamped on every post unless configured.
const DefaultLayout = "default"

type field int

const (
	fieldTitle field = iota + 1
	fieldAuthor
	fieldCategory
)

// synonyms maps lowercased keys to record fields. Keys are matched exactly.
var synonyms = map[string]field{
	"title":  fieldTitle,
	"标题":     fieldTitle,
	"titel":  fieldTitle,
	"titre":  fieldTitle,
	"título": fieldTitle,

	"author": fieldAuthor,
	"作者":     fieldAuthor,
	"autor":  fieldAuthor,
	"auteur": fieldAuthor,

	"category":   fieldCategory,
	"categories": fieldCategory,
	"分类":         fieldCategory,
	"类别":         fieldCategory,
	"kategorie":  fieldCategory,
	"catégorie":  fieldCategory,
	"categoría":  fieldCategory,
}

// Row is one key/value pair read from the metadata table.
type Row struct {
	Key   string
	Value string
}

// Record is the page metadata of one post.
type Record struct {
	Title  string
	Author string
	Layout string

	categories map[string]struct{}
}

// NewRecord returns an empty record with the given layout.
func NewRecord(layout string) *Record {
	if layout == "" {
		layout = DefaultLayout
	}
	return &Record{Layout: layout, categories: make(map[string]struct{})}
}

// AddCategory adds c, lowercased, to the category set. Blank values are ignored.
func (r *Record) AddCategory(c string) {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return
	}
	if r.categories == nil {
		r.categories = make(map[string]struct{})
	}
	r.categories[c] = struct{}{}
}

// Categories returns the category set in sorted order.
func (r *Record) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Fold builds a Record from table rows. Rows with an empty key and
// unrecognized keys are ignored; title and author keep the last value seen,
// which may be empty.
//
// A category cell may list several categories separated by commas (ASCII or
// full-width) or line breaks, so "Science, Tech" yields two categories. An
// empty category cell adds nothing. A cell made only of separators, or any
// value that is not valid UTF-8, cannot be folded and yields
// apperr.ErrMetadataMalformed.
func Fold(rows []Row, layout string) (*Record, error) {
	rec := NewRecord(layout)
	for i, row := range rows {
		f, ok := synonyms[row.Key]
		if !ok {
			continue
		}
		if !utf8.ValidString(row.Value) {
			return nil, fmt.Errorf("metadata: row %d (%s) is not valid UTF-8: %w", i+1, row.Key, apperr.ErrMetadataMalformed)
		}
		switch f {
		case fieldTitle:
			rec.Title = row.Value
		case fieldAuthor:
			rec.Author = row.Value
		case fieldCategory:
			if row.Value == "" {
				continue
			}
			values := splitCategories(row.Value)
			if len(values) == 0 {
				return nil, fmt.Errorf("metadata: row %d (%s) lists no category: %w", i+1, row.Key, apperr.ErrMetadataMalformed)
			}
			for _, v := range values {
				rec.AddCategory(v)
			}
		}
	}
	return rec, nil
}

func splitCategories(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == '，' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
