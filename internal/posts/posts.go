// Package posts lists the posts published in an output directory.
package posts

import (
	"fmt"

	"github.com/starford/docpress/internal/frontmatter"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/naming"
	"github.com/starford/docpress/internal/storage"
)

// List reads the front matter of every post in store with extension ext.
// Files whose names were not generated by docpress are skipped.
func List(store storage.Provider, ext string) ([]models.Post, error) {
	entries, err := store.List(ext, "")
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(entries))
	for _, e := range entries {
		name, ok := naming.Parse(e.Name, ext)
		if !ok {
			continue
		}
		data, err := store.Read(e.Name)
		if err != nil {
			return nil, err
		}
		rec, _, err := frontmatter.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("posts: %s: %w", e.Name, err)
		}
		out = append(out, models.Post{
			File:       e.Name,
			Date:       name.Date,
			Hash:       name.Hash,
			Title:      rec.Title,
			Author:     rec.Author,
			Categories: rec.Categories(),
			Layout:     rec.Layout,
			Size:       e.Size,
		})
	}
	return out, nil
}
