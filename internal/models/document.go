// Package models defines the domain types for docpress.
package models

import "time"

// FileEntry is a regular file found in a source or output directory.
type FileEntry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SourceDocument is a source file identified by the fingerprint of its bytes.
type SourceDocument struct {
	Name    string    `json:"name"`
	Hash    string    `json:"hash"`
	Created time.Time `json:"created"`
}

// Post is a generated output file and the front matter it carries.
type Post struct {
	File       string    `json:"file"`
	Date       time.Time `json:"date"`
	Hash       string    `json:"hash"`
	Title      string    `json:"title,omitempty"`
	Author     string    `json:"author,omitempty"`
	Categories []string  `json:"categories"`
	Layout     string    `json:"layout,omitempty"`
	Size       int64     `json:"size"`
}
