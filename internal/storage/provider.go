// Package storage defines the flat directory abstraction used for source
// documents and generated posts.
package storage

import (
	"time"

	"github.com/starford/docpress/internal/models"
)

// Provider is the interface for directory file operations. Names are
// relative to the directory root; subdirectories are not traversed.
type Provider interface {
	// Root returns the absolute path of the directory.
	Root() string
	// List returns the regular files whose name ends in ext (case-insensitive)
	// and does not start with skipPrefix, sorted by name.
	List(ext, skipPrefix string) ([]models.FileEntry, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Created returns the creation time of the named file.
	Created(name string) (time.Time, error)
	// Write atomically writes content to the named file.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
}
