package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/naming"
)

// tempPrefix marks in-flight writes; such files never match a listing
// extension because of their random suffix.
const tempPrefix = ".docpress-tmp-"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w: %w", root, apperr.ErrPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w: %w", abs, apperr.ErrPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %s is not a directory: %w", abs, apperr.ErrPath)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory path.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a file name against the root and rejects anything that
// is not a direct child of it.
func (f *FS) safePath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("storage: invalid name %q", name)
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("storage: name escapes directory: %s", name)
	}
	return filepath.Join(f.root, cleaned), nil
}

// List returns matching regular files directly under the root.
func (f *FS) List(ext, skipPrefix string) ([]models.FileEntry, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	ext = strings.ToLower(ext)
	var out []models.FileEntry
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		if skipPrefix != "" && strings.HasPrefix(name, skipPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", name, err)
		}
		out = append(out, models.FileEntry{
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Created returns the creation time of a file.
func (f *FS) Created(name string) (time.Time, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := naming.CreationTime(abs)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: creation time %s: %w", name, err)
	}
	return t, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

var _ Provider = (*FS)(nil)
