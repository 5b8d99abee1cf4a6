// Package naming derives deterministic post filenames from content fingerprints.
package naming

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/docpress/internal/checksum"
)

// DateLayout is the calendar-date prefix of every output name.
const DateLayout = "2006-01-02"

// DefaultExt is the output extension used for HTML posts.
const DefaultExt = ".html"

// Name identifies the output generated for one source document.
type Name struct {
	Date time.Time
	Hash string
	Ext  string
}

// New builds a Name from a fingerprint and the source creation time.
// The time is truncated to the local calendar day.
func New(hash string, created time.Time, ext string) Name {
	if ext == "" {
		ext = DefaultExt
	}
	y, m, d := created.Local().Date()
	return Name{
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		Hash: hash,
		Ext:  ext,
	}
}

// String renders the filename: <YYYY-MM-DD>-<hash><ext>.
func (n Name) String() string {
	return fmt.Sprintf("%s-%s%s", n.Date.Format(DateLayout), n.Hash, n.Ext)
}

// ForFile fingerprints the file at path and names its output.
func ForFile(path, ext string) (Name, error) {
	hash, err := checksum.File(path)
	if err != nil {
		return Name{}, err
	}
	created, err := CreationTime(path)
	if err != nil {
		return Name{}, fmt.Errorf("naming: creation time %s: %w", path, err)
	}
	return New(hash, created, ext), nil
}

// Parse splits an output filename into its date and hash fields.
// The extension is matched case-insensitively; ok is false for any name
// that was not produced by String.
func Parse(filename, ext string) (Name, bool) {
	if ext == "" {
		ext = DefaultExt
	}
	if len(filename) < len(ext) || !strings.EqualFold(filename[len(filename)-len(ext):], ext) {
		return Name{}, false
	}
	stem := filename[:len(filename)-len(ext)]

	// YYYY-MM-DD plus the separating dash.
	prefix := len(DateLayout) + 1
	if len(stem) != prefix+checksum.Len || stem[prefix-1] != '-' {
		return Name{}, false
	}
	date, err := time.ParseInLocation(DateLayout, stem[:prefix-1], time.Local)
	if err != nil {
		return Name{}, false
	}
	hash := stem[prefix:]
	if !isToken(hash) {
		return Name{}, false
	}
	return Name{Date: date, Hash: hash, Ext: filename[len(filename)-len(ext):]}, true
}

func isToken(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			return false
		}
	}
	return true
}
