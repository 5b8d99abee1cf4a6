// Package checksum computes content fingerprints for source documents.
package checksum

import (
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"os"
	"strings"

	"github.com/starford/docpress/internal/apperr"
)

// Len is the length of a fingerprint produced by Sum.
const Len = 52

// Sum returns the lowercase, unpadded base-32 SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(h[:]))
}

// File fingerprints the full contents of the file at path.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("checksum: %s: %w: %w", path, apperr.ErrRead, err)
	}
	return Sum(data), nil
}
