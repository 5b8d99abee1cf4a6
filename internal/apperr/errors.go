// Package apperr defines the sentinel errors shared across docpress packages.
package apperr

import "errors"

var (
	// ErrPath reports an invalid source or output directory. Fatal.
	ErrPath = errors.New("invalid directory")

	// ErrRead reports an unreadable source file.
	ErrRead = errors.New("read failed")

	// ErrConversion reports a document the converter rejected.
	ErrConversion = errors.New("conversion failed")

	// ErrMetadataMissing reports converted markup without a metadata table.
	ErrMetadataMissing = errors.New("metadata table missing")

	// ErrMetadataMalformed reports a metadata table that could not be folded into a record.
	ErrMetadataMalformed = errors.New("malformed metadata table")

	// ErrWrite reports an output that could not be written. Fatal for the rest of a pass.
	ErrWrite = errors.New("write failed")

	ErrNotFound = errors.New("not found")
)
