// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/service layers.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a key collision (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidDocument indicates a dataset file holds a non-object value
	// where an object is required.
	ErrInvalidDocument = errors.New("invalid document")
)
