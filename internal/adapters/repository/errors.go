package repository

import "errors"

// Sentinel kinds for document store errors.
var (
	ErrNotFound   = errors.New("document not found")
	ErrClosed     = errors.New("store closed")
	ErrBadPayload = errors.New("malformed document payload")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
