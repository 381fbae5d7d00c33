package weights

import "errors"

var (
	// ErrNotFound is returned when a profile or persona is unknown.
	ErrNotFound = errors.New("weight profile not found")
	// ErrValidation is returned for structurally invalid profiles.
	ErrValidation = errors.New("weight profile validation failed")
)
