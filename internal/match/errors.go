package match

import "errors"

var (
	// ErrValidation is returned for malformed requests, including
	// self-pair comparisons.
	ErrValidation = errors.New("match validation failed")
	// ErrNotFound is returned when an actor id is not in the corpus
	// snapshot.
	ErrNotFound = errors.New("actor not found")
	// ErrComputation is returned when a signal computation fails.
	ErrComputation = errors.New("match computation failed")
)
