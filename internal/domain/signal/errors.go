package signal

import "errors"

// Sentinel kinds for signal engine errors.
var (
	// ErrNotInitialized is returned when a comparison is requested before
	// Initialize has completed.
	ErrNotInitialized = errors.New("signal engine not initialized")
	// ErrAlreadyInitialized is returned on repeated Initialize calls.
	ErrAlreadyInitialized = errors.New("signal engine already initialized")
	// ErrUnknownField is returned for numeric fields without corpus stats.
	ErrUnknownField = errors.New("unknown numeric field")
)
