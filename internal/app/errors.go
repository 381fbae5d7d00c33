package service

import "errors"

var (
	// ErrNotStarted is returned when an operation requires Start first.
	ErrNotStarted = errors.New("service not started")
	// ErrNotReady is returned when an operation requires a loaded corpus.
	ErrNotReady = errors.New("corpus not loaded")
)
