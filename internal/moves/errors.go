package moves

import "errors"

var (
	// ErrValidation marks a bad or missing field caught before any network call
	ErrValidation = errors.New("validation error")
	// ErrMissingTarget is an assignment selection without the id it needs
	ErrMissingTarget = errors.New("assignment target id is required")
	// ErrTransport marks a failed or timed out gateway call
	ErrTransport = errors.New("transport error")
	// ErrEmptyBatch aborts Execute before any call is made
	ErrEmptyBatch = errors.New("no bins to move")
	// ErrNotConfigured is returned for a bin that has no move config
	ErrNotConfigured = errors.New("bin has no move config")
)
