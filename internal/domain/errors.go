package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates client input was missing or malformed.
	// Handlers map it to HTTP 400.
	ErrValidation = errors.New("validation failed")
)
