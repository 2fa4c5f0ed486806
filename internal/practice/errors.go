package practice

import "errors"

// Domain conditions, matched with errors.Is at the handler boundary.
// Anything else that bubbles out of a store is an infrastructure failure
// and maps to a generic 500.
var (
	ErrRequiresAuth = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrInactive     = errors.New("test is not active")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid input")
)
