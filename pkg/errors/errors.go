package chaterrors

import "errors"

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyContent = errors.New("message content is empty")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// IsValidation reports whether err is a client-input failure rather than a
// missing-resource failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyContent) || errors.Is(err, ErrInvalidInput)
}
