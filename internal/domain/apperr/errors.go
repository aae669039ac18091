package apperr

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to API callers.
var (
	// ErrValidation marks rejected input (missing fields, out-of-range numbers).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an id that does not resolve for the requesting owner.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes the kind so errors.Is works against the sentinels above.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation builds a validation failure.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// NotFound builds a not-found failure.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict builds a duplicate-key failure.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Unauthorized builds an authentication failure.
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Message returns the client-facing message of err, or "" when err is not an *Error.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
