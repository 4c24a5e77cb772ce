// Package errors provides the small set of stable error kinds shared by every domain package.
// Use cases return these (usually wrapped with context) and the HTTP layer maps them to status
// codes, so callers never see raw driver or cipher error text.
package errors

import (
	"errors"
	"fmt"
)

// Standard error kinds.
var (
	// ErrNotFound indicates a referenced item, group, user or grant does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a disallowed state transition (ConflictingState), e.g. a duplicate
	// membership or a grant targeting the item owner.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates an entity invariant or request field failed validation
	// (ValidationFailed).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request carries no valid principal.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the principal's effective access level is too low for the operation.
	ErrForbidden = errors.New("forbidden")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
