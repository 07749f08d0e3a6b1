package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when an access-policy gate rejects the request.
	ErrForbidden = errors.New("forbidden")
	// ErrAuthFailure is returned on bad local credentials.
	ErrAuthFailure = errors.New("authentication failed")
)

// FieldError is a single field-level constraint violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates field-level violations so forms can be
// re-rendered with per-field flash messages.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a violation and returns the error for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// DuplicateError marks a uniqueness violation, kept distinct from
// ValidationError so callers can render a field-specific message.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}
