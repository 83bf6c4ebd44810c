// Package errors defines the error taxonomy shared by the catalog, scoring,
// recommendation and optimizer packages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error.
type Type string

const (
	// TypeValidation marks malformed caller input. Always caller-fixable.
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeNotFound marks a reference to an id that does not exist.
	TypeNotFound Type = "NOT_FOUND"

	// TypePermission marks a role lacking the capability for a mutation.
	TypePermission Type = "PERMISSION_DENIED"

	// TypeConsistency marks a violated internal invariant.
	TypeConsistency Type = "CONSISTENCY_ERROR"
)

// Error represents a domain error with context.
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair and returns the same error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Newf creates a new formatted error.
func Newf(t Type, format string, args ...any) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// HasType reports whether err, or any error it wraps, is an *Error of type t.
func HasType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of the first *Error in err's chain, or "".
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return Newf(TypeValidation, format, args...)
}

// NotFound creates a not found error.
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier).
		WithContext("id", identifier)
}

// Permission creates a permission error for role attempting action.
func Permission(role, action string) *Error {
	return Newf(TypePermission, "role %q may not %s", role, action).
		WithContext("role", role)
}

// Consistency creates a consistency error.
func Consistency(format string, args ...any) *Error {
	return Newf(TypeConsistency, format, args...)
}
