package domain

import (
	"errors"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Use errors.As with *ValidationError to access the individual
	// violation messages.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRecord is returned when a persisted record cannot be
	// converted back into a valid entity (malformed ID, enum value
	// outside its closed set, unparsable timestamp). Bulk loaders skip
	// such records; single-record readers surface the error.
	ErrInvalidRecord = errors.New("invalid task record")
)

// ValidationError aggregates every field-rule violation found in one
// validation pass. The message order follows the field order of the
// entity (title, description, status, priority).
type ValidationError struct {
	Messages []string
}

// NewValidationError creates a ValidationError from an ordered list of
// violation messages.
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap returns ErrValidation so callers can match with
// errors.Is(err, domain.ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
