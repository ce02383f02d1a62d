// Package service provides the application-level business logic for
// managing tasks on top of the storage abstraction.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped with context and propagated
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidFilter indicates a list filter value outside its closed
	// set. This is distinct from an empty result: a valid filter that
	// matches nothing succeeds with an empty list.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidFilter = errors.New("invalid filter value")
)
