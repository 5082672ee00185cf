// Package common defines shared constants and sentinel errors used across
// the application layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorInvalidLoginFormat    = errors.New("invalid login format")
	ErrorInvalidPasswordFormat = errors.New("invalid password format")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
