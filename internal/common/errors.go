// Package common defines shared constants and sentinel errors used across
// client and server layers of Inkwell. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors: bad input shape, rejected immediately and never
	// enqueued or retried.
	ErrorValidation = errors.New("validation error")

	// Gateway dispatch errors. An unknown name arriving over the wire is a
	// client/server version mismatch, not a retryable condition.
	ErrUnknownMutation = errors.New("unknown mutation")
	ErrUnknownQuery    = errors.New("unknown query")

	// ErrTransformFailed marks a query that could not be evaluated against
	// the current data shape. Reported, never swallowed.
	ErrTransformFailed = errors.New("transform failed")

	// Auth errors.
	ErrSessionExpired = errors.New("session expired")
	ErrRateLimited    = errors.New("too many failed attempts")

	ErrorLoginAlreadyExists = errors.New("login already exists")
)
