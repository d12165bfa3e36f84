package api

import (
	"errors"
	"fmt"
	"time"
)

// TransientError wraps a failure where the server's decision is unknown:
// network errors, 5xx answers, rate limiting. The operation stays queued and
// is retried on a later cycle.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RateLimitedError is returned from Login when the account is blocked.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
