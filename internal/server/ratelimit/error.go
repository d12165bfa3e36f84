package ratelimit

import (
	"fmt"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
)

// BlockedError reports that a key is blocked and for how much longer. It
// unwraps to common.ErrRateLimited.
type BlockedError struct {
	RetryAfter time.Duration
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *BlockedError) Unwrap() error { return common.ErrRateLimited }
