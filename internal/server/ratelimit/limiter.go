// Package ratelimit throttles failed login attempts per identity key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/inkwellapp/inkwell/internal/logging"
)

const (
	// DefaultMaxFailures is how many failures inside one window trigger a block.
	DefaultMaxFailures = 5

	// DefaultWindow is the sliding window over which failures are counted.
	DefaultWindow = 15 * time.Minute

	// DefaultBlockDuration is how long a key stays blocked once triggered.
	DefaultBlockDuration = 15 * time.Minute

	// DefaultSweepInterval bounds the memory held for stale keys.
	DefaultSweepInterval = 5 * time.Minute
)

type entry struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

// Limiter counts failed attempts per key (normalized email) and blocks a key
// after too many failures in one window. A successful attempt clears the key
// entirely. State is in-memory; a restart forgets all blocks.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxFailures   int
	window        time.Duration
	blockDuration time.Duration
	logger        logging.Logger

	// now is a test seam.
	now func() time.Time
}

// NewLimiter returns a Limiter. Non-positive parameters fall back to the
// defaults.
func NewLimiter(maxFailures int, window, blockDuration time.Duration, logger logging.Logger) *Limiter {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if blockDuration <= 0 {
		blockDuration = DefaultBlockDuration
	}
	return &Limiter{
		entries:       make(map[string]*entry),
		maxFailures:   maxFailures,
		window:        window,
		blockDuration: blockDuration,
		logger:        logger.With("module", "ratelimit"),
		now:           time.Now,
	}
}

// Check reports whether the key is currently blocked and, if so, for how much
// longer. Checking does not count as an attempt.
func (l *Limiter) Check(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return 0, false
	}
	now := l.now()
	if e.blockedUntil.After(now) {
		return e.blockedUntil.Sub(now), true
	}
	return 0, false
}

// RecordFailure counts a failed attempt. Failures outside the current window
// restart the count; reaching the limit blocks the key.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		e = &entry{windowStart: now}
		l.entries[key] = e
	}

	e.count++
	if e.count >= l.maxFailures && !e.blockedUntil.After(now) {
		e.blockedUntil = now.Add(l.blockDuration)
		l.logger.Warn(context.Background(), "key blocked after repeated failures", "failures", e.count)
	}
}

// RecordSuccess clears all state for the key.
func (l *Limiter) RecordSuccess(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// sweep drops entries that are neither blocked nor inside a live window.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if e.blockedUntil.After(now) {
			continue
		}
		if now.Sub(e.windowStart) < l.window {
			continue
		}
		delete(l.entries, key)
	}
}

// RunSweeper evicts stale entries on the given interval until ctx is
// cancelled.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}
