package ratelimit

import (
	"testing"
	"time"

	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(5, 15*time.Minute, 15*time.Minute, logging.NewSlogLogger(nil))
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 4; i++ {
		l.RecordFailure("a@b.com")
		_, blocked := l.Check("a@b.com")
		assert.False(t, blocked, "still under the limit after %d failures", i+1)
	}

	l.RecordFailure("a@b.com")
	retryAfter, blocked := l.Check("a@b.com")
	assert.True(t, blocked)
	assert.Equal(t, 15*time.Minute, retryAfter)
}

func TestLimiter_BlockExpires(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		l.RecordFailure("a@b.com")
	}
	_, blocked := l.Check("a@b.com")
	assert.True(t, blocked)

	*now = now.Add(15*time.Minute + time.Second)
	_, blocked = l.Check("a@b.com")
	assert.False(t, blocked)
}

func TestLimiter_WindowResetsCount(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 4; i++ {
		l.RecordFailure("a@b.com")
	}

	// the window rolls over, so old failures no longer count
	*now = now.Add(16 * time.Minute)
	l.RecordFailure("a@b.com")

	_, blocked := l.Check("a@b.com")
	assert.False(t, blocked)
}

func TestLimiter_SuccessClears(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 4; i++ {
		l.RecordFailure("a@b.com")
	}
	l.RecordSuccess("a@b.com")

	for i := 0; i < 4; i++ {
		l.RecordFailure("a@b.com")
	}
	_, blocked := l.Check("a@b.com")
	assert.False(t, blocked, "the count restarts after a successful login")
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		l.RecordFailure("a@b.com")
	}
	_, blocked := l.Check("other@b.com")
	assert.False(t, blocked)
}

func TestLimiter_SweepKeepsBlockedKeys(t *testing.T) {
	l, now := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		l.RecordFailure("blocked@b.com")
	}
	l.RecordFailure("stale@b.com")

	*now = now.Add(14 * time.Minute)
	l.sweep()

	_, blocked := l.Check("blocked@b.com")
	assert.True(t, blocked, "a live block survives the sweep")
	assert.Contains(t, l.entries, "stale@b.com", "a live window survives the sweep")

	*now = now.Add(2 * time.Minute)
	l.sweep()
	assert.NotContains(t, l.entries, "stale@b.com")
}
