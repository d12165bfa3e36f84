package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/server/models"
	"github.com/inkwellapp/inkwell/internal/server/repositories/sessions"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// SessionIDLength is the length of the random session id. 32 characters
	// of the nanoid alphabet carry ~190 bits of entropy.
	SessionIDLength = 32

	// DefaultSessionTTL keeps users logged in for 30 days.
	DefaultSessionTTL = 30 * 24 * time.Hour

	// DefaultSweepInterval is how often expired rows are purged in bulk.
	// Expired sessions are already rejected on access; the sweep only keeps
	// the table from growing.
	DefaultSweepInterval = time.Hour
)

// SessionManager issues, resolves and revokes server-side sessions.
type SessionManager struct {
	repo   sessions.Repository
	ttl    time.Duration
	logger logging.Logger

	// now is a test seam.
	now func() time.Time
}

// NewSessionManager returns a SessionManager. A zero ttl falls back to
// DefaultSessionTTL.
func NewSessionManager(repo sessions.Repository, ttl time.Duration, logger logging.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		repo:   repo,
		ttl:    ttl,
		logger: logger.With("module", "sessions"),
		now:    time.Now,
	}
}

// Issue creates a session for the user and stores it.
func (m *SessionManager) Issue(ctx context.Context, userID string) (*models.Session, error) {
	id, err := gonanoid.New(SessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := m.now()
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve maps a cookie value onto an Identity. Unknown ids yield
// ErrorUnauthorized; expired sessions are deleted on sight and yield
// ErrSessionExpired.
func (m *SessionManager) Resolve(ctx context.Context, id string) (*Identity, error) {
	if id == "" {
		return nil, common.ErrorUnauthorized
	}

	session, err := m.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	if session.Expired(m.now()) {
		if err := m.repo.Delete(ctx, id); err != nil {
			m.logger.Warn(ctx, "failed to delete expired session", "error", err)
		}
		return nil, common.ErrSessionExpired
	}

	return &Identity{UserID: session.UserID, SessionID: session.ID}, nil
}

// Revoke deletes the session. Revoking an unknown id is a no-op.
func (m *SessionManager) Revoke(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// RunSweeper purges expired sessions on the given interval until ctx is
// cancelled.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
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
			n, err := m.repo.DeleteExpired(ctx, m.now())
			if err != nil {
				m.logger.Warn(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				m.logger.Debug(ctx, "purged expired sessions", "count", n)
			}
		}
	}
}
