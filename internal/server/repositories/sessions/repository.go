package sessions

import (
	"context"
	"time"

	"github.com/inkwellapp/inkwell/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all sessions that expired before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
