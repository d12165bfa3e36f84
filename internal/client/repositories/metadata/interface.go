package metadata

import "context"

// Repository is a small durable key/value store for client state that must
// survive restarts: the sync cursor and the session token live here under
// fixed, well-known keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeySyncCursor   = "sync.cursor"
	KeySessionToken = "session.token"
)
