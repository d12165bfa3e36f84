package pages

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/protocol"
)

// Repository is the authoritative page store. Every method is scoped to one
// user; records never cross account boundaries.
type Repository interface {
	// Get returns a page by id, or common.ErrorNotFound. Tombstones are
	// returned so callers can compare timestamps.
	Get(ctx context.Context, userID, id string) (*protocol.Page, error)

	// List returns live (non-tombstoned) pages matching the filter.
	List(ctx context.Context, userID string, args protocol.PageListArgs) ([]protocol.Page, error)

	// ListTasks returns live task pages, optionally including completed ones.
	ListTasks(ctx context.Context, userID string, includeCompleted bool) ([]protocol.Page, error)

	// Upsert inserts or overwrites the page, tombstones included.
	Upsert(ctx context.Context, page *protocol.Page) error

	// ChangesSince returns every page (tombstones included) with UpdatedAt
	// strictly greater than cursor, in UpdatedAt order.
	ChangesSince(ctx context.Context, userID string, cursor int64) ([]protocol.Page, error)
}
