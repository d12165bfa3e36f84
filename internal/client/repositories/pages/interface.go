package pages

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/client/models"
	"github.com/inkwellapp/inkwell/internal/protocol"
)

// Repository is the durable local page cache. All operations complete
// without network access; the cache is the source of truth for reads.
type Repository interface {
	// Get returns a page by id, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*protocol.Page, error)

	// List returns pages matching the filter, ordered by ord then created_at.
	List(ctx context.Context, filter models.PageFilter) ([]protocol.Page, error)

	// Put inserts a new page or overwrites an existing one by id.
	Put(ctx context.Context, page *protocol.Page) error

	// Remove deletes a page. Removing an absent page is a no-op.
	Remove(ctx context.Context, id string) error
}
