package folders

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/protocol"
)

// Repository is the durable local folder cache.
type Repository interface {
	// Get returns a folder by id, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*protocol.Folder, error)

	// List returns all folders ordered by ord then name.
	List(ctx context.Context) ([]protocol.Folder, error)

	// Put inserts a new folder or overwrites an existing one by id.
	Put(ctx context.Context, folder *protocol.Folder) error

	// Remove deletes a folder. Removing an absent folder is a no-op.
	Remove(ctx context.Context, id string) error
}
