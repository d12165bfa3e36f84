package folders

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/protocol"
)

// Repository is the authoritative folder store, scoped to one user per call.
type Repository interface {
	// Get returns a folder by id (tombstones included), or common.ErrorNotFound.
	Get(ctx context.Context, userID, id string) (*protocol.Folder, error)

	// List returns live folders ordered by ord then name.
	List(ctx context.Context, userID string) ([]protocol.Folder, error)

	// Upsert inserts or overwrites the folder, tombstones included.
	Upsert(ctx context.Context, folder *protocol.Folder) error

	// SlugExists reports whether another live folder of the user already uses
	// the slug. excludeID names the folder being saved, so renames do not
	// collide with themselves.
	SlugExists(ctx context.Context, userID, slug, excludeID string) (bool, error)

	// ChangesSince returns every folder (tombstones included) with UpdatedAt
	// strictly greater than cursor, in UpdatedAt order.
	ChangesSince(ctx context.Context, userID string, cursor int64) ([]protocol.Folder, error)
}
