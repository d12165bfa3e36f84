package pendingops

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/client/models"
)

// Repository is the ordered, durable log of mutations not yet confirmed by
// the server. Operations for the same page drain in enqueue order; an op is
// only ever removed by Ack or by an explicit conflict-resolution drop.
type Repository interface {
	// Enqueue appends op to the tail and assigns a monotonically increasing
	// timestamp (never earlier than any already-queued op). The assigned
	// sequence and timestamp are written back into op.
	Enqueue(ctx context.Context, op *models.PendingOp) error

	// PeekBatch returns up to n of the oldest operations without removing
	// them, in enqueue order.
	PeekBatch(ctx context.Context, n int) ([]models.PendingOp, error)

	// Ack removes a specific operation after confirmed server success (or an
	// explicit drop). Acking an absent id is a no-op, which keeps a crash
	// between send and ack harmless.
	Ack(ctx context.Context, opID string) error

	// Requeue records a failed delivery attempt, leaving the operation in
	// place for the next cycle.
	Requeue(ctx context.Context, opID string) error

	// HasForPage reports whether any queued op targets the given page.
	HasForPage(ctx context.Context, pageID string) (bool, error)

	// Count returns the queue depth.
	Count(ctx context.Context) (int, error)
}
