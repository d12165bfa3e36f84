// Package models defines client-side data models used by the Inkwell client.
package models

import "encoding/json"

// OpType classifies a pending operation.
type OpType string

const (
	OpCreate OpType = "create"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// PendingOp is one not-yet-confirmed mutation in the durable local queue.
// Ops are drained in enqueue order per page, so a later update never reaches
// the server before the create it depends on.
type PendingOp struct {
	// ID is a globally unique identifier for the operation.
	ID string

	// Seq is the local enqueue sequence, assigned by the queue. Draining
	// follows ascending Seq.
	Seq int64

	// Type is create, update or delete.
	Type OpType

	// PageID is the target page.
	PageID string

	// Data holds the page snapshot for create/update; empty for delete.
	Data json.RawMessage

	// Timestamp is the enqueue time in epoch milliseconds, monotonically
	// increasing across the queue. It is the basis for last-write-wins
	// resolution on the server.
	Timestamp int64

	// Attempts counts delivery attempts that ended in a transient failure.
	Attempts int
}
