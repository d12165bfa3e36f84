// Package pendingops implements the durable pending-operation queue on SQLite.
package pendingops

import (
	"context"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/client/models"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Enqueue appends the operation. The timestamp is clamped to be strictly
// greater than the newest queued op, so the per-page basis order survives a
// clock step backwards.
func (r *SQLiteRepository) Enqueue(ctx context.Context, op *models.PendingOp) error {
	var maxTs int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(ts), 0) FROM pending_ops`).Scan(&maxTs)
	if err != nil {
		return fmt.Errorf("failed to read queue tail: %w", err)
	}

	ts := common.NowMillis()
	if ts <= maxTs {
		ts = maxTs + 1
	}
	op.Timestamp = ts

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_ops (id, op_type, page_id, data, ts) VALUES (?, ?, ?, ?, ?)`,
		op.ID, op.Type, op.PageID, []byte(op.Data), op.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to enqueue op: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get op seq: %w", err)
	}
	op.Seq = seq
	return nil
}

// PeekBatch returns up to n oldest ops in enqueue order.
func (r *SQLiteRepository) PeekBatch(ctx context.Context, n int) ([]models.PendingOp, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, id, op_type, page_id, data, ts, attempts
		 FROM pending_ops ORDER BY seq LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending ops: %w", err)
	}
	defer rows.Close()

	var result []models.PendingOp
	for rows.Next() {
		var op models.PendingOp
		var data []byte
		if err := rows.Scan(&op.Seq, &op.ID, &op.Type, &op.PageID, &data, &op.Timestamp, &op.Attempts); err != nil {
			return nil, err
		}
		op.Data = data
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Ack removes the operation. Acking an already-removed id is a no-op.
func (r *SQLiteRepository) Ack(ctx context.Context, opID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_ops WHERE id = ?`, opID)
	if err != nil {
		return fmt.Errorf("failed to ack op: %w", err)
	}
	return nil
}

// Requeue bumps the attempt counter; the op keeps its queue position.
func (r *SQLiteRepository) Requeue(ctx context.Context, opID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pending_ops SET attempts = attempts + 1 WHERE id = ?`, opID)
	if err != nil {
		return fmt.Errorf("failed to requeue op: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) HasForPage(ctx context.Context, pageID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_ops WHERE page_id = ?`, pageID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count ops for page: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_ops`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending ops: %w", err)
	}
	return n, nil
}
