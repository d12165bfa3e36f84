// Package folders implements the durable local folder cache on SQLite.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/dbx"
	"github.com/inkwellapp/inkwell/internal/protocol"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*protocol.Folder, error) {
	query := `SELECT id, user_id, name, slug, parent_id, ord, created_at, updated_at
		FROM folders WHERE id = ?`
	f := &protocol.Folder{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.UserID, &f.Name, &f.Slug, &f.ParentID, &f.Order, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]protocol.Folder, error) {
	query := `SELECT id, user_id, name, slug, parent_id, ord, created_at, updated_at
		FROM folders ORDER BY ord, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []protocol.Folder
	for rows.Next() {
		var f protocol.Folder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Slug, &f.ParentID, &f.Order,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Put upserts a folder by id.
func (r *SQLiteRepository) Put(ctx context.Context, f *protocol.Folder) error {
	query := `INSERT INTO folders (id, user_id, name, slug, parent_id, ord, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			slug = excluded.slug,
			parent_id = excluded.parent_id,
			ord = excluded.ord,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Name, f.Slug, f.ParentID, f.Order, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}
