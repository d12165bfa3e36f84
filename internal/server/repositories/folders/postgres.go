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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const folderColumns = `id, user_id, name, slug, parent_id, ord, deleted, created_at, updated_at`

func scanFolder(row interface{ Scan(...any) error }) (*protocol.Folder, error) {
	f := &protocol.Folder{}
	err := row.Scan(
		&f.ID, &f.UserID, &f.Name, &f.Slug, &f.ParentID, &f.Order, &f.Deleted,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*protocol.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE user_id = $1 AND id = $2`

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]protocol.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		 WHERE user_id = $1 AND NOT deleted
		 ORDER BY ord, name`

	return r.selectFolders(ctx, query, userID)
}

func (r *PostgresRepository) Upsert(ctx context.Context, f *protocol.Folder) error {
	query :=
		`INSERT INTO folders (` + folderColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, id) DO UPDATE SET
		   name = EXCLUDED.name,
		   slug = EXCLUDED.slug,
		   parent_id = EXCLUDED.parent_id,
		   ord = EXCLUDED.ord,
		   deleted = EXCLUDED.deleted,
		   updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.UserID, f.Name, f.Slug, f.ParentID, f.Order, f.Deleted,
		f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SlugExists(ctx context.Context, userID, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM folders
		 WHERE user_id = $1 AND slug = $2 AND id <> $3 AND NOT deleted`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, slug, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ChangesSince(ctx context.Context, userID string, cursor int64) ([]protocol.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		 WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at`

	return r.selectFolders(ctx, query, userID, cursor)
}

func (r *PostgresRepository) selectFolders(ctx context.Context, query string, params ...any) ([]protocol.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []protocol.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
