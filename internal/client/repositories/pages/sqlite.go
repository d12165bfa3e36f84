// Package pages implements the durable local page cache on SQLite.
package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwellapp/inkwell/internal/client/models"
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

const pageColumns = `id, user_id, content, indent, daily_date, folder_id, parent_page_id, ord,
	is_task, task_completed, task_completed_at, task_date, task_priority, starred,
	created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (*protocol.Page, error) {
	p := &protocol.Page{}
	err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.Indent, &p.DailyDate, &p.FolderID,
		&p.ParentPageID, &p.Order, &p.IsTask, &p.TaskCompleted, &p.TaskCompletedAt,
		&p.TaskDate, &p.TaskPriority, &p.Starred, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a page by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*protocol.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`
	p, err := scanPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return p, nil
}

// List returns pages matching the filter.
func (r *SQLiteRepository) List(ctx context.Context, filter models.PageFilter) ([]protocol.Page, error) {
	var conds []string
	var args []any

	if filter.FolderID != "" {
		conds = append(conds, "folder_id = ?")
		args = append(args, filter.FolderID)
	}
	if filter.ParentPageID != "" {
		conds = append(conds, "parent_page_id = ?")
		args = append(args, filter.ParentPageID)
	}
	if filter.DailyDate != "" {
		conds = append(conds, "daily_date = ?")
		args = append(args, filter.DailyDate)
	}
	if filter.Starred {
		conds = append(conds, "starred = 1")
	}
	if filter.TasksOnly {
		conds = append(conds, "is_task = 1")
	}

	query := `SELECT ` + pageColumns + ` FROM pages`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ord, created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select pages: %w", err)
	}
	defer rows.Close()

	var result []protocol.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Put upserts a page by id. On conflict, all columns are updated.
func (r *SQLiteRepository) Put(ctx context.Context, p *protocol.Page) error {
	query := `INSERT INTO pages (` + pageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			content = excluded.content,
			indent = excluded.indent,
			daily_date = excluded.daily_date,
			folder_id = excluded.folder_id,
			parent_page_id = excluded.parent_page_id,
			ord = excluded.ord,
			is_task = excluded.is_task,
			task_completed = excluded.task_completed,
			task_completed_at = excluded.task_completed_at,
			task_date = excluded.task_date,
			task_priority = excluded.task_priority,
			starred = excluded.starred,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Content, p.Indent, p.DailyDate, p.FolderID, p.ParentPageID, p.Order,
		p.IsTask, p.TaskCompleted, p.TaskCompletedAt, p.TaskDate, p.TaskPriority, p.Starred,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// Remove deletes a page by id. Absent ids are a no-op so that replaying a
// delete cannot fail.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}
