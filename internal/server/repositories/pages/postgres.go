package pages

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

const pageColumns = `id, user_id, content, indent, daily_date, folder_id, parent_page_id, ord,
	is_task, task_completed, task_completed_at, task_date, task_priority,
	starred, deleted, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (*protocol.Page, error) {
	p := &protocol.Page{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Content, &p.Indent, &p.DailyDate, &p.FolderID, &p.ParentPageID, &p.Order,
		&p.IsTask, &p.TaskCompleted, &p.TaskCompletedAt, &p.TaskDate, &p.TaskPriority,
		&p.Starred, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*protocol.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE user_id = $1 AND id = $2`

	p, err := scanPage(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, args protocol.PageListArgs) ([]protocol.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE user_id = $1 AND NOT deleted`
	params := []any{userID}

	if args.FolderID != "" {
		params = append(params, args.FolderID)
		query += fmt.Sprintf(" AND folder_id = $%d", len(params))
	}
	if args.ParentPageID != "" {
		params = append(params, args.ParentPageID)
		query += fmt.Sprintf(" AND parent_page_id = $%d", len(params))
	}
	if args.DailyDate != "" {
		params = append(params, args.DailyDate)
		query += fmt.Sprintf(" AND daily_date = $%d", len(params))
	}
	if args.Starred {
		query += " AND starred"
	}
	query += " ORDER BY ord, created_at"

	return r.selectPages(ctx, query, params...)
}

func (r *PostgresRepository) ListTasks(ctx context.Context, userID string, includeCompleted bool) ([]protocol.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE user_id = $1 AND NOT deleted AND is_task`
	if !includeCompleted {
		query += " AND NOT task_completed"
	}
	query += " ORDER BY ord, created_at"

	return r.selectPages(ctx, query, userID)
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *protocol.Page) error {
	query :=
		`INSERT INTO pages (` + pageColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (user_id, id) DO UPDATE SET
		   content = EXCLUDED.content,
		   indent = EXCLUDED.indent,
		   daily_date = EXCLUDED.daily_date,
		   folder_id = EXCLUDED.folder_id,
		   parent_page_id = EXCLUDED.parent_page_id,
		   ord = EXCLUDED.ord,
		   is_task = EXCLUDED.is_task,
		   task_completed = EXCLUDED.task_completed,
		   task_completed_at = EXCLUDED.task_completed_at,
		   task_date = EXCLUDED.task_date,
		   task_priority = EXCLUDED.task_priority,
		   starred = EXCLUDED.starred,
		   deleted = EXCLUDED.deleted,
		   updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Content, p.Indent, p.DailyDate, p.FolderID, p.ParentPageID, p.Order,
		p.IsTask, p.TaskCompleted, p.TaskCompletedAt, p.TaskDate, p.TaskPriority,
		p.Starred, p.Deleted, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ChangesSince(ctx context.Context, userID string, cursor int64) ([]protocol.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages
		 WHERE user_id = $1 AND updated_at > $2
		 ORDER BY updated_at`

	return r.selectPages(ctx, query, userID, cursor)
}

func (r *PostgresRepository) selectPages(ctx context.Context, query string, params ...any) ([]protocol.Page, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []protocol.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
