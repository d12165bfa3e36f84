// Package services contains the client-side business logic: optimistic local
// mutations and the background reconciliation loop.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/client/models"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pendingops"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/dbx"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/google/uuid"
)

// PageService applies page mutations optimistically: the local cache and the
// pending-operation queue are updated in one transaction, so a local read
// issued right after a write always sees the write, and no enqueued operation
// can miss its cache update (or vice versa) on a crash.
type PageService struct {
	db *sql.DB
}

// NewPageService returns a PageService over the local database.
func NewPageService(db *sql.DB) *PageService {
	return &PageService{db: db}
}

// Create stores a new page locally and queues a create for the server.
// The page's timestamps are set to the operation's enqueue timestamp, so the
// cached record and the server basis agree.
func (s *PageService) Create(ctx context.Context, p *protocol.Page) (*protocol.Page, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := validatePage(p); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		op, err := s.enqueue(ctx, tx, models.OpCreate, p)
		if err != nil {
			return err
		}
		p.CreatedAt = op.Timestamp
		p.UpdatedAt = op.Timestamp
		return s.put(ctx, tx, p, op)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update overwrites a page locally and queues an update for the server.
func (s *PageService) Update(ctx context.Context, p *protocol.Page) (*protocol.Page, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: page id required", common.ErrorValidation)
	}
	if err := validatePage(p); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := pages.NewSQLiteRepository(tx).Get(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CreatedAt = existing.CreatedAt

		op, err := s.enqueue(ctx, tx, models.OpUpdate, p)
		if err != nil {
			return err
		}
		p.UpdatedAt = op.Timestamp
		return s.put(ctx, tx, p, op)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a page from the cache and queues a delete for the server.
func (s *PageService) Delete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := pages.NewSQLiteRepository(tx).Remove(ctx, id); err != nil {
			return err
		}
		op := &models.PendingOp{ID: uuid.NewString(), Type: models.OpDelete, PageID: id}
		return pendingops.NewSQLiteRepository(tx).Enqueue(ctx, op)
	})
}

// SetTaskCompleted toggles completion on a task page.
func (s *PageService) SetTaskCompleted(ctx context.Context, id string, completed bool) (*protocol.Page, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsTask {
		return nil, fmt.Errorf("%w: page %s is not a task", common.ErrorValidation, id)
	}
	p.TaskCompleted = completed
	if completed {
		p.TaskCompletedAt = common.NowMillis()
	} else {
		p.TaskCompletedAt = 0
	}
	return s.Update(ctx, p)
}

// SetStarred toggles the star flag.
func (s *PageService) SetStarred(ctx context.Context, id string, starred bool) (*protocol.Page, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Starred = starred
	return s.Update(ctx, p)
}

// Get reads a page from the local cache. No network involved.
func (s *PageService) Get(ctx context.Context, id string) (*protocol.Page, error) {
	return pages.NewSQLiteRepository(s.db).Get(ctx, id)
}

// List reads pages from the local cache. No network involved.
func (s *PageService) List(ctx context.Context, filter models.PageFilter) ([]protocol.Page, error) {
	return pages.NewSQLiteRepository(s.db).List(ctx, filter)
}

func (s *PageService) enqueue(ctx context.Context, tx dbx.DBTX, typ models.OpType, p *protocol.Page) (*models.PendingOp, error) {
	op := &models.PendingOp{ID: uuid.NewString(), Type: typ, PageID: p.ID}
	if err := pendingops.NewSQLiteRepository(tx).Enqueue(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

// put snapshots the page into the op's payload and writes it to the cache.
// Called after enqueue so the snapshot carries the assigned timestamp.
func (s *PageService) put(ctx context.Context, tx dbx.DBTX, p *protocol.Page, op *models.PendingOp) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	op.Data = data
	if _, err := tx.ExecContext(ctx, `UPDATE pending_ops SET data = ? WHERE id = ?`, []byte(data), op.ID); err != nil {
		return fmt.Errorf("failed to store op payload: %w", err)
	}
	return pages.NewSQLiteRepository(tx).Put(ctx, p)
}

func validatePage(p *protocol.Page) error {
	if p.Indent < 0 {
		return fmt.Errorf("%w: indent must be non-negative", common.ErrorValidation)
	}
	if !p.TaskPriority.Valid() {
		return fmt.Errorf("%w: unknown task priority %q", common.ErrorValidation, p.TaskPriority)
	}
	if p.FolderID != "" && p.ParentPageID != "" {
		return fmt.Errorf("%w: page cannot live in both a folder and a parent page", common.ErrorValidation)
	}
	return nil
}
