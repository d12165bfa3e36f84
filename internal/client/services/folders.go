package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/client/api"
	"github.com/inkwellapp/inkwell/internal/client/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/google/uuid"
)

// FolderService manages the folder tree. Unlike pages, folder mutations go
// straight to the server: the slug is derived there, so the canonical record
// is only known after the round trip. Reads still come from the local cache.
type FolderService struct {
	db     *sql.DB
	client api.Client
}

// NewFolderService returns a FolderService.
func NewFolderService(db *sql.DB, client api.Client) *FolderService {
	return &FolderService{db: db, client: client}
}

// Create makes a folder under parentID ("" for the root).
func (s *FolderService) Create(ctx context.Context, name, parentID string) (*protocol.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name required", common.ErrorValidation)
	}
	now := common.NowMillis()
	f := protocol.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.upsert(ctx, f, now)
}

// Rename changes a folder's name; the server re-derives the slug.
func (s *FolderService) Rename(ctx context.Context, id, name string) (*protocol.Folder, error) {
	f, err := folders.NewSQLiteRepository(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Name = name
	f.UpdatedAt = common.NowMillis()
	return s.upsert(ctx, *f, f.UpdatedAt)
}

// Delete removes a folder on the server and from the cache.
func (s *FolderService) Delete(ctx context.Context, id string) error {
	resp, err := s.client.Mutate(ctx, protocol.MutationFolderDelete, protocol.FolderDeleteArgs{
		FolderID:       id,
		BasisTimestamp: common.NowMillis(),
	})
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusInvalid:
		return fmt.Errorf("%w: %s", common.ErrorValidation, resp.Message)
	case protocol.StatusConflict:
		// the server kept a newer record; adopt it instead of deleting
		if resp.Folder == nil {
			return fmt.Errorf("server returned no folder record")
		}
		return folders.NewSQLiteRepository(s.db).Put(ctx, resp.Folder)
	}
	return folders.NewSQLiteRepository(s.db).Remove(ctx, id)
}

// List reads folders from the local cache.
func (s *FolderService) List(ctx context.Context) ([]protocol.Folder, error) {
	return folders.NewSQLiteRepository(s.db).List(ctx)
}

func (s *FolderService) upsert(ctx context.Context, f protocol.Folder, basis int64) (*protocol.Folder, error) {
	resp, err := s.client.Mutate(ctx, protocol.MutationFolderUpsert, protocol.FolderUpsertArgs{
		Folder:         f,
		BasisTimestamp: basis,
	})
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case protocol.StatusOK, protocol.StatusConflict:
		// either way the response carries the authoritative record
		if resp.Folder == nil {
			return nil, fmt.Errorf("server returned no folder record")
		}
		if err := folders.NewSQLiteRepository(s.db).Put(ctx, resp.Folder); err != nil {
			return nil, err
		}
		return resp.Folder, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, resp.Message)
	}
}
