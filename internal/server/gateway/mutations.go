package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/inkwellapp/inkwell/internal/server/auth"
)

// maxContentBytes caps page content to keep a single record manageable.
const maxContentBytes = 1 << 20

// pageUpsert creates or overwrites a page. Conflict resolution is
// last-write-wins at record granularity: if the stored UpdatedAt is newer
// than the operation's basis timestamp, the stored record wins and is
// returned so the client can adopt it.
func (g *Gateway) pageUpsert(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (*protocol.MutationResponse, error) {
	var args protocol.PageUpsertArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return invalid("malformed args: " + err.Error()), nil
	}
	if msg := validatePage(&args.Page); msg != "" {
		return invalid(msg), nil
	}
	if args.BasisTimestamp <= 0 {
		return invalid("basis timestamp required"), nil
	}

	repo := g.repos.Pages(g.db)

	existing, err := repo.Get(ctx, ident.UserID, args.Page.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if existing != nil && existing.UpdatedAt > args.BasisTimestamp {
		return &protocol.MutationResponse{Status: protocol.StatusConflict, Page: existing}, nil
	}

	page := args.Page
	page.UserID = ident.UserID
	page.Deleted = false
	page.UpdatedAt = args.BasisTimestamp
	if existing != nil {
		page.CreatedAt = existing.CreatedAt
	} else if page.CreatedAt == 0 {
		page.CreatedAt = args.BasisTimestamp
	}

	if err := repo.Upsert(ctx, &page); err != nil {
		return nil, err
	}
	return &protocol.MutationResponse{Status: protocol.StatusOK, Page: &page}, nil
}

// pageDelete tombstones a page. Deleting an id the server never saw is a
// successful no-op, so replays and cross-device races stay silent.
func (g *Gateway) pageDelete(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (*protocol.MutationResponse, error) {
	var args protocol.PageDeleteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return invalid("malformed args: " + err.Error()), nil
	}
	if args.PageID == "" {
		return invalid("page id required"), nil
	}

	repo := g.repos.Pages(g.db)

	existing, err := repo.Get(ctx, ident.UserID, args.PageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &protocol.MutationResponse{Status: protocol.StatusOK}, nil
		}
		return nil, err
	}
	if existing.UpdatedAt > args.BasisTimestamp {
		return &protocol.MutationResponse{Status: protocol.StatusConflict, Page: existing}, nil
	}

	tombstone := *existing
	tombstone.Deleted = true
	tombstone.Content = ""
	tombstone.UpdatedAt = args.BasisTimestamp

	if err := repo.Upsert(ctx, &tombstone); err != nil {
		return nil, err
	}
	return &protocol.MutationResponse{Status: protocol.StatusOK, Page: &tombstone}, nil
}

// folderUpsert creates or renames a folder. The slug is always derived
// server-side from the name; a taken slug gets a numeric suffix.
func (g *Gateway) folderUpsert(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (*protocol.MutationResponse, error) {
	var args protocol.FolderUpsertArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return invalid("malformed args: " + err.Error()), nil
	}
	if args.Folder.ID == "" {
		return invalid("folder id required"), nil
	}
	if args.Folder.Name == "" {
		return invalid("folder name required"), nil
	}
	if args.BasisTimestamp <= 0 {
		return invalid("basis timestamp required"), nil
	}

	repo := g.repos.Folders(g.db)

	existing, err := repo.Get(ctx, ident.UserID, args.Folder.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if existing != nil && existing.UpdatedAt > args.BasisTimestamp {
		return &protocol.MutationResponse{Status: protocol.StatusConflict, Folder: existing}, nil
	}

	folder := args.Folder
	folder.UserID = ident.UserID
	folder.Deleted = false
	folder.UpdatedAt = args.BasisTimestamp
	if existing != nil {
		folder.CreatedAt = existing.CreatedAt
	} else if folder.CreatedAt == 0 {
		folder.CreatedAt = args.BasisTimestamp
	}

	slug, err := g.resolveSlug(ctx, ident.UserID, folder.Name, folder.ID)
	if err != nil {
		return nil, err
	}
	folder.Slug = slug

	if err := repo.Upsert(ctx, &folder); err != nil {
		return nil, err
	}
	return &protocol.MutationResponse{Status: protocol.StatusOK, Folder: &folder}, nil
}

// folderDelete tombstones a folder. Pages inside keep their folder id; they
// surface in the unfiled view once the folder is gone.
func (g *Gateway) folderDelete(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (*protocol.MutationResponse, error) {
	var args protocol.FolderDeleteArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return invalid("malformed args: " + err.Error()), nil
	}
	if args.FolderID == "" {
		return invalid("folder id required"), nil
	}

	repo := g.repos.Folders(g.db)

	existing, err := repo.Get(ctx, ident.UserID, args.FolderID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &protocol.MutationResponse{Status: protocol.StatusOK}, nil
		}
		return nil, err
	}
	if existing.UpdatedAt > args.BasisTimestamp {
		return &protocol.MutationResponse{Status: protocol.StatusConflict, Folder: existing}, nil
	}

	tombstone := *existing
	tombstone.Deleted = true
	tombstone.UpdatedAt = args.BasisTimestamp

	if err := repo.Upsert(ctx, &tombstone); err != nil {
		return nil, err
	}
	return &protocol.MutationResponse{Status: protocol.StatusOK, Folder: &tombstone}, nil
}

func validatePage(p *protocol.Page) string {
	if p.ID == "" {
		return "page id required"
	}
	if p.Indent < 0 {
		return "indent must be non-negative"
	}
	if !p.TaskPriority.Valid() {
		return fmt.Sprintf("unknown task priority %q", p.TaskPriority)
	}
	if p.FolderID != "" && p.ParentPageID != "" {
		return "page cannot live in both a folder and a parent page"
	}
	if len(p.Content) > maxContentBytes {
		return "content too large"
	}
	return ""
}
