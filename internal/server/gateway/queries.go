package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/inkwellapp/inkwell/internal/server/auth"
)

func decodeArgs(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s", common.ErrTransformFailed, err.Error())
	}
	return nil
}

func (g *Gateway) pageGet(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (any, error) {
	var args protocol.PageGetArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.PageID == "" {
		return nil, fmt.Errorf("%w: page id required", common.ErrTransformFailed)
	}

	page, err := g.repos.Pages(g.db).Get(ctx, ident.UserID, args.PageID)
	if err != nil {
		return nil, err
	}
	if page.Deleted {
		return nil, common.ErrorNotFound
	}
	return page, nil
}

func (g *Gateway) pageList(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (any, error) {
	var args protocol.PageListArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	pages, err := g.repos.Pages(g.db).List(ctx, ident.UserID, args)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []protocol.Page{}
	}
	return pages, nil
}

func (g *Gateway) taskList(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (any, error) {
	var args protocol.TaskListArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	tasks, err := g.repos.Pages(g.db).ListTasks(ctx, ident.UserID, args.IncludeCompleted)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []protocol.Page{}
	}
	return tasks, nil
}

func (g *Gateway) folderList(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (any, error) {
	folders, err := g.repos.Folders(g.db).List(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []protocol.Folder{}
	}
	return folders, nil
}

// changesSince returns everything (tombstones included) modified after the
// cursor, plus the new cursor: the highest UpdatedAt seen, or the old cursor
// when nothing changed.
func (g *Gateway) changesSince(ctx context.Context, ident *auth.Identity, raw json.RawMessage) (any, error) {
	var args protocol.ChangeFeedArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	pages, err := g.repos.Pages(g.db).ChangesSince(ctx, ident.UserID, args.Cursor)
	if err != nil {
		return nil, err
	}
	folders, err := g.repos.Folders(g.db).ChangesSince(ctx, ident.UserID, args.Cursor)
	if err != nil {
		return nil, err
	}

	cursor := args.Cursor
	for i := range pages {
		if pages[i].UpdatedAt > cursor {
			cursor = pages[i].UpdatedAt
		}
	}
	for i := range folders {
		if folders[i].UpdatedAt > cursor {
			cursor = folders[i].UpdatedAt
		}
	}

	if pages == nil {
		pages = []protocol.Page{}
	}
	if folders == nil {
		folders = []protocol.Folder{}
	}
	return &protocol.Changes{Pages: pages, Folders: folders, Cursor: cursor}, nil
}
