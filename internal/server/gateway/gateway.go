// Package gateway dispatches named mutations and queries against the
// authoritative store. The sets of names are closed: anything not registered
// here is rejected, never partially applied.
package gateway

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/inkwellapp/inkwell/internal/server/auth"
	"github.com/inkwellapp/inkwell/internal/server/repositories/repomanager"
)

type mutationHandler func(ctx context.Context, ident *auth.Identity, args json.RawMessage) (*protocol.MutationResponse, error)

type queryHandler func(ctx context.Context, ident *auth.Identity, args json.RawMessage) (any, error)

// Gateway owns the mutation and query registries. All record access flows
// through it, scoped by the caller's Identity.
type Gateway struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger

	mutations map[string]mutationHandler
	queries   map[string]queryHandler
}

// New returns a Gateway with the full registry of operations.
func New(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *Gateway {
	g := &Gateway{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "gateway"),
	}
	g.mutations = map[string]mutationHandler{
		protocol.MutationPageUpsert:   g.pageUpsert,
		protocol.MutationPageDelete:   g.pageDelete,
		protocol.MutationFolderUpsert: g.folderUpsert,
		protocol.MutationFolderDelete: g.folderDelete,
	}
	g.queries = map[string]queryHandler{
		protocol.QueryPageGet:    g.pageGet,
		protocol.QueryPageList:   g.pageList,
		protocol.QueryTaskList:   g.taskList,
		protocol.QueryFolderList: g.folderList,
		protocol.QueryChangeFeed: g.changesSince,
	}
	return g
}

// Mutate runs the named mutation for the identity. Unknown names yield
// ErrUnknownMutation without touching the store.
func (g *Gateway) Mutate(ctx context.Context, ident *auth.Identity, name string, args json.RawMessage) (*protocol.MutationResponse, error) {
	handler, ok := g.mutations[name]
	if !ok {
		return nil, common.ErrUnknownMutation
	}
	return handler(ctx, ident, args)
}

// Query runs the named query for the identity. Unknown names yield
// ErrUnknownQuery.
func (g *Gateway) Query(ctx context.Context, ident *auth.Identity, name string, args json.RawMessage) (any, error) {
	handler, ok := g.queries[name]
	if !ok {
		return nil, common.ErrUnknownQuery
	}
	return handler(ctx, ident, args)
}

func invalid(message string) *protocol.MutationResponse {
	return &protocol.MutationResponse{Status: protocol.StatusInvalid, Message: message}
}
