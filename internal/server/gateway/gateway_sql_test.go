package gateway

import (
	"context"
	"database/sql"
	"testing"

	"github.com/inkwellapp/inkwell/internal/dbx"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/inkwellapp/inkwell/internal/server/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/server/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/server/repositories/sessions"
	"github.com/inkwellapp/inkwell/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// sqlRepos vends the production SQL repositories. The in-memory fakes key
// records per user, so tests of the write path's actual isolation have to run
// the real queries.
type sqlRepos struct{}

func (sqlRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (sqlRepos) Users(db dbx.DBTX) users.Repository           { return users.NewPostgresRepository(db) }
func (sqlRepos) Sessions(db dbx.DBTX) sessions.Repository     { return sessions.NewPostgresRepository(db) }
func (sqlRepos) Pages(db dbx.DBTX) pages.Repository           { return pages.NewPostgresRepository(db) }
func (sqlRepos) Folders(db dbx.DBTX) folders.Repository       { return folders.NewPostgresRepository(db) }

const sqlTestSchema = `
CREATE TABLE pages (
    id                TEXT NOT NULL,
    user_id           TEXT NOT NULL,
    content           TEXT NOT NULL DEFAULT '',
    indent            INTEGER NOT NULL DEFAULT 0,
    daily_date        TEXT NOT NULL DEFAULT '',
    folder_id         TEXT NOT NULL DEFAULT '',
    parent_page_id    TEXT NOT NULL DEFAULT '',
    ord               DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_task           BOOLEAN NOT NULL DEFAULT 0,
    task_completed    BOOLEAN NOT NULL DEFAULT 0,
    task_completed_at BIGINT NOT NULL DEFAULT 0,
    task_date         TEXT NOT NULL DEFAULT '',
    task_priority     TEXT NOT NULL DEFAULT '',
    starred           BOOLEAN NOT NULL DEFAULT 0,
    deleted           BOOLEAN NOT NULL DEFAULT 0,
    created_at        BIGINT NOT NULL,
    updated_at        BIGINT NOT NULL,
    PRIMARY KEY (user_id, id)
);

CREATE TABLE folders (
    id         TEXT NOT NULL,
    user_id    TEXT NOT NULL,
    name       TEXT NOT NULL,
    slug       TEXT NOT NULL,
    parent_id  TEXT NOT NULL DEFAULT '',
    ord        DOUBLE PRECISION NOT NULL DEFAULT 0,
    deleted    BOOLEAN NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (user_id, id)
);
`

func newSQLGateway(t *testing.T) *Gateway {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(sqlTestSchema)
	require.NoError(t, err)

	return New(db, sqlRepos{}, logging.NewSlogLogger(nil))
}

func TestSQLUpsert_SameIDDifferentUsers(t *testing.T) {
	g := newSQLGateway(t)
	ctx := context.Background()

	resp, err := g.Mutate(ctx, alice, protocol.MutationPageUpsert, mustJSON(t, protocol.PageUpsertArgs{
		Page:           protocol.Page{ID: "p1", Content: "meeting notes"},
		BasisTimestamp: 100,
	}))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)

	// same client-generated id, different account: lands on its own row
	resp, err = g.Mutate(ctx, bob, protocol.MutationPageUpsert, mustJSON(t, protocol.PageUpsertArgs{
		Page:           protocol.Page{ID: "p1", Content: "groceries"},
		BasisTimestamp: 200,
	}))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)
	assert.Equal(t, "u-bob", resp.Page.UserID)

	got, err := g.Query(ctx, alice, protocol.QueryPageGet, mustJSON(t, protocol.PageGetArgs{PageID: "p1"}))
	require.NoError(t, err)
	page := got.(*protocol.Page)
	assert.Equal(t, "meeting notes", page.Content)
	assert.EqualValues(t, 100, page.UpdatedAt)
	assert.Equal(t, "u-alice", page.UserID)

	got, err = g.Query(ctx, bob, protocol.QueryPageGet, mustJSON(t, protocol.PageGetArgs{PageID: "p1"}))
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.(*protocol.Page).Content)
}

func TestSQLDelete_SameIDDifferentUsers(t *testing.T) {
	g := newSQLGateway(t)
	ctx := context.Background()

	_, err := g.Mutate(ctx, alice, protocol.MutationPageUpsert, mustJSON(t, protocol.PageUpsertArgs{
		Page:           protocol.Page{ID: "p1", Content: "keep me"},
		BasisTimestamp: 100,
	}))
	require.NoError(t, err)

	resp, err := g.Mutate(ctx, bob, protocol.MutationPageDelete, mustJSON(t, protocol.PageDeleteArgs{
		PageID:         "p1",
		BasisTimestamp: 200,
	}))
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusOK, resp.Status, "absent for this user, so a no-op")

	got, err := g.Query(ctx, alice, protocol.QueryPageGet, mustJSON(t, protocol.PageGetArgs{PageID: "p1"}))
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.(*protocol.Page).Content)
}

func TestSQLFolderUpsert_SameIDDifferentUsers(t *testing.T) {
	g := newSQLGateway(t)
	ctx := context.Background()

	resp, err := g.Mutate(ctx, alice, protocol.MutationFolderUpsert, mustJSON(t, protocol.FolderUpsertArgs{
		Folder:         protocol.Folder{ID: "f1", Name: "Recipes"},
		BasisTimestamp: 100,
	}))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)

	resp, err = g.Mutate(ctx, bob, protocol.MutationFolderUpsert, mustJSON(t, protocol.FolderUpsertArgs{
		Folder:         protocol.Folder{ID: "f1", Name: "Taxes"},
		BasisTimestamp: 200,
	}))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, resp.Status)

	got, err := g.Query(ctx, alice, protocol.QueryFolderList, mustJSON(t, struct{}{}))
	require.NoError(t, err)
	list := got.([]protocol.Folder)
	require.Len(t, list, 1)
	assert.Equal(t, "Recipes", list[0].Name)
	assert.Equal(t, "recipes", list[0].Slug)
	assert.EqualValues(t, 100, list[0].UpdatedAt)
}

func TestSQLChangesSince_ScopedToUser(t *testing.T) {
	g := newSQLGateway(t)
	ctx := context.Background()

	_, err := g.Mutate(ctx, alice, protocol.MutationPageUpsert, mustJSON(t, protocol.PageUpsertArgs{
		Page:           protocol.Page{ID: "p1", Content: "mine"},
		BasisTimestamp: 100,
	}))
	require.NoError(t, err)
	_, err = g.Mutate(ctx, bob, protocol.MutationPageUpsert, mustJSON(t, protocol.PageUpsertArgs{
		Page:           protocol.Page{ID: "p2", Content: "theirs"},
		BasisTimestamp: 200,
	}))
	require.NoError(t, err)

	got, err := g.Query(ctx, alice, protocol.QueryChangeFeed, mustJSON(t, protocol.ChangeFeedArgs{Cursor: 0}))
	require.NoError(t, err)
	changes := got.(*protocol.Changes)
	require.Len(t, changes.Pages, 1)
	assert.Equal(t, "p1", changes.Pages[0].ID)
	assert.EqualValues(t, 100, changes.Cursor)
}
