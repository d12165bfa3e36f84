package repomanager

import (
	"context"
	"database/sql"

	"github.com/inkwellapp/inkwell/internal/dbx"
	"github.com/inkwellapp/inkwell/internal/server/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/server/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/server/repositories/sessions"
	"github.com/inkwellapp/inkwell/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a caller can run
// several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Pages(db dbx.DBTX) pages.Repository
	Folders(db dbx.DBTX) folders.Repository
}
