// Package storage opens the client's local SQLite database, runs the
// embedded migrations, and wires the repositories together.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellapp/inkwell/internal/client/migrations"
	"github.com/inkwellapp/inkwell/internal/client/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/client/repositories/metadata"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pendingops"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store bundles the local database handle and its repositories. The database
// file is owned exclusively by the client process that created it.
type Store struct {
	DB         *sql.DB
	Pages      pages.Repository
	Folders    folders.Repository
	PendingOps pendingops.Repository
	Metadata   metadata.Repository
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the local database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	// local file, single process: one writer connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{
		DB:         db,
		Pages:      pages.NewSQLiteRepository(db),
		Folders:    folders.NewSQLiteRepository(db),
		PendingOps: pendingops.NewSQLiteRepository(db),
		Metadata:   metadata.NewSQLiteRepository(db),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
