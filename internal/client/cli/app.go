// Package cli implements the interactive Inkwell terminal client.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/inkwellapp/inkwell/internal/client/api"
	"github.com/inkwellapp/inkwell/internal/client/config"
	"github.com/inkwellapp/inkwell/internal/client/repositories/metadata"
	"github.com/inkwellapp/inkwell/internal/client/services"
	"github.com/inkwellapp/inkwell/internal/client/storage"
	"github.com/inkwellapp/inkwell/internal/logging"
)

// App wires the local store, the server client and the reconciliation loop
// behind a small REPL.
type App struct {
	config   *config.Config
	store    *storage.Store
	client   api.Client
	pages    *services.PageService
	folders  *services.FolderService
	syncer   *services.Syncer
	reader   *bufio.Reader
	userName string
}

// NewApp opens the local database, restores a persisted session (if any) and
// assembles the services.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	if dir := filepath.Dir(c.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	store, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerAddr, nil)
	if token, err := store.Metadata.Get(ctx, metadata.KeySessionToken); err == nil && len(token) > 0 {
		apiClient.SetSessionToken(string(token))
	}

	syncer := services.NewSyncer(services.SyncerDeps{
		DB:       store.DB,
		Client:   apiClient,
		Queue:    store.PendingOps,
		Pages:    store.Pages,
		Folders:  store.Folders,
		Metadata: store.Metadata,
		Logger:   logger,
	}, c.SyncInterval, c.SyncBatchSize)

	return &App{
		config:  c,
		store:   store,
		client:  apiClient,
		pages:   services.NewPageService(store.DB),
		folders: services.NewFolderService(store.DB, apiClient),
		syncer:  syncer,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the reconciliation loop in the background and enters the REPL.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.store.Close()
	defer a.client.Close()

	go a.syncer.Run(ctx)

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}
