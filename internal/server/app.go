// Package server assembles and runs the Inkwell backend: it opens the
// database, applies migrations, wires the services together and serves the
// HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/server/auth"
	"github.com/inkwellapp/inkwell/internal/server/config"
	"github.com/inkwellapp/inkwell/internal/server/gateway"
	"github.com/inkwellapp/inkwell/internal/server/httpapi"
	"github.com/inkwellapp/inkwell/internal/server/ratelimit"
	"github.com/inkwellapp/inkwell/internal/server/repositories/repomanager"
	"github.com/inkwellapp/inkwell/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *auth.SessionManager
	limiter  *ratelimit.Limiter
	httpsrv  *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimitMaxFailures, cfg.RateLimitWindow, cfg.RateLimitBlock, logger)
	sessions := auth.NewSessionManager(repos.Sessions(db), cfg.SessionTTL, logger)

	httpsrv := httpapi.NewServer(httpapi.Options{
		Addr:           cfg.Addr,
		Logger:         logger,
		Users:          services.NewUserService(db, repos, limiter),
		Sessions:       sessions,
		Gateway:        gateway.New(db, repos, logger),
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.SecureCookies,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: sessions,
		limiter:  limiter,
		httpsrv:  httpsrv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.RunSweeper(ctx, auth.DefaultSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.limiter.RunSweeper(ctx, ratelimit.DefaultSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpsrv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
