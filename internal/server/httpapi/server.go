// Package httpapi exposes the server over HTTP: account endpoints, the
// name-dispatched mutation and query gateways, and a health probe. Sessions
// ride in an HttpOnly cookie; handlers resolve it once and pass the resulting
// Identity explicitly.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/server/auth"
	"github.com/inkwellapp/inkwell/internal/server/gateway"
	"github.com/inkwellapp/inkwell/internal/server/services"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "inkwell_session"

// Server is the HTTP front of the application.
type Server struct {
	addr           string
	logger         logging.Logger
	validate       *validator.Validate
	users          *services.UserService
	sessions       *auth.SessionManager
	gateway        *gateway.Gateway
	sessionTTL     time.Duration
	secureCookies  bool
	allowedOrigins []string
}

// Options carries the Server's collaborators and settings.
type Options struct {
	Addr           string
	Logger         logging.Logger
	Users          *services.UserService
	Sessions       *auth.SessionManager
	Gateway        *gateway.Gateway
	SessionTTL     time.Duration
	SecureCookies  bool
	AllowedOrigins []string
}

// NewServer assembles the HTTP server.
func NewServer(opts Options) *Server {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return &Server{
		addr:           opts.Addr,
		logger:         opts.Logger.With("module", "httpapi"),
		validate:       validator.New(),
		users:          opts.Users,
		sessions:       opts.Sessions,
		gateway:        opts.Gateway,
		sessionTTL:     ttl,
		secureCookies:  opts.SecureCookies,
		allowedOrigins: opts.AllowedOrigins,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.withIdentity(s.handleLogout))
	r.Post("/api/mutation", s.withIdentity(s.handleMutation))
	r.Post("/api/query", s.withIdentity(s.handleQuery))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
