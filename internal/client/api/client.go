// Package api implements the client's connection to the Inkwell server:
// authentication plus the mutation and query endpoints.
package api

import (
	"context"

	"github.com/inkwellapp/inkwell/internal/protocol"
)

// Client is the remote side of the sync engine. Mutate and Query require a
// session token; transport-level failures are reported as TransientError so
// the reconciliation loop can retry them.
type Client interface {
	// Register creates an account.
	Register(ctx context.Context, email, password string) error

	// Login authenticates and returns the opaque session token issued by the
	// server. The caller persists it.
	Login(ctx context.Context, email, password string) (string, error)

	// Logout invalidates the current session on the server.
	Logout(ctx context.Context) error

	// Mutate dispatches a named mutation. A non-nil response means the
	// server made a decision (ok, invalid or conflict); a TransientError
	// means nothing is known and the operation should be retried.
	Mutate(ctx context.Context, name string, args any) (*protocol.MutationResponse, error)

	// Query dispatches a named query and decodes the result into out.
	Query(ctx context.Context, name string, args any, out any) error

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// SetSessionToken installs a previously persisted session token.
	SetSessionToken(token string)

	Close() error
}
