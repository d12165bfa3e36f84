package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/inkwellapp/inkwell/internal/client/storage"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// mutateCall records one call to fakeClient.Mutate with its args re-encoded
// as JSON so tests can decode into the expected shape.
type mutateCall struct {
	Name string
	Args json.RawMessage
}

// fakeClient scripts server behavior for service tests.
type fakeClient struct {
	mu      sync.Mutex
	calls   []mutateCall
	mutate  func(name string, args json.RawMessage) (*protocol.MutationResponse, error)
	query   func(name string, args json.RawMessage) (any, error)
	token   string
	pingErr error
}

func (f *fakeClient) Register(ctx context.Context, email, password string) error { return nil }

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	return "fake-token", nil
}

func (f *fakeClient) Logout(ctx context.Context) error { return nil }

func (f *fakeClient) Mutate(ctx context.Context, name string, args any) (*protocol.MutationResponse, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, mutateCall{Name: name, Args: raw})
	f.mu.Unlock()
	if f.mutate == nil {
		return &protocol.MutationResponse{Status: protocol.StatusOK}, nil
	}
	return f.mutate(name, raw)
}

func (f *fakeClient) Query(ctx context.Context, name string, args any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	if f.query == nil {
		return nil
	}
	result, err := f.query(name, raw)
	if err != nil {
		return err
	}
	if out == nil || result == nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) SetSessionToken(token string) { f.token = token }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) mutateCalls() []mutateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mutateCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestSyncer(t *testing.T, store *storage.Store, client *fakeClient) *Syncer {
	t.Helper()
	return NewSyncer(SyncerDeps{
		DB:       store.DB,
		Client:   client,
		Queue:    store.PendingOps,
		Pages:    store.Pages,
		Folders:  store.Folders,
		Metadata: store.Metadata,
		Logger:   logging.NewSlogLogger(nil),
	}, 0, 0)
}
