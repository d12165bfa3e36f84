package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inkwellapp/inkwell/internal/client/api"
	"github.com/inkwellapp/inkwell/internal/client/models"
	"github.com/inkwellapp/inkwell/internal/client/repositories/folders"
	"github.com/inkwellapp/inkwell/internal/client/repositories/metadata"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pages"
	"github.com/inkwellapp/inkwell/internal/client/repositories/pendingops"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/logging"
	"github.com/inkwellapp/inkwell/internal/protocol"
	"github.com/sethvargo/go-retry"
)

const (
	// DefaultInterval is the reconciliation tick.
	DefaultInterval = time.Second
	// DefaultBatchSize caps how many queued ops one tick drains.
	DefaultBatchSize = 50
)

// SyncStatus is a snapshot of the reconciliation state for UI indicators.
type SyncStatus struct {
	Pending    int
	LastSyncAt time.Time
	LastError  string
	Visible    bool
}

// Syncer is the reconciliation loop: on each tick it drains a batch from the
// pending-operation queue, ships every operation to the mutation endpoint,
// and folds the outcomes back into the local cache, then pulls the server's
// change feed. One Syncer runs per client process; it owns the queue.
//
// Outcome rules:
//   - ok: ack, adopt the canonical record (server wins generated fields);
//   - invalid: ack and log, retrying can never succeed;
//   - conflict: the server holds a newer version, so drop the local op and
//     adopt the server record (last-write-wins);
//   - transient: requeue and stop the drain until the next tick.
type Syncer struct {
	db       *sql.DB
	client   api.Client
	queue    pendingops.Repository
	pages    pages.Repository
	folders  folders.Repository
	metadata metadata.Repository
	logger   logging.Logger

	interval  time.Duration
	batchSize int

	visible atomic.Bool
	kick    chan struct{}

	mu         sync.Mutex
	lastSyncAt time.Time
	lastErr    error
}

// SyncerDeps bundles the Syncer's collaborators.
type SyncerDeps struct {
	DB       *sql.DB
	Client   api.Client
	Queue    pendingops.Repository
	Pages    pages.Repository
	Folders  folders.Repository
	Metadata metadata.Repository
	Logger   logging.Logger
}

// NewSyncer constructs a Syncer. A zero interval or batch size falls back to
// the defaults. The Syncer starts visible.
func NewSyncer(deps SyncerDeps, interval time.Duration, batchSize int) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s := &Syncer{
		db:        deps.DB,
		client:    deps.Client,
		queue:     deps.Queue,
		pages:     deps.Pages,
		folders:   deps.Folders,
		metadata:  deps.Metadata,
		logger:    deps.Logger.With("module", "syncer"),
		interval:  interval,
		batchSize: batchSize,
		kick:      make(chan struct{}, 1),
	}
	s.visible.Store(true)
	return s
}

// Run ticks until ctx is cancelled. Ticks are skipped while the client is
// not foreground-visible; regaining visibility kicks an immediate cycle.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.kick:
		}
		if !s.visible.Load() {
			continue
		}
		s.SyncOnce(ctx)
	}
}

// SetVisible records foreground visibility. Becoming visible triggers an
// immediate cycle to re-drain any backlog.
func (s *Syncer) SetVisible(v bool) {
	was := s.visible.Swap(v)
	if v && !was {
		s.Kick()
	}
}

// Kick requests a cycle outside the regular tick (non-blocking).
func (s *Syncer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Status reports the queue depth and the outcome of the last cycle.
func (s *Syncer) Status(ctx context.Context) SyncStatus {
	n, err := s.queue.Count(ctx)
	if err != nil {
		n = -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := SyncStatus{Pending: n, LastSyncAt: s.lastSyncAt, Visible: s.visible.Load()}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// SyncOnce runs a single reconciliation cycle: drain one batch, then pull
// the change feed.
func (s *Syncer) SyncOnce(ctx context.Context) {
	err := s.drain(ctx)
	if err == nil {
		err = s.pull(ctx)
	}

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.lastSyncAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn(ctx, "sync cycle incomplete", "error", err)
	}
}

func (s *Syncer) drain(ctx context.Context) error {
	batch, err := s.queue.PeekBatch(ctx, s.batchSize)
	if err != nil {
		return fmt.Errorf("peek batch: %w", err)
	}

	for i := range batch {
		op := &batch[i]

		resp, err := s.deliver(ctx, op)
		if err != nil {
			if api.IsTransient(err) || errors.Is(err, common.ErrorUnauthorized) {
				// the server made no decision; keep the op and try again on
				// a later tick (stop here so per-page order is preserved)
				if reqErr := s.queue.Requeue(ctx, op.ID); reqErr != nil {
					return reqErr
				}
				return err
			}
			// terminal without a response: the op can never succeed
			s.logger.Warn(ctx, "dropping operation", "op", op.ID, "page", op.PageID, "error", err)
			if err := s.queue.Ack(ctx, op.ID); err != nil {
				return err
			}
			continue
		}

		switch resp.Status {
		case protocol.StatusOK:
			if err := s.queue.Ack(ctx, op.ID); err != nil {
				return err
			}
			if resp.Page != nil {
				if err := s.adopt(ctx, resp.Page); err != nil {
					return err
				}
			}
		case protocol.StatusConflict:
			if err := s.queue.Ack(ctx, op.ID); err != nil {
				return err
			}
			s.logger.Info(ctx, "conflict resolved in server's favor", "page", op.PageID)
			if resp.Page != nil {
				if err := s.adopt(ctx, resp.Page); err != nil {
					return err
				}
			}
		case protocol.StatusInvalid:
			s.logger.Warn(ctx, "server rejected operation", "op", op.ID, "page", op.PageID, "message", resp.Message)
			if err := s.queue.Ack(ctx, op.ID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown mutation status %q", resp.Status)
		}
	}
	return nil
}

// deliver ships one operation, absorbing short transient blips with bounded
// exponential backoff inside the attempt. Anything still failing after that
// surfaces as a transient error and stays queued.
func (s *Syncer) deliver(ctx context.Context, op *models.PendingOp) (*protocol.MutationResponse, error) {
	name, args, err := mutationFor(op)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))

	var resp *protocol.MutationResponse
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := s.client.Mutate(ctx, name, args)
		if err != nil {
			if api.IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// mutationFor maps a queued operation onto the wire mutation. Create and
// update are the same upsert: replays and crash-retries land on identical
// state.
func mutationFor(op *models.PendingOp) (string, any, error) {
	switch op.Type {
	case models.OpCreate, models.OpUpdate:
		var page protocol.Page
		if err := json.Unmarshal(op.Data, &page); err != nil {
			return "", nil, fmt.Errorf("malformed op payload: %w", err)
		}
		return protocol.MutationPageUpsert, protocol.PageUpsertArgs{Page: page, BasisTimestamp: op.Timestamp}, nil
	case models.OpDelete:
		return protocol.MutationPageDelete, protocol.PageDeleteArgs{PageID: op.PageID, BasisTimestamp: op.Timestamp}, nil
	default:
		return "", nil, fmt.Errorf("unknown op type %q", op.Type)
	}
}

// adopt overwrites the cache with the server's record, unless the page
// still has queued local ops, which must stay visible to local reads until
// they are resolved themselves.
func (s *Syncer) adopt(ctx context.Context, page *protocol.Page) error {
	has, err := s.queue.HasForPage(ctx, page.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if page.Deleted {
		return s.pages.Remove(ctx, page.ID)
	}
	return s.pages.Put(ctx, page)
}

// pull applies the server's change feed to the cache so edits from other
// devices become readable locally.
func (s *Syncer) pull(ctx context.Context) error {
	cursor, err := s.loadCursor(ctx)
	if err != nil {
		return err
	}

	var changes protocol.Changes
	if err := s.client.Query(ctx, protocol.QueryChangeFeed, protocol.ChangeFeedArgs{Cursor: cursor}, &changes); err != nil {
		return fmt.Errorf("change feed: %w", err)
	}

	for i := range changes.Pages {
		if err := s.adopt(ctx, &changes.Pages[i]); err != nil {
			return err
		}
	}
	for i := range changes.Folders {
		f := &changes.Folders[i]
		if f.Deleted {
			err = s.folders.Remove(ctx, f.ID)
		} else {
			err = s.folders.Put(ctx, f)
		}
		if err != nil {
			return err
		}
	}

	if changes.Cursor > cursor {
		return s.saveCursor(ctx, changes.Cursor)
	}
	return nil
}

func (s *Syncer) loadCursor(ctx context.Context) (int64, error) {
	raw, err := s.metadata.Get(ctx, metadata.KeySyncCursor)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt sync cursor %q: %w", raw, err)
	}
	return cursor, nil
}

func (s *Syncer) saveCursor(ctx context.Context, cursor int64) error {
	return s.metadata.Set(ctx, metadata.KeySyncCursor, []byte(strconv.FormatInt(cursor, 10)))
}
