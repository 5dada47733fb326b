package tableactor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"agentpoker/internal/game"
)

const sweepInterval = 250 * time.Millisecond

var ErrTableNotFound = errors.New("table_not_found")

// Registry owns every live table actor and sweeps them on a ticker for
// the two independent deadlines the spec's actor design calls out:
// action timeout and the post-showdown next-hand delay. This mirrors
// the teacher coordinator's sweepTableTransitions loop, minus the
// matchmaking/session state that loop also managed.
type Registry struct {
	store     Store
	collusion CollusionProcessor
	newHandID func() string
	tableCfg  game.TableConfig
	retention int

	mu     sync.RWMutex
	tables map[string]*Actor

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRegistry(st Store, coll CollusionProcessor, newHandID func() string, tableCfg game.TableConfig, retention int) *Registry {
	return &Registry{
		store:     st,
		collusion: coll,
		newHandID: newHandID,
		tableCfg:  tableCfg,
		retention: retention,
		tables:    map[string]*Actor{},
	}
}

// CreateTable registers a brand-new table actor.
func (r *Registry) CreateTable(tableID string, smallBlind, bigBlind int64) *Actor {
	a := New(tableID, smallBlind, bigBlind, r.store, r.collusion, r.newHandID, r.tableCfg, r.retention)
	r.mu.Lock()
	r.tables[tableID] = a
	r.mu.Unlock()
	return a
}

// Get returns the actor for tableID, or ErrTableNotFound.
func (r *Registry) Get(tableID string) (*Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.tables[tableID]
	if !ok {
		return nil, ErrTableNotFound
	}
	return a, nil
}

// List returns every live actor, for spectator/admin listing endpoints.
func (r *Registry) List() []*Actor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Actor, 0, len(r.tables))
	for _, a := range r.tables {
		out = append(out, a)
	}
	return out
}

// LoadFromSnapshots restores every table the store has a snapshot for.
// Called once at startup, before the sweep loop and HTTP server start.
func (r *Registry) LoadFromSnapshots(ctx context.Context, snapshotStore interface {
	ListTableIDs(ctx context.Context) ([]string, error)
	LoadSnapshot(ctx context.Context, tableID string) ([]byte, error)
}) error {
	ids, err := snapshotStore.ListTableIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		blob, err := snapshotStore.LoadSnapshot(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("table_id", id).Msg("load table snapshot failed")
			continue
		}
		a, err := Restore(blob, r.store, r.collusion, r.newHandID, r.retention)
		if err != nil {
			log.Error().Err(err).Str("table_id", id).Msg("restore table snapshot failed")
			continue
		}
		r.mu.Lock()
		r.tables[id] = a
		r.mu.Unlock()
	}
	return nil
}

// StartSweep launches the ticker-driven deadline sweep in the
// background. Call Close to stop it and flush a final snapshot of
// every table.
func (r *Registry) StartSweep(ctx context.Context) {
	r.stop = make(chan struct{})
	ticker := time.NewTicker(sweepInterval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			case now := <-ticker.C:
				r.sweep(ctx, now)
			}
		}
	}()
}

func (r *Registry) sweep(ctx context.Context, now time.Time) {
	for _, a := range r.List() {
		if a.CheckTimeout(ctx, now) {
			continue
		}
		_ = a.StartHandIfReady(ctx, now)
	}
}

// Reset wipes tableID back to an empty waiting table, keeping its
// configured blinds, and persists the cleared snapshot immediately. It
// does not touch seated agents' current_table column in the identity
// store; a reset is an operator action on the table, not on its agents.
func (r *Registry) Reset(ctx context.Context, tableID string) error {
	r.mu.Lock()
	a, ok := r.tables[tableID]
	r.mu.Unlock()
	if !ok {
		return ErrTableNotFound
	}
	sb, bb := a.Blinds()
	fresh := New(tableID, sb, bb, r.store, r.collusion, r.newHandID, r.tableCfg, r.retention)

	r.mu.Lock()
	r.tables[tableID] = fresh
	r.mu.Unlock()

	blob, err := fresh.Snapshot()
	if err != nil {
		return err
	}
	return r.store.SaveSnapshot(ctx, tableID, blob)
}

// Close stops the sweep loop and fans out a final snapshot flush across
// every live table concurrently.
func (r *Registry) Close(ctx context.Context) error {
	if r.stop != nil {
		close(r.stop)
		r.wg.Wait()
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range r.List() {
		a := a
		g.Go(func() error {
			blob, err := a.Snapshot()
			if err != nil {
				return err
			}
			return r.store.SaveSnapshot(gctx, a.TableID(), blob)
		})
	}
	return g.Wait()
}
