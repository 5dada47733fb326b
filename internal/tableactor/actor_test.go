package tableactor

import (
	"context"
	"sync"
	"testing"
	"time"

	"agentpoker/internal/game"
	"agentpoker/internal/store"
)

type fakeStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
	hands     []store.HandRecordRow
	results   []map[string]int64
	winners   [][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: map[string][]byte{}}
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, tableID string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[tableID] = snapshot
	return nil
}

func (f *fakeStore) SaveHandRecord(ctx context.Context, record store.HandRecordRow, startedAt, endedAt time.Time, retention int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hands = append(f.hands, record)
	return nil
}

func (f *fakeStore) RecordHandResult(ctx context.Context, finalChips map[string]int64, winnerIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, finalChips)
	f.winners = append(f.winners, winnerIDs)
	return nil
}

type fakeCollusion struct {
	mu      sync.Mutex
	records []*game.HandRecord
}

func (f *fakeCollusion) ProcessHand(ctx context.Context, record *game.HandRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func newTestActor(fs *fakeStore, fc *fakeCollusion) *Actor {
	id := 0
	return New("table-1", 10, 20, fs, fc, func() string {
		id++
		return "hand-" + string(rune('0'+id))
	}, game.DefaultTableConfig(), 50)
}

func TestJoinPersistsSnapshot(t *testing.T) {
	fs := newFakeStore()
	a := newTestActor(fs, &fakeCollusion{})
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if _, ok := fs.snapshots["table-1"]; !ok {
		t.Fatal("expected a snapshot to be persisted after Join")
	}
}

func TestTwoJoinsAutoStartsHand(t *testing.T) {
	fs := newFakeStore()
	a := newTestActor(fs, &fakeCollusion{})
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join(a1) error = %v", err)
	}
	if err := a.Join(ctx, "a2", "Bob", 1000); err != nil {
		t.Fatalf("Join(a2) error = %v", err)
	}

	view := a.AgentView("a1", 10)
	if view.Phase != game.PhasePreflop {
		t.Fatalf("Phase = %v, want preflop after two joins", view.Phase)
	}
}

func TestActFlushesHandOnFoldOut(t *testing.T) {
	fs := newFakeStore()
	fc := &fakeCollusion{}
	a := newTestActor(fs, fc)
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join(a1) error = %v", err)
	}
	if err := a.Join(ctx, "a2", "Bob", 1000); err != nil {
		t.Fatalf("Join(a2) error = %v", err)
	}

	view := a.AgentView("a1", 10)
	turnAgent := "a1"
	if view.Turn == nil || *view.Turn != "a1" {
		turnAgent = "a2"
	}
	if err := a.Act(ctx, turnAgent, game.ActionFold, 0); err != nil {
		t.Fatalf("Act(fold) error = %v", err)
	}

	if len(fs.hands) != 1 {
		t.Fatalf("len(fs.hands) = %d, want 1", len(fs.hands))
	}
	if len(fs.results) != 1 {
		t.Fatalf("len(fs.results) = %d, want 1", len(fs.results))
	}
	if len(fc.records) != 1 {
		t.Fatalf("len(fc.records) = %d, want 1", len(fc.records))
	}
}

func TestCheckTimeoutFoldsStalledPlayer(t *testing.T) {
	fs := newFakeStore()
	a := newTestActor(fs, &fakeCollusion{})
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join(a1) error = %v", err)
	}
	if err := a.Join(ctx, "a2", "Bob", 1000); err != nil {
		t.Fatalf("Join(a2) error = %v", err)
	}

	future := time.Now().Add(game.DefaultTableConfig().ActionTimeout + time.Second)
	if !a.CheckTimeout(ctx, future) {
		t.Fatal("CheckTimeout() = false, want true past the deadline")
	}
	if a.CheckTimeout(ctx, future) {
		t.Fatal("CheckTimeout() should be idempotent once the hand has folded out")
	}
}

func TestStartHandIfReadyRespectsCooldown(t *testing.T) {
	fs := newFakeStore()
	a := newTestActor(fs, &fakeCollusion{})
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join(a1) error = %v", err)
	}
	if err := a.Join(ctx, "a2", "Bob", 1000); err != nil {
		t.Fatalf("Join(a2) error = %v", err)
	}

	future := time.Now().Add(game.DefaultTableConfig().ActionTimeout + time.Second)
	a.CheckTimeout(ctx, future)

	firstHandID := a.AgentView("a1", 10).HandID
	if err := a.StartHandIfReady(ctx, future); err != nil {
		t.Fatalf("StartHandIfReady() error = %v", err)
	}
	if a.AgentView("a1", 10).HandID != firstHandID {
		t.Fatal("expected StartHandIfReady to refuse a new hand before the cooldown elapses")
	}

	afterCooldown := future.Add(game.DefaultTableConfig().ShowdownCooldown + time.Second)
	if err := a.StartHandIfReady(ctx, afterCooldown); err != nil {
		t.Fatalf("StartHandIfReady() error = %v", err)
	}
	if a.AgentView("a1", 10).HandID == firstHandID {
		t.Fatal("expected a new hand after the cooldown elapses")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	fs := newFakeStore()
	a := newTestActor(fs, &fakeCollusion{})
	ctx := context.Background()

	if err := a.Join(ctx, "a1", "Alice", 1000); err != nil {
		t.Fatalf("Join(a1) error = %v", err)
	}
	blob, err := a.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	restored, err := Restore(blob, fs, &fakeCollusion{}, func() string { return "hand-x" }, 50)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.SeatCount() != 1 {
		t.Fatalf("SeatCount() = %d, want 1", restored.SeatCount())
	}
}
