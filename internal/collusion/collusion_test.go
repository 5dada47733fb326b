package collusion

import (
	"context"
	"testing"
	"time"

	"agentpoker/internal/game"
)

type fakeStore struct {
	rows map[string]PairStats
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]PairStats{}}
}

func key(a, b string) string { return a + "|" + b }

func (f *fakeStore) LoadPair(ctx context.Context, a, b string) (PairStats, error) {
	if row, ok := f.rows[key(a, b)]; ok {
		return row, nil
	}
	return PairStats{AgentA: a, AgentB: b}, nil
}

func (f *fakeStore) SavePair(ctx context.Context, p PairStats) error {
	f.rows[key(p.AgentA, p.AgentB)] = p
	return nil
}

func (f *fakeStore) Watchlist(ctx context.Context, minScore float64) ([]PairStats, error) {
	var out []PairStats
	for _, p := range f.rows {
		if p.Score >= minScore {
			out = append(out, p)
		}
	}
	return out, nil
}

func handWhereAFoldsToB(aID, bID, winner string) *game.HandRecord {
	return &game.HandRecord{
		StartingStacks: map[string]int64{aID: 1000, bID: 1000},
		Actions: []game.LoggedAction{
			{AgentID: bID, Action: game.ActionRaise, At: time.Now()},
			{AgentID: aID, Action: game.ActionFold, At: time.Now()},
		},
		WinnerIDs: []string{winner},
	}
}

func TestProcessHandAccumulatesFoldsAndChipFlow(t *testing.T) {
	store := newFakeStore()
	acc := New(store, 5, 0.75, 20.0)
	for i := 0; i < 6; i++ {
		if err := acc.ProcessHand(context.Background(), handWhereAFoldsToB("a", "b", "b")); err != nil {
			t.Fatalf("ProcessHand: %v", err)
		}
	}
	row, _ := store.LoadPair(context.Background(), "a", "b")
	if row.HandsTogether != 6 {
		t.Fatalf("HandsTogether = %d, want 6", row.HandsTogether)
	}
	if row.AFoldsToB != 6 {
		t.Fatalf("AFoldsToB = %d, want 6", row.AFoldsToB)
	}
	if row.ChipFlowAToB != 6 {
		t.Fatalf("ChipFlowAToB = %d, want 6 (b always won)", row.ChipFlowAToB)
	}
	if row.Score < 0.75 {
		t.Fatalf("Score = %v, want >= %v for a consistent fold pattern", row.Score, 0.75)
	}
}

func TestScoreStaysZeroBelowMinHands(t *testing.T) {
	store := newFakeStore()
	acc := New(store, 5, 0.75, 20.0)
	for i := 0; i < 5-1; i++ {
		acc.ProcessHand(context.Background(), handWhereAFoldsToB("a", "b", "b"))
	}
	row, _ := store.LoadPair(context.Background(), "a", "b")
	if row.Score != 0 {
		t.Fatalf("Score = %v, want 0 before minimum hand count", row.Score)
	}
}

func TestWatchlistSurfacesFlaggedPairs(t *testing.T) {
	store := newFakeStore()
	acc := New(store, 5, 0.75, 20.0)
	// 20 hands reach full confidence (n/20), so the consistent fold pattern
	// scores 1.0 and clears the 0.75 flag threshold.
	for i := 0; i < 20; i++ {
		acc.ProcessHand(context.Background(), handWhereAFoldsToB("a", "b", "b"))
	}
	list, err := acc.Watchlist(context.Background())
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}
