package store_test

import (
	"context"
	"testing"

	"agentpoker/internal/collusion"
	"agentpoker/internal/testutil"
)

func TestLoadPairReturnsZeroValueWhenAbsent(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	p, err := st.LoadPair(context.Background(), "agent-b", "agent-a")
	if err != nil {
		t.Fatalf("LoadPair() error = %v", err)
	}
	if p.AgentA != "agent-a" || p.AgentB != "agent-b" {
		t.Fatalf("LoadPair() = %+v, want canonicalized agent-a/agent-b", p)
	}
	if p.HandsTogether != 0 {
		t.Fatalf("HandsTogether = %d, want 0", p.HandsTogether)
	}
}

func TestSaveAndLoadPairRoundTrip(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	p := collusion.PairStats{
		AgentA:        "agent-a",
		AgentB:        "agent-b",
		HandsTogether: 6,
		AFoldsToB:     5,
		BFoldsToA:     0,
		ChipFlowAToB:  300,
		Score:         0.81,
	}
	if err := st.SavePair(ctx, p); err != nil {
		t.Fatalf("SavePair() error = %v", err)
	}

	loaded, err := st.LoadPair(ctx, "agent-b", "agent-a")
	if err != nil {
		t.Fatalf("LoadPair() error = %v", err)
	}
	if loaded.HandsTogether != 6 || loaded.AFoldsToB != 5 || loaded.Score != 0.81 {
		t.Fatalf("LoadPair() = %+v, unexpected", loaded)
	}

	// upsert with updated stats.
	p.HandsTogether = 7
	p.Score = 0.85
	if err := st.SavePair(ctx, p); err != nil {
		t.Fatalf("SavePair() upsert error = %v", err)
	}
	loaded, err = st.LoadPair(ctx, "agent-a", "agent-b")
	if err != nil {
		t.Fatalf("LoadPair() error = %v", err)
	}
	if loaded.HandsTogether != 7 || loaded.Score != 0.85 {
		t.Fatalf("LoadPair() after upsert = %+v, unexpected", loaded)
	}
}

func TestWatchlistFiltersByScore(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	flagged := collusion.PairStats{AgentA: "agent-a", AgentB: "agent-b", HandsTogether: 6, Score: 0.9}
	clean := collusion.PairStats{AgentA: "agent-c", AgentB: "agent-d", HandsTogether: 6, Score: 0.2}
	if err := st.SavePair(ctx, flagged); err != nil {
		t.Fatalf("SavePair() error = %v", err)
	}
	if err := st.SavePair(ctx, clean); err != nil {
		t.Fatalf("SavePair() error = %v", err)
	}

	list, err := st.Watchlist(ctx, 0.75)
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(list) != 1 || list[0].AgentA != "agent-a" {
		t.Fatalf("Watchlist() = %+v, want only agent-a/agent-b", list)
	}
}
