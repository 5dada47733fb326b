package store_test

import (
	"context"
	"testing"

	"agentpoker/internal/store"
	"agentpoker/internal/testutil"
)

func TestCreateAndGetAgent(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a, err := st.CreateAgent(ctx, "agent-1", "Alice", "hash-1", "anthropic", "claude", 1000)
	if err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if a.Chips != int64(1000) {
		t.Fatalf("Chips = %d, want %d", a.Chips, int64(1000))
	}

	byID, err := st.GetAgentByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetAgentByID() error = %v", err)
	}
	if byID.Name != "Alice" {
		t.Fatalf("Name = %q, want Alice", byID.Name)
	}

	byHash, err := st.GetAgentByAPIKeyHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetAgentByAPIKeyHash() error = %v", err)
	}
	if byHash.ID != "agent-1" {
		t.Fatalf("ID = %q, want agent-1", byHash.ID)
	}

	byName, err := st.GetAgentByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("GetAgentByName() error = %v", err)
	}
	if byName.ID != "agent-1" {
		t.Fatalf("ID = %q, want agent-1", byName.ID)
	}
}

func TestCreateAgentRejectsDuplicateName(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Bob", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	_, err := st.CreateAgent(ctx, "agent-2", "Bob", "hash-2", "", "", 1000)
	if err != store.ErrNameTaken {
		t.Fatalf("err = %v, want ErrNameTaken", err)
	}
}

func TestGetAgentByIDNotFound(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	_, err := st.GetAgentByID(context.Background(), "missing")
	if err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetCurrentTableAndUpdateChips(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Carl", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	tableID := "table-1"
	if err := st.SetCurrentTable(ctx, "agent-1", &tableID); err != nil {
		t.Fatalf("SetCurrentTable() error = %v", err)
	}
	if err := st.UpdateChips(ctx, "agent-1", 500); err != nil {
		t.Fatalf("UpdateChips() error = %v", err)
	}
	a, err := st.GetAgentByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetAgentByID() error = %v", err)
	}
	if a.CurrentTable == nil || *a.CurrentTable != tableID {
		t.Fatalf("CurrentTable = %v, want %q", a.CurrentTable, tableID)
	}
	if a.Chips != 500 {
		t.Fatalf("Chips = %d, want 500", a.Chips)
	}

	if err := st.SetCurrentTable(ctx, "agent-1", nil); err != nil {
		t.Fatalf("SetCurrentTable(nil) error = %v", err)
	}
	a, err = st.GetAgentByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetAgentByID() error = %v", err)
	}
	if a.CurrentTable != nil {
		t.Fatalf("CurrentTable = %v, want nil", a.CurrentTable)
	}
}

func TestRecordHandResult(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Dana", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if _, err := st.CreateAgent(ctx, "agent-2", "Erin", "hash-2", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}

	err := st.RecordHandResult(ctx, map[string]int64{
		"agent-1": 1200,
		"agent-2": 800,
	}, []string{"agent-1"})
	if err != nil {
		t.Fatalf("RecordHandResult() error = %v", err)
	}

	winner, err := st.GetAgentByID(ctx, "agent-1")
	if err != nil {
		t.Fatalf("GetAgentByID() error = %v", err)
	}
	if winner.Chips != 1200 || winner.HandsPlayed != 1 || winner.HandsWon != 1 {
		t.Fatalf("winner = %+v, unexpected", winner)
	}

	loser, err := st.GetAgentByID(ctx, "agent-2")
	if err != nil {
		t.Fatalf("GetAgentByID() error = %v", err)
	}
	if loser.Chips != 800 || loser.HandsPlayed != 1 || loser.HandsWon != 0 {
		t.Fatalf("loser = %+v, unexpected", loser)
	}
}

func TestRebuy(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Finn", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if err := st.UpdateChips(ctx, "agent-1", 50); err != nil {
		t.Fatalf("UpdateChips() error = %v", err)
	}

	a, err := st.Rebuy(ctx, "agent-1", 100, 1000, 3)
	if err != nil {
		t.Fatalf("Rebuy() error = %v", err)
	}
	if a.Chips != int64(1000) || a.Rebuys != 1 {
		t.Fatalf("after rebuy = %+v, unexpected", a)
	}

	if err := st.UpdateChips(ctx, "agent-1", 500); err != nil {
		t.Fatalf("UpdateChips() error = %v", err)
	}
	if _, err := st.Rebuy(ctx, "agent-1", 100, 1000, 3); err != store.ErrRebuyNotAllowed {
		t.Fatalf("err = %v, want ErrRebuyNotAllowed", err)
	}
}

func TestRebuyExhaustsLimit(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Gail", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := st.UpdateChips(ctx, "agent-1", 10); err != nil {
			t.Fatalf("UpdateChips() error = %v", err)
		}
		if _, err := st.Rebuy(ctx, "agent-1", 100, 1000, 2); err != nil {
			t.Fatalf("Rebuy() error = %v", err)
		}
	}
	if err := st.UpdateChips(ctx, "agent-1", 10); err != nil {
		t.Fatalf("UpdateChips() error = %v", err)
	}
	if _, err := st.Rebuy(ctx, "agent-1", 100, 1000, 2); err != store.ErrNoRebuysRemaining {
		t.Fatalf("err = %v, want ErrNoRebuysRemaining", err)
	}
}

func TestLeaderboardAndGlobalStats(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := st.CreateAgent(ctx, "agent-1", "Hank", "hash-1", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if _, err := st.CreateAgent(ctx, "agent-2", "Iris", "hash-2", "", "", 1000); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if err := st.UpdateChips(ctx, "agent-1", 5000); err != nil {
		t.Fatalf("UpdateChips() error = %v", err)
	}

	board, err := st.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(board) != 2 || board[0].ID != "agent-1" {
		t.Fatalf("Leaderboard() = %+v, want agent-1 first", board)
	}

	stats, err := st.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("GlobalStats() error = %v", err)
	}
	if stats.AgentCount != 2 {
		t.Fatalf("AgentCount = %d, want 2", stats.AgentCount)
	}
	if stats.TotalChips != 5000+int64(1000) {
		t.Fatalf("TotalChips = %d, want %d", stats.TotalChips, 5000+int64(1000))
	}
}
