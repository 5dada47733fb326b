// Package game implements the pure, no-I/O table engine: given a table
// state and an input, it advances the state or returns a typed error. All
// transitions mutate the state in place behind the caller's single-writer
// guarantee; there is no copy-on-write here.
package game

import (
	"time"

	"agentpoker/internal/cards"
	"agentpoker/internal/handeval"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusFolded     Status = "folded"
	StatusAllIn      Status = "all_in"
	StatusSittingOut Status = "sitting_out"
)

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "all_in"
)

// TableConfig holds every table-level limit the gateway's config loads
// from the environment. NewTable stamps these onto the TableState so the
// pure engine functions never reach for a package-level constant.
type TableConfig struct {
	MaxSeats         int
	MinSeats         int
	MinBuyInBlinds   int64
	SitOutEvictAt    int
	ActionTimeout    time.Duration
	ShowdownCooldown time.Duration
}

// DefaultTableConfig mirrors the teacher's original hardcoded limits, for
// tests and any caller that doesn't have a loaded config handy.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		MaxSeats:         6,
		MinSeats:         2,
		MinBuyInBlinds:   5,
		SitOutEvictAt:    10,
		ActionTimeout:    15 * time.Second,
		ShowdownCooldown: 3 * time.Second,
	}
}

// Player is one seat at a table. It persists across hands while the agent
// stays seated; Chips is authoritative during a hand and mirrored back to
// the identity store on each commit.
type Player struct {
	AgentID     string
	Name        string
	Chips       int64
	HoleCards   []cards.Card
	Bet         int64
	TotalBet    int64
	Status      Status
	SeatIndex   int
	HasActed    bool
	SitOutCount int
}

// LoggedAction is one recorded betting decision within the current hand.
type LoggedAction struct {
	AgentID string
	Name    string
	Phase   Phase
	Action  ActionType
	Amount  int64
	At      time.Time
}

// ChatEntry is one chat line attached to the current hand's record.
type ChatEntry struct {
	AgentID string
	Name    string
	Text    string
	At      time.Time
}

// HandRecord is the append-only log of one hand, finalized at Resolve.
type HandRecord struct {
	HandID         string
	TableID        string
	StartingStacks map[string]int64
	HoleCards      map[string][]cards.Card
	CommunityCards []cards.Card
	Actions        []LoggedAction
	Chat           []ChatEntry
	Pot            int64
	WinnerIDs      []string
	WinnerNames    []string
	HandName       string
	PlayerCount    int
	StartedAt      time.Time
	EndedAt        time.Time
}

// HandResult summarizes the last completed hand for quick polling.
type HandResult struct {
	HandID    string
	Winners   []string
	HandName  string
	PotWon    int64
}

// TableState is the full state of one table. All engine operations take a
// *TableState and mutate it in place.
type TableState struct {
	TableID            string
	HandID             string
	Phase              Phase
	Players            []*Player
	CommunityCards     []cards.Card
	Pot                int64
	CurrentBet         int64
	CurrentTurnIndex   int
	DealerIndex        int
	SmallBlind         int64
	BigBlind           int64
	Deck               *cards.Deck
	HandRecord         *HandRecord
	LastActionTime     time.Time
	ActionTimeoutMs    int64
	LastHandResult     *HandResult
	MaxSeats           int
	MinSeats           int
	MinBuyInBlinds     int64
	SitOutEvictAt      int
	ShowdownCooldownMs int64
}

// NewTable returns an empty, waiting table ready to accept Join calls.
func NewTable(tableID string, smallBlind, bigBlind int64, cfg TableConfig) *TableState {
	return &TableState{
		TableID:            tableID,
		Phase:              PhaseWaiting,
		Players:            nil,
		CurrentTurnIndex:   -1,
		DealerIndex:        0,
		SmallBlind:         smallBlind,
		BigBlind:           bigBlind,
		ActionTimeoutMs:    cfg.ActionTimeout.Milliseconds(),
		MaxSeats:           cfg.MaxSeats,
		MinSeats:           cfg.MinSeats,
		MinBuyInBlinds:     cfg.MinBuyInBlinds,
		SitOutEvictAt:      cfg.SitOutEvictAt,
		ShowdownCooldownMs: cfg.ShowdownCooldown.Milliseconds(),
	}
}

func (s *TableState) playerBySeat(seat int) *Player {
	for _, p := range s.Players {
		if p.SeatIndex == seat {
			return p
		}
	}
	return nil
}

func (s *TableState) findByAgent(agentID string) *Player {
	for _, p := range s.Players {
		if p.AgentID == agentID {
			return p
		}
	}
	return nil
}

func (s *TableState) currentPlayer() *Player {
	if s.CurrentTurnIndex < 0 {
		return nil
	}
	return s.playerBySeat(s.CurrentTurnIndex)
}

// activeCount returns the number of players still contesting the pot
// (neither folded nor sitting out — all_in players still count).
func (s *TableState) activeCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status == StatusActive || p.Status == StatusAllIn {
			n++
		}
	}
	return n
}

// actingCount returns the number of players who can still act this round.
func (s *TableState) actingCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Status == StatusActive {
			n++
		}
	}
	return n
}

func holeAndCommunity(p *Player, community []cards.Card) []cards.Card {
	out := make([]cards.Card, 0, 7)
	out = append(out, p.HoleCards...)
	out = append(out, community...)
	return out
}

func evaluate(p *Player, community []cards.Card) handeval.HandRank {
	return handeval.Evaluate7(holeAndCommunity(p, community))
}
