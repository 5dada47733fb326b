// Package tableactor is the single-writer boundary around one table's
// game state: every mutating call takes the actor's mutex, runs a pure
// internal/game function, persists a snapshot, and releases the lock
// before returning. No two goroutines ever mutate a TableState directly.
package tableactor

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"agentpoker/internal/cards"
	"agentpoker/internal/game"
	"agentpoker/internal/store"
)

// Store is the persistence surface an Actor commits through: a snapshot
// after every mutation, plus an archive write and identity update after
// a hand settles.
type Store interface {
	SaveSnapshot(ctx context.Context, tableID string, snapshot []byte) error
	SaveHandRecord(ctx context.Context, record store.HandRecordRow, startedAt, endedAt time.Time, retention int) error
	RecordHandResult(ctx context.Context, finalChips map[string]int64, winnerIDs []string) error
}

// CollusionProcessor feeds a finished hand into the pairwise accumulator.
type CollusionProcessor interface {
	ProcessHand(ctx context.Context, record *game.HandRecord) error
}

// Actor owns one table's TableState behind a mutex. All of its exported
// methods are safe for concurrent use.
type Actor struct {
	mu    sync.Mutex
	state *game.TableState

	store     Store
	collusion CollusionProcessor
	newHandID func() string
	retention int

	lastFlushedHandID string
}

// New constructs an Actor around a fresh table. newHandID is injected so
// tests can supply deterministic IDs; production wiring passes
// store.NewID. retention bounds how many settled hands SaveHandRecord
// keeps per table.
func New(tableID string, smallBlind, bigBlind int64, st Store, coll CollusionProcessor, newHandID func() string, cfg game.TableConfig, retention int) *Actor {
	return &Actor{
		state:     game.NewTable(tableID, smallBlind, bigBlind, cfg),
		store:     st,
		collusion: coll,
		newHandID: newHandID,
		retention: retention,
	}
}

// Restore rebuilds an Actor from a previously saved snapshot, for table
// recovery at startup.
func Restore(snapshot []byte, st Store, coll CollusionProcessor, newHandID func() string, retention int) (*Actor, error) {
	var s game.TableState
	if err := json.Unmarshal(snapshot, &s); err != nil {
		return nil, err
	}
	return &Actor{state: &s, store: st, collusion: coll, newHandID: newHandID, retention: retention}, nil
}

func (a *Actor) TableID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.TableID
}

func (a *Actor) Join(ctx context.Context, agentID, name string, chips int64) error {
	return a.mutate(ctx, func(now time.Time) error {
		if err := game.Join(a.state, agentID, name, chips); err != nil {
			return err
		}
		a.tryAutoStartLocked(ctx, now)
		return nil
	})
}

func (a *Actor) Leave(ctx context.Context, agentID string) error {
	return a.mutate(ctx, func(now time.Time) error {
		return game.Leave(a.state, agentID)
	})
}

func (a *Actor) SitOut(ctx context.Context, agentID string) error {
	return a.mutate(ctx, func(now time.Time) error {
		return game.SitOut(a.state, agentID)
	})
}

func (a *Actor) SitIn(ctx context.Context, agentID string) error {
	return a.mutate(ctx, func(now time.Time) error {
		if err := game.SitIn(a.state, agentID); err != nil {
			return err
		}
		a.tryAutoStartLocked(ctx, now)
		return nil
	})
}

// tryAutoStartLocked opportunistically starts the next hand once a Join
// or SitIn call may have brought the table up to MinSeats. Failure (not
// enough players yet, cooldown not elapsed) is expected and silent; the
// registry sweep retries on every tick regardless.
func (a *Actor) tryAutoStartLocked(ctx context.Context, now time.Time) {
	if !a.readyForNextHandLocked(now) {
		return
	}
	_ = a.startHandLocked(ctx, now)
}

func (a *Actor) Act(ctx context.Context, agentID string, action game.ActionType, amount int64) error {
	return a.mutate(ctx, func(now time.Time) error {
		return game.Act(a.state, agentID, action, amount, now)
	})
}

func (a *Actor) Chat(ctx context.Context, agentID, name, text string) error {
	return a.mutate(ctx, func(now time.Time) error {
		return game.AddChat(a.state, agentID, name, text, now)
	})
}

// UpdateChips mirrors a balance change from the identity store into the
// live table (rebuys, admin adjustments) while the table is between
// hands; it is a no-op once the agent is already committed to a hand.
func (a *Actor) UpdateChips(ctx context.Context, agentID string, chips int64) error {
	return a.mutate(ctx, func(now time.Time) error {
		p := a.findPlayer(agentID)
		if p == nil {
			return game.ErrNotSeated
		}
		if a.state.Phase != game.PhaseWaiting && a.state.Phase != game.PhaseShowdown {
			return nil
		}
		p.Chips = chips
		return nil
	})
}

// StartHandIfReady starts a new hand if the table is between hands, the
// showdown cooldown has elapsed, and enough players are dealt in. It
// swallows the "not enough players"/"already in progress" errors since
// callers invoke it opportunistically (on Join and on the registry
// sweep) rather than in response to an explicit StartHand request.
func (a *Actor) StartHandIfReady(ctx context.Context, now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.readyForNextHandLocked(now) {
		return nil
	}
	if err := a.startHandLocked(ctx, now); err != game.ErrNotEnoughPlayers {
		return err
	}
	return nil
}

func (a *Actor) readyForNextHandLocked(now time.Time) bool {
	switch a.state.Phase {
	case game.PhaseWaiting:
		return true
	case game.PhaseShowdown:
		if a.state.HandRecord == nil {
			return true
		}
		return now.Sub(a.state.HandRecord.EndedAt) >= time.Duration(a.state.ShowdownCooldownMs)*time.Millisecond
	default:
		return false
	}
}

func (a *Actor) startHandLocked(ctx context.Context, now time.Time) error {
	err := game.StartHand(a.state, a.newHandID(), now)
	if err != nil {
		return err
	}
	a.persistLocked(ctx)
	return nil
}

// CheckTimeout applies the action-timeout auto-fold if the player on the
// clock has run out of time. It is driven by the registry sweep, not by
// a per-actor timer goroutine.
func (a *Actor) CheckTimeout(ctx context.Context, now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !game.Timeout(a.state, now) {
		return false
	}
	a.flushHandIfSettledLocked(ctx)
	a.persistLocked(ctx)
	return true
}

// mutate runs fn under the actor's lock, persists the resulting state
// (snapshot, and if the hand just settled, the archive/identity commit),
// and returns fn's error untouched.
func (a *Actor) mutate(ctx context.Context, fn func(now time.Time) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	if err := fn(now); err != nil {
		return err
	}
	a.flushHandIfSettledLocked(ctx)
	a.persistLocked(ctx)
	return nil
}

func (a *Actor) flushHandIfSettledLocked(ctx context.Context) {
	if a.state.Phase != game.PhaseShowdown || a.state.HandRecord == nil {
		return
	}
	record := a.state.HandRecord
	if record.HandID == "" || record.HandID == a.lastFlushedHandID {
		return
	}
	a.lastFlushedHandID = record.HandID

	finalChips := make(map[string]int64, len(record.StartingStacks))
	for agentID := range record.StartingStacks {
		if p := a.findPlayer(agentID); p != nil {
			finalChips[agentID] = p.Chips
		}
	}

	if a.store != nil {
		row := a.buildHandRecordRowLocked(record)
		if err := a.store.SaveHandRecord(ctx, row, record.StartedAt, record.EndedAt, a.retention); err != nil {
			log.Error().Err(err).Str("table_id", record.TableID).Str("hand_id", record.HandID).
				Msg("save hand record failed")
		}
		if err := a.store.RecordHandResult(ctx, finalChips, record.WinnerIDs); err != nil {
			log.Error().Err(err).Str("table_id", record.TableID).Str("hand_id", record.HandID).
				Msg("record hand result failed")
		}
	}
	if a.collusion != nil {
		if err := a.collusion.ProcessHand(ctx, record); err != nil {
			log.Error().Err(err).Str("table_id", record.TableID).Str("hand_id", record.HandID).
				Msg("collusion accumulation failed")
		}
	}
}

func (a *Actor) persistLocked(ctx context.Context) {
	if a.store == nil {
		return
	}
	blob, err := json.Marshal(a.state)
	if err != nil {
		log.Error().Err(err).Str("table_id", a.state.TableID).Msg("marshal table snapshot failed")
		return
	}
	if err := a.store.SaveSnapshot(ctx, a.state.TableID, blob); err != nil {
		log.Error().Err(err).Str("table_id", a.state.TableID).Msg("save table snapshot failed")
	}
}

func (a *Actor) findPlayer(agentID string) *game.Player {
	for _, p := range a.state.Players {
		if p.AgentID == agentID {
			return p
		}
	}
	return nil
}

// buildHandRecordRowLocked flattens a settled game.HandRecord into the
// wire-shaped row persisted to hand_history. Hole cards are only included
// for players who weren't folded at showdown; a folded player's cards
// never leave the engine.
func (a *Actor) buildHandRecordRowLocked(record *game.HandRecord) store.HandRecordRow {
	players := make([]store.HandPlayerRow, 0, len(record.StartingStacks))
	for agentID, startingChips := range record.StartingStacks {
		p := a.findPlayer(agentID)
		name := agentID
		if p != nil {
			name = p.Name
		}
		row := store.HandPlayerRow{ID: agentID, Name: name, StartingChips: startingChips}
		if p != nil && p.Status != game.StatusFolded {
			row.HoleCards = cardStrings(record.HoleCards[agentID])
		}
		players = append(players, row)
	}

	actions := make([]store.HandActionRow, 0, len(record.Actions))
	for _, la := range record.Actions {
		actions = append(actions, store.HandActionRow{
			AgentID:   la.AgentID,
			Action:    string(la.Action),
			Amount:    la.Amount,
			Timestamp: la.At.UnixMilli(),
		})
	}

	chat := make([]store.HandChatRow, 0, len(record.Chat))
	for _, c := range record.Chat {
		chat = append(chat, store.HandChatRow{
			From:      c.AgentID,
			FromName:  c.Name,
			Text:      c.Text,
			Timestamp: c.At.UnixMilli(),
		})
	}

	row := store.HandRecordRow{
		HandID:         record.HandID,
		TableID:        record.TableID,
		Players:        players,
		CommunityCards: cardStrings(record.CommunityCards),
		Actions:        actions,
		Chat:           chat,
		Pot:            record.Pot,
		StartedAt:      record.StartedAt.UnixMilli(),
		EndedAt:        record.EndedAt.UnixMilli(),
	}
	if len(record.WinnerIDs) > 0 {
		row.WinnerID = &record.WinnerIDs[0]
	}
	if len(record.WinnerNames) > 0 {
		row.WinnerName = &record.WinnerNames[0]
	}
	if record.HandName != "" {
		row.WinningHand = &record.HandName
	}
	return row
}

func cardStrings(cs []cards.Card) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

// AgentView returns the filtered view for agentID.
func (a *Actor) AgentView(agentID string, chatLimit int) game.AgentView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return game.BuildAgentView(a.state, agentID, time.Now(), chatLimit)
}

// PublicView returns the spectator view.
func (a *Actor) PublicView() game.PublicView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return game.BuildPublicView(a.state)
}

// Snapshot returns the JSON-serialized state, as written to the store.
func (a *Actor) Snapshot() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return json.Marshal(a.state)
}

// SeatCount reports how many seats are currently occupied.
func (a *Actor) SeatCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.state.Players)
}

// Blinds reports the table's small/big blind, for admin reset to preserve
// the table's configured stakes.
func (a *Actor) Blinds() (smallBlind, bigBlind int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.SmallBlind, a.state.BigBlind
}
