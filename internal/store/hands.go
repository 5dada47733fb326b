package store

import (
	"context"
	"encoding/json"
	"time"
)

// SaveHandRecord inserts the hand idempotently (insert-or-ignore against
// the hand id) and trims the table's archive to the last N hands, where
// N is the caller's configured retention.
func (s *Store) SaveHandRecord(ctx context.Context, record HandRecordRow, startedAt, endedAt time.Time, retention int) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO hand_history (id, table_id, winner_id, winner_name, winning_hand, pot, player_count, started_at, ended_at, record)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		record.HandID, record.TableID, record.WinnerID, record.WinnerName, record.WinningHand,
		record.Pot, len(record.Players), startedAt, endedAt, blob)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		DELETE FROM hand_history WHERE table_id = $1 AND id NOT IN (
			SELECT id FROM hand_history WHERE table_id = $1 ORDER BY ended_at DESC LIMIT $2
		)`, record.TableID, retention)
	return err
}

// HandPlayerRow is one seat's starting-stack snapshot for a hand. HoleCards
// is only populated for players whose cards were revealed at showdown
// (not folded); everyone else's hole cards stay private even in history.
type HandPlayerRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	StartingChips int64    `json:"startingChips"`
	HoleCards     []string `json:"holeCards,omitempty"`
}

// HandActionRow is one logged betting decision, in wire order.
type HandActionRow struct {
	AgentID   string `json:"agentId"`
	Action    string `json:"action"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// HandChatRow is one chat line attached to the hand it was sent during.
type HandChatRow struct {
	From      string `json:"from"`
	FromName  string `json:"fromName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// HandRecordRow is the flattened hand_history row. The JSON-tagged fields
// are exactly what's persisted into the record JSONB column and returned
// verbatim from TableHistory, matching the SDK's HandRecord dataclass.
type HandRecordRow struct {
	HandID         string          `json:"handId"`
	TableID        string          `json:"tableId"`
	Players        []HandPlayerRow `json:"players"`
	CommunityCards []string        `json:"communityCards"`
	Actions        []HandActionRow `json:"actions"`
	Chat           []HandChatRow   `json:"chat"`
	Pot            int64           `json:"pot"`
	WinnerID       *string         `json:"winnerId,omitempty"`
	WinnerName     *string         `json:"winnerName,omitempty"`
	WinningHand    *string         `json:"winningHand,omitempty"`
	StartedAt      int64           `json:"startedAt"`
	EndedAt        int64           `json:"endedAt"`
}

func (s *Store) TableHistory(ctx context.Context, tableID string, limit int) ([]json.RawMessage, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT record FROM hand_history WHERE table_id = $1 ORDER BY ended_at DESC LIMIT $2`,
		tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []json.RawMessage
	for rows.Next() {
		var raw json.RawMessage
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

// SaveSnapshot upserts the serialized table state — the table actor's
// durable crash-recovery image.
func (s *Store) SaveSnapshot(ctx context.Context, tableID string, snapshot []byte) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO table_snapshots (table_id, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (table_id) DO UPDATE SET snapshot = $2, updated_at = now()`,
		tableID, snapshot)
	return err
}

func (s *Store) LoadSnapshot(ctx context.Context, tableID string) ([]byte, error) {
	var blob []byte
	err := s.Pool.QueryRow(ctx, `SELECT snapshot FROM table_snapshots WHERE table_id = $1`, tableID).Scan(&blob)
	return blob, err
}

func (s *Store) ListTableIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT table_id FROM table_snapshots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
