package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrNameTaken = errors.New("name_taken")

// Agent mirrors one row of the agents table.
type Agent struct {
	ID           string
	Name         string
	APIKeyHash   string
	Chips        int64
	HandsPlayed  int64
	HandsWon     int64
	LLMProvider  string
	LLMModel     string
	CreatedAt    time.Time
	Banned       bool
	CurrentTable *string
	Rebuys       int
}

// CreateAgent inserts a new agent with startingChips. Returns ErrNameTaken
// on a unique-name conflict.
func (s *Store) CreateAgent(ctx context.Context, id, name, apiKeyHash, llmProvider, llmModel string, startingChips int64) (Agent, error) {
	a := Agent{
		ID:          id,
		Name:        name,
		APIKeyHash:  apiKeyHash,
		Chips:       startingChips,
		LLMProvider: llmProvider,
		LLMModel:    llmModel,
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO agents (id, name, api_key_hash, chips, llm_provider, llm_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.Name, a.APIKeyHash, a.Chips, a.LLMProvider, a.LLMModel)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return Agent{}, ErrNameTaken
		}
		return Agent{}, err
	}
	return a, nil
}

func (s *Store) GetAgentByID(ctx context.Context, id string) (Agent, error) {
	return s.scanAgent(s.Pool.QueryRow(ctx, agentSelect+` WHERE id = $1`, id))
}

func (s *Store) GetAgentByAPIKeyHash(ctx context.Context, hash string) (Agent, error) {
	return s.scanAgent(s.Pool.QueryRow(ctx, agentSelect+` WHERE api_key_hash = $1`, hash))
}

func (s *Store) GetAgentByName(ctx context.Context, name string) (Agent, error) {
	return s.scanAgent(s.Pool.QueryRow(ctx, agentSelect+` WHERE name = $1`, name))
}

const agentSelect = `SELECT id, name, api_key_hash, chips, hands_played, hands_won,
	llm_provider, llm_model, created_at, banned, current_table, rebuys FROM agents`

func (s *Store) scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.Name, &a.APIKeyHash, &a.Chips, &a.HandsPlayed, &a.HandsWon,
		&a.LLMProvider, &a.LLMModel, &a.CreatedAt, &a.Banned, &a.CurrentTable, &a.Rebuys)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return a, err
}

// SetCurrentTable updates the agent's seated table, or clears it when
// tableID is nil.
func (s *Store) SetCurrentTable(ctx context.Context, agentID string, tableID *string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE agents SET current_table = $1 WHERE id = $2`, tableID, agentID)
	return err
}

// UpdateChips sets the agent's chip count, the single source of truth
// between hands and across rebuys.
func (s *Store) UpdateChips(ctx context.Context, agentID string, chips int64) error {
	_, err := s.Pool.Exec(ctx, `UPDATE agents SET chips = $1 WHERE id = $2`, chips, agentID)
	return err
}

// RecordHandResult bumps HandsPlayed for every participant and HandsWon
// for the winners, and writes back each participant's final chip count.
func (s *Store) RecordHandResult(ctx context.Context, finalChips map[string]int64, winnerIDs []string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	won := map[string]bool{}
	for _, id := range winnerIDs {
		won[id] = true
	}
	for agentID, chips := range finalChips {
		if _, err := tx.Exec(ctx, `
			UPDATE agents SET chips = $1, hands_played = hands_played + 1,
				hands_won = hands_won + $2 WHERE id = $3`,
			chips, boolToInt(won[agentID]), agentID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Rebuy resets chips to startingChips if chips < threshold and rebuys
// remain, returning the updated agent.
func (s *Store) Rebuy(ctx context.Context, agentID string, threshold, startingChips int64, maxRebuys int) (Agent, error) {
	a, err := s.GetAgentByID(ctx, agentID)
	if err != nil {
		return Agent{}, err
	}
	if a.Chips >= threshold {
		return Agent{}, ErrRebuyNotAllowed
	}
	if a.Rebuys >= maxRebuys {
		return Agent{}, ErrNoRebuysRemaining
	}
	_, err = s.Pool.Exec(ctx, `UPDATE agents SET chips = $1, rebuys = rebuys + 1 WHERE id = $2`,
		startingChips, agentID)
	if err != nil {
		return Agent{}, err
	}
	a.Chips = startingChips
	a.Rebuys++
	return a, nil
}

var (
	ErrRebuyNotAllowed   = errors.New("rebuy_not_allowed")
	ErrNoRebuysRemaining = errors.New("no_rebuys_remaining")
)

// Leaderboard returns the top agents by chip count.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Agent, error) {
	rows, err := s.Pool.Query(ctx, agentSelect+` ORDER BY chips DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Agent
	for rows.Next() {
		a, err := s.scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GlobalStats returns a handful of server-wide counts for /stats.
type GlobalStats struct {
	AgentCount int64
	HandCount  int64
	TotalChips int64
}

func (s *Store) GlobalStats(ctx context.Context) (GlobalStats, error) {
	var g GlobalStats
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(chips),0) FROM agents`).
		Scan(&g.AgentCount, &g.TotalChips)
	if err != nil {
		return GlobalStats{}, err
	}
	err = s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM hand_history`).Scan(&g.HandCount)
	return g, err
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
