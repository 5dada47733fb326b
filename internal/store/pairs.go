package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"agentpoker/internal/collusion"
)

// LoadPair and SavePair implement collusion.Store. LoadPair canonicalizes
// the pair key (a < b lexically); SavePair stores AgentA/AgentB as given,
// and the accumulator already passes them in that order.
func (s *Store) LoadPair(ctx context.Context, a, b string) (collusion.PairStats, error) {
	a, b = canonicalPair(a, b)
	row := s.Pool.QueryRow(ctx, `
		SELECT agent_a, agent_b, hands_together, a_folds_to_b, b_folds_to_a, chip_flow_a_to_b, collusion_score
		FROM agent_pairs WHERE agent_a = $1 AND agent_b = $2`, a, b)
	var p collusion.PairStats
	err := row.Scan(&p.AgentA, &p.AgentB, &p.HandsTogether, &p.AFoldsToB, &p.BFoldsToA, &p.ChipFlowAToB, &p.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return collusion.PairStats{AgentA: a, AgentB: b}, nil
	}
	return p, err
}

func (s *Store) SavePair(ctx context.Context, p collusion.PairStats) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO agent_pairs (agent_a, agent_b, hands_together, a_folds_to_b, b_folds_to_a, chip_flow_a_to_b, collusion_score, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (agent_a, agent_b) DO UPDATE SET
			hands_together = $3, a_folds_to_b = $4, b_folds_to_a = $5,
			chip_flow_a_to_b = $6, collusion_score = $7, last_updated = $8`,
		p.AgentA, p.AgentB, p.HandsTogether, p.AFoldsToB, p.BFoldsToA, p.ChipFlowAToB, p.Score, time.Now())
	return err
}

func (s *Store) Watchlist(ctx context.Context, minScore float64) ([]collusion.PairStats, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT agent_a, agent_b, hands_together, a_folds_to_b, b_folds_to_a, chip_flow_a_to_b, collusion_score
		FROM agent_pairs WHERE collusion_score >= $1 ORDER BY collusion_score DESC`, minScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []collusion.PairStats
	for rows.Next() {
		var p collusion.PairStats
		if err := rows.Scan(&p.AgentA, &p.AgentB, &p.HandsTogether, &p.AFoldsToB, &p.BFoldsToA, &p.ChipFlowAToB, &p.Score); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func canonicalPair(a, b string) (string, string) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1]
}
