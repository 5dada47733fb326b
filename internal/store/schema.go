package store

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	api_key_hash TEXT NOT NULL,
	chips BIGINT NOT NULL DEFAULT 1000,
	hands_played BIGINT NOT NULL DEFAULT 0,
	hands_won BIGINT NOT NULL DEFAULT 0,
	llm_provider TEXT NOT NULL DEFAULT '',
	llm_model TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	banned BOOLEAN NOT NULL DEFAULT false,
	current_table TEXT,
	rebuys INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_agents_chips ON agents (chips DESC);
CREATE INDEX IF NOT EXISTS idx_agents_api_key_hash ON agents (api_key_hash);

CREATE TABLE IF NOT EXISTS hand_history (
	id TEXT PRIMARY KEY,
	table_id TEXT NOT NULL,
	winner_id TEXT,
	winner_name TEXT,
	winning_hand TEXT,
	pot BIGINT NOT NULL,
	player_count INT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ NOT NULL,
	record JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hand_history_table_id ON hand_history (table_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS idx_hand_history_winner_id ON hand_history (winner_id);

CREATE TABLE IF NOT EXISTS agent_pairs (
	agent_a TEXT NOT NULL,
	agent_b TEXT NOT NULL,
	hands_together BIGINT NOT NULL DEFAULT 0,
	a_folds_to_b BIGINT NOT NULL DEFAULT 0,
	b_folds_to_a BIGINT NOT NULL DEFAULT 0,
	chip_flow_a_to_b BIGINT NOT NULL DEFAULT 0,
	collusion_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (agent_a, agent_b)
);
CREATE INDEX IF NOT EXISTS idx_agent_pairs_score ON agent_pairs (collusion_score DESC);

CREATE TABLE IF NOT EXISTS table_snapshots (
	table_id TEXT PRIMARY KEY,
	snapshot JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema idempotently. There is no migration-diffing
// tool in play here; every statement is CREATE ... IF NOT EXISTS.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}
