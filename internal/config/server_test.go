package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/agentpoker?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StartingChips != 1000 {
		t.Fatalf("StartingChips = %v, want 1000", cfg.StartingChips)
	}
	if cfg.ActionTimeoutMS != 15000 {
		t.Fatalf("ActionTimeoutMS = %d, want 15000", cfg.ActionTimeoutMS)
	}
	if cfg.MaxRebuys != 3 {
		t.Fatalf("MaxRebuys = %d, want 3", cfg.MaxRebuys)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/agentpoker?sslmode=disable")
	t.Setenv("DEFAULT_SMALL_BLIND", "25")
	t.Setenv("TABLE_MAX_SEATS", "9")
	t.Setenv("COLLUSION_FLAG_SCORE", "0.8")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.DefaultSmall != 25 {
		t.Fatalf("DefaultSmall = %v, want 25", cfg.DefaultSmall)
	}
	if cfg.TableMaxSeats != 9 {
		t.Fatalf("TableMaxSeats = %d, want 9", cfg.TableMaxSeats)
	}
	if cfg.CollusionFlagScore != 0.8 {
		t.Fatalf("CollusionFlagScore = %v, want 0.8", cfg.CollusionFlagScore)
	}
}
