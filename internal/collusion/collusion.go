// Package collusion accumulates pairwise fold and chip-flow statistics
// across hands and flags pairs whose behavior looks coordinated. The
// scoring is explicitly heuristic; it surfaces a score and its inputs for
// human review, not an automatic ban.
package collusion

import (
	"context"
	"sort"

	"agentpoker/internal/game"
)

// PairStats mirrors the agent_pairs row.
type PairStats struct {
	AgentA         string
	AgentB         string
	HandsTogether  int64
	AFoldsToB      int64
	BFoldsToA      int64
	ChipFlowAToB   int64
	Score          float64
}

// Store is the persistence surface this accumulator needs; internal/store
// implements it against agent_pairs.
type Store interface {
	LoadPair(ctx context.Context, a, b string) (PairStats, error)
	SavePair(ctx context.Context, p PairStats) error
	Watchlist(ctx context.Context, minScore float64) ([]PairStats, error)
}

type Accumulator struct {
	store         Store
	minHands      int64
	flagThreshold float64
	confidenceN   float64
}

func New(store Store, minHands int, flagThreshold, confidenceN float64) *Accumulator {
	return &Accumulator{
		store:         store,
		minHands:      int64(minHands),
		flagThreshold: flagThreshold,
		confidenceN:   confidenceN,
	}
}

// ProcessHand updates every participating pair's statistics from one
// completed hand record.
func (a *Accumulator) ProcessHand(ctx context.Context, record *game.HandRecord) error {
	participants := make([]string, 0, len(record.StartingStacks))
	for agentID := range record.StartingStacks {
		participants = append(participants, agentID)
	}
	sort.Strings(participants)

	foldsTo := foldEvents(record)
	winners := map[string]bool{}
	for _, w := range record.WinnerIDs {
		winners[w] = true
	}

	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			agentA, agentB := participants[i], participants[j]
			stats, err := a.store.LoadPair(ctx, agentA, agentB)
			if err != nil {
				return err
			}
			stats.AgentA, stats.AgentB = agentA, agentB
			stats.HandsTogether++
			if foldsTo[pairKey{agentA, agentB}] {
				stats.AFoldsToB++
			}
			if foldsTo[pairKey{agentB, agentA}] {
				stats.BFoldsToA++
			}
			switch {
			case winners[agentB] && !winners[agentA]:
				stats.ChipFlowAToB++
			case winners[agentA] && !winners[agentB]:
				stats.ChipFlowAToB--
			}
			if stats.HandsTogether >= a.minHands {
				stats.Score = computeScore(stats, a.confidenceN)
			}
			if err := a.store.SavePair(ctx, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

type pairKey struct{ folder, raiser string }

// foldEvents scans the action log once and records, for each fold, the
// (folder, mostRecentRaiser) pair — the raiser being whoever most
// recently raised or went all-in anywhere earlier in the hand.
func foldEvents(record *game.HandRecord) map[pairKey]bool {
	events := map[pairKey]bool{}
	lastRaiser := ""
	for _, act := range record.Actions {
		switch act.Action {
		case game.ActionRaise, game.ActionAllIn:
			lastRaiser = act.AgentID
		case game.ActionFold:
			if lastRaiser != "" && lastRaiser != act.AgentID {
				events[pairKey{act.AgentID, lastRaiser}] = true
			}
		}
	}
	return events
}

func computeScore(s PairStats, confidenceN float64) float64 {
	n := float64(s.HandsTogether)
	foldSum := float64(s.AFoldsToB + s.BFoldsToA)
	foldScore := minF(1, foldSum/n/0.6)
	foldBias := 0.0
	if foldSum > 0 {
		foldBias = maxF(float64(s.AFoldsToB), float64(s.BFoldsToA)) / foldSum
	}
	chipFlow := float64(s.ChipFlowAToB)
	if chipFlow < 0 {
		chipFlow = -chipFlow
	}
	chipBias := chipFlow / n
	confidence := minF(1, n/confidenceN)
	return (0.35*foldScore + 0.35*foldBias + 0.30*chipBias) * confidence
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Watchlist returns every pair at or above the flag threshold.
func (a *Accumulator) Watchlist(ctx context.Context) ([]PairStats, error) {
	return a.store.Watchlist(ctx, a.flagThreshold)
}
