package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentpoker/internal/collusion"
	"agentpoker/internal/store"
	"agentpoker/internal/tableactor"
)

// PublicHandlers serves every unauthenticated route: spectator views,
// public hand history, the leaderboard, global stats, and the collusion
// watchlist.
type PublicHandlers struct {
	store     *store.Store
	registry  *tableactor.Registry
	collusion *collusion.Accumulator
}

func NewPublicHandlers(st *store.Store, reg *tableactor.Registry, coll *collusion.Accumulator) *PublicHandlers {
	return &PublicHandlers{store: st, registry: reg, collusion: coll}
}

func (h *PublicHandlers) TableSpectate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.registry.Get(chi.URLParam(r, "tableId"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, actor.PublicView())
	}
}

func (h *PublicHandlers) TableHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "tableId")
		hands, err := h.store.TableHistory(r.Context(), tableID, parseLimit(r, 20))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"hands": hands})
	}
}

func (h *PublicHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := h.store.Leaderboard(r.Context(), parseLimit(r, 20))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(agents))
		for i, a := range agents {
			winRate := "0%"
			if a.HandsPlayed > 0 {
				winRate = fmt.Sprintf("%.0f%%", float64(a.HandsWon)/float64(a.HandsPlayed)*100)
			}
			out = append(out, map[string]any{
				"rank":        i + 1,
				"id":          a.ID,
				"name":        a.Name,
				"chips":       a.Chips,
				"handsPlayed": a.HandsPlayed,
				"handsWon":    a.HandsWon,
				"winRate":     winRate,
				"llmProvider": a.LLMProvider,
				"llmModel":    a.LLMModel,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"leaderboard": out})
	}
}

func (h *PublicHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.store.GlobalStats(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"agentCount":  stats.AgentCount,
			"handCount":   stats.HandCount,
			"totalChips":  stats.TotalChips,
			"liveTables":  len(h.registry.List()),
		})
	}
}

func (h *PublicHandlers) Collusion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flagged, err := h.collusion.Watchlist(r.Context())
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, flagged)
	}
}
