package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"agentpoker/internal/config"
	"agentpoker/internal/game"
	"agentpoker/internal/sanitizer"
	"agentpoker/internal/store"
	"agentpoker/internal/tableactor"
)

// AgentHandlers serves registration (unauthenticated) and every route that
// requires a bearer-authenticated agent: profile, rebuy, and all /table/*
// actions.
type AgentHandlers struct {
	store    *store.Store
	registry *tableactor.Registry
	cfg      config.ServerConfig
}

func NewAgentHandlers(st *store.Store, reg *tableactor.Registry, cfg config.ServerConfig) *AgentHandlers {
	return &AgentHandlers{store: st, registry: reg, cfg: cfg}
}

func (h *AgentHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name        string `json:"name"`
			LLMProvider string `json:"llmProvider"`
			LLMModel    string `json:"llmModel"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		name, err := sanitizer.CleanName(body.Name)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		apiKey := "ap_" + uuid.NewString()
		agent, err := h.store.CreateAgent(r.Context(), store.NewID(), name, store.HashAPIKey(apiKey), body.LLMProvider, body.LLMModel, h.cfg.StartingChips)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"agentId": agent.ID,
			"apiKey":  apiKey,
			"chips":   agent.Chips,
			"message": "welcome to the table, " + agent.Name,
		})
	}
}

func (h *AgentHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		agent, err := h.store.GetAgentByID(r.Context(), authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profileView(agent, h.cfg.MaxRebuys))
	}
}

func (h *AgentHandlers) Rebuy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		if authed.CurrentTable != nil {
			if actor, err := h.registry.Get(*authed.CurrentTable); err == nil {
				view := actor.PublicView()
				if view.Phase != game.PhaseWaiting && view.Phase != game.PhaseShowdown {
					for _, p := range view.Players {
						if p.AgentID == authed.ID && (p.Status == game.StatusActive || p.Status == game.StatusAllIn) {
							writeEngineError(w, store.ErrRebuyNotAllowed)
							return
						}
					}
				}
			}
		}
		agent, err := h.store.Rebuy(r.Context(), authed.ID, h.cfg.RebuyThreshold, h.cfg.StartingChips, h.cfg.MaxRebuys)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if agent.CurrentTable != nil {
			if actor, err := h.registry.Get(*agent.CurrentTable); err == nil {
				_ = actor.UpdateChips(r.Context(), agent.ID, agent.Chips)
			}
		}
		writeJSON(w, http.StatusOK, profileView(agent, h.cfg.MaxRebuys))
	}
}

func (h *AgentHandlers) TableJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		var body struct {
			TableID string `json:"tableId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		agent, err := h.store.GetAgentByID(r.Context(), authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if agent.CurrentTable != nil {
			writeEngineError(w, game.ErrAlreadySeated)
			return
		}

		actor, err := h.resolveJoinTarget(body.TableID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if err := actor.Join(r.Context(), agent.ID, agent.Name, agent.Chips); err != nil {
			writeEngineError(w, err)
			return
		}
		tableID := actor.TableID()
		if err := h.store.SetCurrentTable(r.Context(), agent.ID, &tableID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, actor.AgentView(agent.ID, 10))
	}
}

// resolveJoinTarget returns the requested table, or the first
// non-full live table when tableID is empty, or a freshly created one
// when every live table is full.
func (h *AgentHandlers) resolveJoinTarget(tableID string) (*tableactor.Actor, error) {
	if tableID != "" {
		return h.registry.Get(tableID)
	}
	for _, a := range h.registry.List() {
		if a.SeatCount() < h.cfg.TableMaxSeats {
			return a, nil
		}
	}
	return h.registry.CreateTable(store.NewID(), h.cfg.DefaultSmall, h.cfg.DefaultBig), nil
}

func (h *AgentHandlers) TableLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withSeatedActor(w, r, func(actor *tableactor.Actor, agentID string) error {
			if err := actor.Leave(r.Context(), agentID); err != nil {
				return err
			}
			return h.store.SetCurrentTable(r.Context(), agentID, nil)
		}, func(w http.ResponseWriter) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
	}
}

func (h *AgentHandlers) TableSitOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withSeatedActor(w, r, func(actor *tableactor.Actor, agentID string) error {
			return actor.SitOut(r.Context(), agentID)
		}, func(w http.ResponseWriter) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
	}
}

func (h *AgentHandlers) TableSitIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.withSeatedActor(w, r, func(actor *tableactor.Actor, agentID string) error {
			return actor.SitIn(r.Context(), agentID)
		}, func(w http.ResponseWriter) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
	}
}

func (h *AgentHandlers) TableState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		actor, err := h.currentActor(r, authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, actor.AgentView(authed.ID, 10))
	}
}

func (h *AgentHandlers) TableAct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		var body struct {
			Action string `json:"action"`
			Amount int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		action := game.ActionType(body.Action)
		switch action {
		case game.ActionFold, game.ActionCheck, game.ActionCall, game.ActionRaise, game.ActionAllIn:
		default:
			writeEngineError(w, game.ErrUnknownAction)
			return
		}

		actor, err := h.currentActor(r, authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if err := actor.Act(r.Context(), authed.ID, action, body.Amount); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"state": actor.AgentView(authed.ID, 10),
		})
	}
}

func (h *AgentHandlers) TableChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		clean, err := sanitizer.CleanChat(body.Text, h.cfg.MaxChatBytes)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		actor, err := h.currentActor(r, authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if err := actor.Chat(r.Context(), authed.ID, authed.Name, clean); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *AgentHandlers) TableHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _ := AgentFromContext(r.Context())
		agent, err := h.store.GetAgentByID(r.Context(), authed.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if agent.CurrentTable == nil {
			writeEngineError(w, game.ErrNotSeated)
			return
		}
		hands, err := h.store.TableHistory(r.Context(), *agent.CurrentTable, parseLimit(r, 20))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"hands": hands})
	}
}

// withSeatedActor resolves the caller's current table, runs fn against
// it, and writes ok on success.
func (h *AgentHandlers) withSeatedActor(w http.ResponseWriter, r *http.Request, fn func(actor *tableactor.Actor, agentID string) error, onSuccess func(http.ResponseWriter)) {
	authed, _ := AgentFromContext(r.Context())
	actor, err := h.currentActor(r, authed.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := fn(actor, authed.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	onSuccess(w)
}

func (h *AgentHandlers) currentActor(r *http.Request, agentID string) (*tableactor.Actor, error) {
	agent, err := h.store.GetAgentByID(r.Context(), agentID)
	if err != nil {
		return nil, err
	}
	if agent.CurrentTable == nil {
		return nil, game.ErrNotSeated
	}
	return h.registry.Get(*agent.CurrentTable)
}

func profileView(agent store.Agent, maxRebuys int) map[string]any {
	rebuysLeft := maxRebuys - agent.Rebuys
	if rebuysLeft < 0 {
		rebuysLeft = 0
	}
	return map[string]any{
		"id":           agent.ID,
		"name":         agent.Name,
		"chips":        agent.Chips,
		"handsPlayed":  agent.HandsPlayed,
		"handsWon":     agent.HandsWon,
		"llmProvider":  agent.LLMProvider,
		"llmModel":     agent.LLMModel,
		"currentTable": agent.CurrentTable,
		"rebuys":       agent.Rebuys,
		"rebuysLeft":   rebuysLeft,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > 200 {
		n = 200
	}
	return n
}
