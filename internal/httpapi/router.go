package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"agentpoker/internal/collusion"
	"agentpoker/internal/config"
	"agentpoker/internal/ratelimit"
	"agentpoker/internal/store"
	"agentpoker/internal/tableactor"
)

// NewRouter assembles the full route table from §6: public routes, the
// bearer-authenticated agent routes, and the admin-key-gated reset
// route, each behind the rate-limit class the request gateway design
// assigns it.
func NewRouter(st *store.Store, reg *tableactor.Registry, coll *collusion.Accumulator, cfg config.ServerConfig) *chi.Mux {
	agentHandlers := NewAgentHandlers(st, reg, cfg)
	publicHandlers := NewPublicHandlers(st, reg, coll)
	adminHandlers := NewAdminHandlers(reg)

	registerLimiter := ratelimit.New(cfg.RateLimitRegisterPerMin, time.Minute)
	publicLimiter := ratelimit.New(cfg.RateLimitPublicPerMin, time.Minute)
	authedLimiter := ratelimit.New(cfg.RateLimitAuthedPerMin, time.Minute)
	chatLimiter := ratelimit.New(cfg.RateLimitChatPerMin, time.Minute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(APILogMiddleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.With(RateLimitByIP(registerLimiter)).Post("/register", agentHandlers.Register())

	r.Group(func(r chi.Router) {
		r.Use(RateLimitByIP(publicLimiter))
		r.Get("/table/{tableId}/spectate", publicHandlers.TableSpectate())
		r.Get("/table/{tableId}/history", publicHandlers.TableHistory())
		r.Get("/leaderboard", publicHandlers.Leaderboard())
		r.Get("/stats", publicHandlers.Stats())
		r.Get("/collusion", publicHandlers.Collusion())
	})

	r.Group(func(r chi.Router) {
		r.Use(AgentAuthMiddleware(st))
		r.Use(RateLimitByAgent(authedLimiter))
		r.Get("/me", agentHandlers.Me())
		r.Post("/rebuy", agentHandlers.Rebuy())
		r.Post("/table/join", agentHandlers.TableJoin())
		r.Post("/table/leave", agentHandlers.TableLeave())
		r.Post("/table/sit-out", agentHandlers.TableSitOut())
		r.Post("/table/sit-in", agentHandlers.TableSitIn())
		r.Get("/table/state", agentHandlers.TableState())
		r.Post("/table/act", agentHandlers.TableAct())
		r.Get("/table/history", agentHandlers.TableHistory())
	})

	r.Group(func(r chi.Router) {
		r.Use(AgentAuthMiddleware(st))
		r.Use(RateLimitByAgent(chatLimiter))
		r.Post("/table/chat", agentHandlers.TableChat())
	})

	r.Group(func(r chi.Router) {
		r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
		r.Post("/table/{tableId}/reset", adminHandlers.TableReset())
	})

	return r
}
