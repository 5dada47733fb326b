package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"agentpoker/internal/logging"
	"agentpoker/internal/ratelimit"
	"agentpoker/internal/store"
)

type agentContextKey struct{}

func AgentFromContext(ctx context.Context) (store.Agent, bool) {
	agent, ok := ctx.Value(agentContextKey{}).(store.Agent)
	return agent, ok
}

// APILogMiddleware bridges zerolog's configured sink into httplog's slog
// front end, the way the teacher wires its request logging.
func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
			},
		},
	)
}

// WriteHTTPError writes the {"error": code} body the client contract
// promises on every 4xx/5xx.
func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// AgentAuthMiddleware extracts the bearer token, hashes it, and looks up
// the agent. Unknown or banned agents are rejected before the handler
// ever runs.
func AgentAuthMiddleware(st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			auth := r.Header.Get("Authorization")
			if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
				WriteHTTPError(w, http.StatusUnauthorized, "missing_bearer_token")
				return
			}
			hash := store.HashAPIKey(auth[len(prefix):])
			agent, err := st.GetAgentByAPIKeyHash(r.Context(), hash)
			if err != nil {
				WriteHTTPError(w, http.StatusUnauthorized, "invalid_bearer_token")
				return
			}
			if agent.Banned {
				WriteHTTPError(w, http.StatusForbidden, "agent_banned")
				return
			}
			ctx := context.WithValue(r.Context(), agentContextKey{}, agent)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthMiddleware checks the X-Admin-Key header against the
// configured admin key. An empty configured key disables every admin
// route rather than accepting anything.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" || r.Header.Get("X-Admin-Key") != adminKey {
				WriteHTTPError(w, http.StatusForbidden, "admin_key_mismatch")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP and RateLimitByAgent apply limiter against a key derived
// from the request, writing X-RateLimit-* headers on every response and
// a 429 with retryAfter once the window is exhausted. Per spec the
// registration and public route classes key by IP; authenticated and
// chat route classes key by the caller's agent, which requires
// AgentAuthMiddleware to have already run.
func RateLimitByIP(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return rateLimitMiddleware(limiter, clientIP)
}

func RateLimitByAgent(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return rateLimitMiddleware(limiter, func(r *http.Request) string {
		agent, ok := AgentFromContext(r.Context())
		if !ok {
			return clientIP(r)
		}
		return agent.ID
	})
}

func rateLimitMiddleware(limiter *ratelimit.Limiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Allow(keyFunc(r), time.Now())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":      "rate_limited",
					"retryAfter": int(result.RetryAfter.Seconds()),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}
