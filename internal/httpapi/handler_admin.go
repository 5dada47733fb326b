package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agentpoker/internal/tableactor"
)

// AdminHandlers serves the X-Admin-Key-gated operator routes.
type AdminHandlers struct {
	registry *tableactor.Registry
}

func NewAdminHandlers(reg *tableactor.Registry) *AdminHandlers {
	return &AdminHandlers{registry: reg}
}

func (h *AdminHandlers) TableReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "tableId")
		if err := h.registry.Reset(r.Context(), tableID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
