package integration

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

const maxEventBody = 1 << 20

// Handler accepts events from origin modules running out of process.
type Handler struct {
	hooks  *Hooks
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, hooks *Hooks) *Handler {
	return &Handler{hooks: hooks, logger: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/integration/events/{kind}", h.handle)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	evt, err := Decode(chi.URLParam(r, "kind"), body)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	entry, err := h.hooks.Handle(r.Context(), tenantID, evt)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if entry.ID == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}
