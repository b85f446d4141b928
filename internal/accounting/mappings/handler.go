package mappings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/system-accounts", h.list)
	r.Get("/system-accounts/{key}", h.get)
	r.Put("/system-accounts/{key}", h.upsert)
	r.Delete("/system-accounts/{key}", h.deactivate)
}

type upsertRequest struct {
	AccountID int64 `json:"account_id" validate:"required,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	items, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"mappings": items, "keys": Keys})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	key, err := ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	account, err := h.service.Resolve(r.Context(), tenantID, key)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"key": key, "account": account})
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	key, err := ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var req upsertRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	m, err := h.service.Upsert(r.Context(), tenantID, key, req.AccountID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	key, err := ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if err := h.service.Deactivate(r.Context(), tenantID, key); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
