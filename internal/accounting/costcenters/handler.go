package costcenters

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
	r.Get("/cost-centers", h.list)
	r.Post("/cost-centers", h.create)
	r.Post("/cost-centers/{id}/deactivate", h.deactivate)
}

type createRequest struct {
	Code string `json:"code" validate:"required,max=32"`
	Name string `json:"name" validate:"required,max=200"`
	Type string `json:"type" validate:"omitempty,max=32"`
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
	httpx.JSON(w, http.StatusOK, map[string]any{"cost_centers": items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	cc, err := h.service.Create(r.Context(), tenantID, CreateInput(req))
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cc)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	id, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	cc, err := h.service.Deactivate(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cc)
}
