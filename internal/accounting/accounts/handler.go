package accounts

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

// MountRoutes registers chart of accounts endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.list)
	r.Post("/accounts", h.create)
	r.Get("/accounts/{id}", h.get)
	r.Patch("/accounts/{id}", h.update)
	r.Post("/accounts/{id}/deactivate", h.deactivate)
}

type createRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=200"`
	Type     string `json:"type" validate:"required,oneof=ASSET CONTRA_ASSET LIABILITY EQUITY REVENUE CONTRA_REVENUE EXPENSE"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

type updateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Type        *string `json:"type" validate:"omitempty,oneof=ASSET CONTRA_ASSET LIABILITY EQUITY REVENUE CONTRA_REVENUE EXPENSE"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	ClearParent bool    `json:"clear_parent"`
	IsActive    *bool   `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	accounts, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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
	account, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
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
	account, err := h.service.Create(r.Context(), tenantID, CreateInput{
		Code:     req.Code,
		Name:     req.Name,
		Type:     AccountType(req.Type),
		ParentID: req.ParentID,
	})
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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
	var req updateRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	input := UpdateInput{Name: req.Name, ParentID: req.ParentID, ClearParent: req.ClearParent, IsActive: req.IsActive}
	if req.Type != nil {
		t := AccountType(*req.Type)
		input.Type = &t
	}
	account, err := h.service.Update(r.Context(), tenantID, id, input)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
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
	account, err := h.service.Deactivate(r.Context(), tenantID, id)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}
