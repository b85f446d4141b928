package closehttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/close"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

type closeService interface {
	CloseYear(ctx context.Context, in close.CloseYearInput) (close.Result, error)
	Preview(ctx context.Context, tenantID uuid.UUID, yearID, retainedEarningsAccountID int64) (close.Preview, error)
}

// Handler exposes year-end closing over JSON.
type Handler struct {
	logger  *slog.Logger
	service closeService
}

// NewHandler constructs a close HTTP handler.
func NewHandler(logger *slog.Logger, service closeService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/years/{id}/close", h.closeYear)
	r.Get("/years/{id}/close/preview", h.preview)
}

type closeYearRequest struct {
	RetainedEarningsAccountID int64 `json:"retained_earnings_account_id" validate:"gte=0"`
}

func (h *Handler) closeYear(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	yearID, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var req closeYearRequest
	if r.ContentLength != 0 {
		if err := httpx.Bind(r, &req); err != nil {
			httpx.Fail(w, r, h.logger, err)
			return
		}
	}
	res, err := h.service.CloseYear(r.Context(), close.CloseYearInput{
		TenantID:                  tenantID,
		YearID:                    yearID,
		RetainedEarningsAccountID: req.RetainedEarningsAccountID,
		ActorID:                   internalShared.ActorFromContext(r.Context()),
	})
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	yearID, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	accountID, err := httpx.QueryInt64(r, "retained_earnings_account_id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var reID int64
	if accountID != nil {
		reID = *accountID
	}
	preview, err := h.service.Preview(r.Context(), tenantID, yearID, reID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}
