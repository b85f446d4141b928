package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
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
	r.Get("/accounts/{id}/ledger", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	accountID, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if from == nil || to == nil {
		httpx.Fail(w, r, h.logger, shared.Invalid("from", "from and to are required"))
		return
	}
	costCenterID, err := httpx.QueryInt64(r, "cost_center_id")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	out, err := h.service.GetLedger(r.Context(), tenantID, accountID, *from, *to, costCenterID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
