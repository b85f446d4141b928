package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.trialBalance)
	r.Get("/reports/income-statement", h.incomeStatement)
	r.Get("/reports/balance-sheet", h.balanceSheet)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	var filter TrialBalanceFilter
	if filter.From, err = httpx.QueryDate(r, "from"); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if filter.To, err = httpx.QueryDate(r, "to"); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if filter.CostCenterID, err = httpx.QueryInt64(r, "cost_center_id"); err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), tenantID, filter)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvFilename("trial-balance", h.now())))
		if err := WriteTrialBalanceCSV(w, tb); err != nil {
			h.logger.Error("write trial balance csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) incomeStatement(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
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
	out, err := h.service.IncomeStatement(r.Context(), tenantID, *from, *to, costCenterID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	asOf, err := httpx.QueryDate(r, "as_of")
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if asOf == nil {
		today := h.now()
		asOf = &today
	}
	out, err := h.service.BalanceSheet(r.Context(), tenantID, *asOf)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
