package ar

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

// Handler wires receivables reports to HTTP routes.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates AR handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers AR routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/receivables-aging", h.aging)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
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
	report, err := h.service.ReceivablesAging(r.Context(), tenantID, asOf)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receivables-aging-"+report.AsOf.Format("20060102")+".csv"))
		if err := WriteAgingCSV(w, report); err != nil {
			h.logger.Error("write aging csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
