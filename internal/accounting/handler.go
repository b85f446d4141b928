package accounting

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/costcenters"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/ledger"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/hospital-ledger/internal/ar"
	audithttp "github.com/odyssey-erp/hospital-ledger/internal/audit/http"
	closehttp "github.com/odyssey-erp/hospital-ledger/internal/close/http"
	"github.com/odyssey-erp/hospital-ledger/internal/integration"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/httpx"
)

type routeMounter interface {
	MountRoutes(r chi.Router)
}

// Handler mounts every ledger endpoint under one router.
type Handler struct {
	logger  *slog.Logger
	module  *Module
	mounted []routeMounter
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, module *Module) *Handler {
	return &Handler{
		logger: logger,
		module: module,
		mounted: []routeMounter{
			accounts.NewHandler(logger, module.Accounts),
			costcenters.NewHandler(logger, module.CostCenters),
			mappings.NewHandler(logger, module.Mappings),
			periods.NewHandler(logger, module.Periods),
			journals.NewHandler(logger, module.Journals),
			ledger.NewHandler(logger, module.Ledger),
			reports.NewHandler(logger, module.Reports),
			ar.NewHandler(logger, module.Receivables),
			closehttp.NewHandler(logger, module.Closing),
			integration.NewHandler(logger, module.Hooks),
			audithttp.NewHandler(logger, module.Timeline),
		},
	}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	for _, m := range h.mounted {
		m.MountRoutes(r)
	}
	r.Post("/accounts/seed", h.seedChart)
}

func (h *Handler) seedChart(w http.ResponseWriter, r *http.Request) {
	tenantID, err := httpx.Tenant(r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	res, err := h.module.Seeder.SeedDefaultChart(r.Context(), tenantID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
