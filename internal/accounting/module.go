// Package accounting assembles the ledger: chart of accounts, calendar,
// journal poster, reports and year-end closing over one Postgres pool.
package accounting

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/costcenters"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/ledger"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/provision"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/ap"
	"github.com/odyssey-erp/hospital-ledger/internal/ar"
	"github.com/odyssey-erp/hospital-ledger/internal/audit"
	"github.com/odyssey-erp/hospital-ledger/internal/close"
	"github.com/odyssey-erp/hospital-ledger/internal/integration"
	"github.com/odyssey-erp/hospital-ledger/internal/observability"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/cache"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Deps is the infrastructure the ledger runs on. Redis is optional: without
// it reports are computed on every request and close runs are not locked
// across processes.
type Deps struct {
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	ReportCacheTTL time.Duration
	Metrics        *observability.LedgerMetrics
	Audit          AuditPort
	Logger         *slog.Logger
}

// Module holds the wired ledger services.
type Module struct {
	Accounts    *accounts.Service
	CostCenters *costcenters.Service
	Mappings    *mappings.Service
	Periods     *periods.Service
	Journals    *journals.Service
	Ledger      *ledger.Service
	Reports     *reports.Service
	Receivables *ar.Service
	Closing     *close.Service
	Hooks       *integration.Hooks
	Seeder      *provision.Seeder
	Timeline    *audit.Service

	ReportCache *reports.Cache
	logger      *slog.Logger
}

// New wires every ledger service. Draft patient and supplier invoices are
// the pending documents that block period and year closes.
func New(deps Deps) *Module {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locker := cache.NewLocker(deps.Redis, logger)
	reportCache := reports.NewCache(deps.Redis, deps.ReportCacheTTL)
	billing := ar.NewBillingRepository(deps.Pool)
	pending := []shared.PendingDocumentSource{billing, ap.NewSupplierInvoiceRepository(deps.Pool)}

	accountRepo := accounts.NewRepository(deps.Pool)
	m := &Module{
		Accounts:    accounts.NewService(accountRepo),
		CostCenters: costcenters.NewService(costcenters.NewRepository(deps.Pool)),
		Ledger:      ledger.NewService(ledger.NewRepository(deps.Pool)),
		Receivables: ar.NewService(billing),
		Timeline:    audit.NewService(audit.NewRepository(deps.Pool)),
		ReportCache: reportCache,
		logger:      logger,
	}
	m.Mappings = mappings.NewService(mappings.NewRepository(deps.Pool), accountRepo)
	m.Periods = periods.NewService(periods.NewRepository(deps.Pool), deps.Audit, locker, pending...)
	m.Journals = journals.NewService(journals.NewRepository(deps.Pool), deps.Audit, reportCache, deps.Metrics, logger)
	m.Reports = reports.NewService(reports.NewRepository(deps.Pool), reportCache, deps.Metrics, logger)
	m.Closing = close.NewService(close.NewRepository(deps.Pool), m.Mappings, close.Options{
		Locker:  locker,
		Audit:   deps.Audit,
		Cache:   reportCache,
		Metrics: deps.Metrics,
		Logger:  logger,
		Pending: pending,
	})
	m.Hooks = integration.NewHooks(m.Journals, m.Mappings, logger)
	m.Seeder = provision.NewSeeder(m.Accounts, m.Mappings, logger)
	return m
}
