package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/hospital-ledger/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// IntegrityChecker recomputes ledger totals for a tenant.
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context, tenantID uuid.UUID) (reports.IntegrityReport, error)
	TenantsToCheck(ctx context.Context) ([]uuid.UUID, error)
}

// IntegrityJob runs the ledger self-check for the tenants named by the task.
type IntegrityJob struct {
	Checker IntegrityChecker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewIntegrityJob constructs the job handler.
func NewIntegrityJob(checker IntegrityChecker, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityJob {
	return &IntegrityJob{
		Checker: checker,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the integrity check. A failed check is reported, not retried;
// only infrastructure errors are returned to asynq.
func (j *IntegrityJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Checker == nil {
		return errors.New("ledger integrity: dependencies not configured")
	}
	var payload IntegrityPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLedgerIntegrity)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	tenants, err := j.resolveTenants(ctx, payload.Tenant)
	if err != nil {
		resultErr = err
		j.log().Error("resolve tenants", slog.String("tenant", payload.Tenant), slog.Any("error", err))
		return resultErr
	}
	if len(tenants) == 0 {
		j.log().Info("no tenants with an open year")
		return resultErr
	}

	start := j.now()
	failed := 0
	for _, tenantID := range tenants {
		report, err := j.Checker.CheckIntegrity(ctx, tenantID)
		if err != nil {
			resultErr = err
			j.log().Error("check tenant", slog.String("tenant_id", tenantID.String()), slog.Any("error", err))
			return resultErr
		}
		if report.OK() {
			continue
		}
		failed++
		j.metrics().AddInconsistencies(tenantID.String(), len(report.UnbalancedEntries))
		j.log().Error("ledger integrity failed",
			slog.String("tenant_id", tenantID.String()),
			slog.String("total_debit", report.TotalDebit.StringFixed(2)),
			slog.String("total_credit", report.TotalCredit.StringFixed(2)),
			slog.Int("unbalanced_entries", len(report.UnbalancedEntries)))
	}

	j.log().Info("ledger integrity checked",
		slog.Int("tenants", len(tenants)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *IntegrityJob) resolveTenants(ctx context.Context, tenant string) ([]uuid.UUID, error) {
	if tenant == "" || tenant == scopeAll {
		return j.Checker.TenantsToCheck(ctx)
	}
	id, err := uuid.Parse(tenant)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id %q: %w", tenant, asynq.SkipRetry)
	}
	return []uuid.UUID{id}, nil
}

func (j *IntegrityJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *IntegrityJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrity))
}

func (j *IntegrityJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *IntegrityJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
