package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/hospital-ledger/internal/jobs"
)

type stubChecker struct {
	tenants  []uuid.UUID
	reports  map[uuid.UUID]reports.IntegrityReport
	checked  []uuid.UUID
	checkErr error
}

func (s *stubChecker) TenantsToCheck(context.Context) ([]uuid.UUID, error) {
	return s.tenants, nil
}

func (s *stubChecker) CheckIntegrity(_ context.Context, tenantID uuid.UUID) (reports.IntegrityReport, error) {
	s.checked = append(s.checked, tenantID)
	if s.checkErr != nil {
		return reports.IntegrityReport{}, s.checkErr
	}
	if r, ok := s.reports[tenantID]; ok {
		return r, nil
	}
	return reports.IntegrityReport{TenantID: tenantID, TotalDebit: decimal.NewFromInt(10), TotalCredit: decimal.NewFromInt(10)}, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewIntegrityTask(t *testing.T) {
	task, err := NewIntegrityTask("")
	require.NoError(t, err)
	require.Equal(t, TaskLedgerIntegrity, task.Type())
	var payload IntegrityPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "all", payload.Tenant)

	_, err = NewIntegrityTask("hospital-a")
	require.Error(t, err)
}

func TestIntegrityJobChecksOpenTenants(t *testing.T) {
	healthy, broken := uuid.New(), uuid.New()
	checker := &stubChecker{
		tenants: []uuid.UUID{healthy, broken},
		reports: map[uuid.UUID]reports.IntegrityReport{
			broken: {
				TenantID:    broken,
				TotalDebit:  decimal.NewFromInt(10),
				TotalCredit: decimal.NewFromInt(9),
				UnbalancedEntries: []reports.UnbalancedEntry{
					{EntryID: 7, Lines: 2, Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(9)},
				},
			},
		},
	}
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	job := NewIntegrityJob(checker, quietLogger(), metrics)

	task, err := NewIntegrityTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []uuid.UUID{healthy, broken}, checker.checked)

	count, err := testutil.GatherAndCount(registry, "ledger_integrity_inconsistencies_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestIntegrityJobSingleTenant(t *testing.T) {
	tenant := uuid.New()
	checker := &stubChecker{tenants: []uuid.UUID{uuid.New()}}
	job := NewIntegrityJob(checker, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewIntegrityTask(tenant.String())
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []uuid.UUID{tenant}, checker.checked)
}

func TestIntegrityJobPropagatesInfrastructureErrors(t *testing.T) {
	checker := &stubChecker{tenants: []uuid.UUID{uuid.New()}, checkErr: errors.New("connection reset")}
	job := NewIntegrityJob(checker, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewIntegrityTask("")
	require.NoError(t, err)
	require.Error(t, job.Handle(context.Background(), task))
}

func TestIntegrityJobSkipsMalformedPayload(t *testing.T) {
	job := NewIntegrityJob(&stubChecker{}, quietLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestIntegrityJobSkipsMalformedTenant(t *testing.T) {
	checker := &stubChecker{tenants: []uuid.UUID{uuid.New()}}
	registry := prometheus.NewRegistry()
	job := NewIntegrityJob(checker, quietLogger(), jobmetrics.NewMetrics(registry))

	payload, err := json.Marshal(IntegrityPayload{Tenant: "not-a-tenant"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, payload))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Contains(t, err.Error(), "not-a-tenant")
	require.Empty(t, checker.checked)
}
