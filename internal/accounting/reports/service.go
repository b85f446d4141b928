package reports

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// Metrics counts failed consistency checks.
type Metrics interface {
	ConsistencyFailure(check string)
}

type Service struct {
	repo    Repository
	cache   *Cache
	metrics Metrics
	logger  *slog.Logger
}

func NewService(repo Repository, cache *Cache, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// TrialBalance aggregates posted lines per account and verifies both sides agree.
func (s *Service) TrialBalance(ctx context.Context, tenantID uuid.UUID, filter TrialBalanceFilter) (TrialBalance, error) {
	filter.From = dateOnlyPtr(filter.From)
	filter.To = dateOnlyPtr(filter.To)
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return TrialBalance{}, shared.Invalid("from", "must not be after to")
	}
	parts := []string{"reports", "tb", tenantID.String(), dateToken(filter.From), dateToken(filter.To), idToken(filter.CostCenterID)}
	tb, err := cached(ctx, s, parts, func(ctx context.Context) (TrialBalance, error) {
		var tb TrialBalance
		err := s.repo.Snapshot(ctx, func(ctx context.Context, r Reader) error {
			balances, err := r.Balances(ctx, tenantID, BalanceFilter(filter))
			if err != nil {
				return err
			}
			tb = BuildTrialBalance(filter, balances)
			return tb.Check()
		})
		return tb, err
	})
	if err != nil {
		s.reportInconsistency(tenantID, err)
		return TrialBalance{}, err
	}
	return tb, nil
}

// IncomeStatement reports revenue, expense and net profit over [from, to].
func (s *Service) IncomeStatement(ctx context.Context, tenantID uuid.UUID, from, to time.Time, costCenterID *int64) (IncomeStatement, error) {
	from, to = shared.DateOnly(from), shared.DateOnly(to)
	if from.After(to) {
		return IncomeStatement{}, shared.Invalid("from", "must not be after to")
	}
	parts := []string{"reports", "pl", tenantID.String(), dateToken(&from), dateToken(&to), idToken(costCenterID)}
	return cached(ctx, s, parts, func(ctx context.Context) (IncomeStatement, error) {
		var out IncomeStatement
		err := s.repo.Snapshot(ctx, func(ctx context.Context, r Reader) error {
			balances, err := r.Balances(ctx, tenantID, BalanceFilter{From: &from, To: &to, CostCenterID: costCenterID})
			if err != nil {
				return err
			}
			out = BuildIncomeStatement(from, to, balances)
			out.CostCenterID = costCenterID
			return nil
		})
		return out, err
	})
}

// BalanceSheet reports the position at asOf within the financial year covering it.
func (s *Service) BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (BalanceSheet, error) {
	asOf = shared.DateOnly(asOf)
	parts := []string{"reports", "bs", tenantID.String(), dateToken(&asOf)}
	return cached(ctx, s, parts, func(ctx context.Context) (BalanceSheet, error) {
		var out BalanceSheet
		err := s.repo.Snapshot(ctx, func(ctx context.Context, r Reader) error {
			years, err := r.YearsCovering(ctx, tenantID, asOf)
			if err != nil {
				return err
			}
			if len(years) == 0 {
				return shared.NoCoveringPeriod(asOf, 0)
			}
			year := years[0]
			cumulative, err := r.Balances(ctx, tenantID, BalanceFilter{To: &asOf})
			if err != nil {
				return err
			}
			start := shared.DateOnly(year.StartDate)
			yearToDate, err := r.Balances(ctx, tenantID, BalanceFilter{From: &start, To: &asOf})
			if err != nil {
				return err
			}
			out = BuildBalanceSheet(asOf, year, cumulative, yearToDate)
			return nil
		})
		if err == nil && !shared.Negligible(out.Difference) {
			s.observe("balance_sheet")
			s.logger.Error("balance sheet does not balance",
				slog.String("tenant_id", tenantID.String()),
				slog.String("as_of", asOf.Format(time.DateOnly)),
				slog.String("difference", out.Difference.StringFixed(2)))
		}
		return out, err
	})
}

// IntegrityReport is the outcome of a full-ledger self check for one tenant.
type IntegrityReport struct {
	TenantID          uuid.UUID         `json:"tenant_id"`
	TotalDebit        decimal.Decimal   `json:"total_debit"`
	TotalCredit       decimal.Decimal   `json:"total_credit"`
	UnbalancedEntries []UnbalancedEntry `json:"unbalanced_entries,omitempty"`
}

// OK reports whether the ledger passed every check.
func (r IntegrityReport) OK() bool {
	return shared.NearlyEqual(r.TotalDebit, r.TotalCredit) && len(r.UnbalancedEntries) == 0
}

// CheckIntegrity recomputes the unfiltered trial balance and looks for entries
// that do not net to zero, bypassing the cache.
func (s *Service) CheckIntegrity(ctx context.Context, tenantID uuid.UUID) (IntegrityReport, error) {
	report := IntegrityReport{TenantID: tenantID}
	err := s.repo.Snapshot(ctx, func(ctx context.Context, r Reader) error {
		balances, err := r.Balances(ctx, tenantID, BalanceFilter{})
		if err != nil {
			return err
		}
		tb := BuildTrialBalance(TrialBalanceFilter{}, balances)
		report.TotalDebit, report.TotalCredit = tb.TotalDebit, tb.TotalCredit
		report.UnbalancedEntries, err = r.UnbalancedEntries(ctx, tenantID)
		return err
	})
	if err != nil {
		return IntegrityReport{}, err
	}
	if !shared.NearlyEqual(report.TotalDebit, report.TotalCredit) {
		s.reportInconsistency(tenantID, &shared.InternalConsistencyError{Check: "trial_balance", Debit: report.TotalDebit, Credit: report.TotalCredit})
	}
	for _, entry := range report.UnbalancedEntries {
		s.reportInconsistency(tenantID, &shared.InternalConsistencyError{Check: "entry_balance", Debit: entry.Debit, Credit: entry.Credit})
	}
	return report, nil
}

// TenantsToCheck lists tenants whose current year is still open.
func (s *Service) TenantsToCheck(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.TenantsWithOpenYear(ctx)
}

func (s *Service) reportInconsistency(tenantID uuid.UUID, err error) {
	var ice *shared.InternalConsistencyError
	if !errors.As(err, &ice) {
		return
	}
	s.observe(ice.Check)
	s.logger.Error("ledger consistency check failed",
		slog.String("tenant_id", tenantID.String()),
		slog.String("check", ice.Check),
		slog.String("debit", ice.Debit.StringFixed(2)),
		slog.String("credit", ice.Credit.StringFixed(2)))
}

func (s *Service) observe(check string) {
	if s.metrics != nil {
		s.metrics.ConsistencyFailure(check)
	}
}

// cached collapses concurrent builds of the same report and serves them from Redis.
func cached[T any](ctx context.Context, s *Service, parts []string, build func(context.Context) (T, error)) (T, error) {
	var zero T
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.Any("error", err))
		return build(ctx)
	}
	val, err, _ := singleflightBuild(ctx, key, func(ctx context.Context) (any, error) {
		var out T
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return build(ctx)
		})
		return out, err
	})
	if err != nil {
		return zero, err
	}
	return val.(T), nil
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := shared.DateOnly(*t)
	return &d
}
