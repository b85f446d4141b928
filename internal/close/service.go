package close

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/cache"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

const yearLockTTL = 5 * time.Minute

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// AccountResolver looks up the account behind a system account key.
type AccountResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key mappings.Key) (accounts.Account, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// Metrics counts closing outcomes.
type Metrics interface {
	ObserveClosing(result string)
	ConsistencyFailure(check string)
}

// Service closes financial years into retained earnings.
type Service struct {
	repo     Repository
	accounts AccountResolver
	locker   Locker
	audit    AuditPort
	cache    shared.CacheInvalidator
	metrics  Metrics
	logger   *slog.Logger
	pending  []shared.PendingDocumentSource
	now      func() time.Time
}

// Options carries the optional collaborators of Service.
type Options struct {
	Locker  Locker
	Audit   AuditPort
	Cache   shared.CacheInvalidator
	Metrics Metrics
	Logger  *slog.Logger
	Pending []shared.PendingDocumentSource
}

func NewService(repo Repository, resolver AccountResolver, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		accounts: resolver,
		locker:   opts.Locker,
		audit:    opts.Audit,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   logger,
		pending:  opts.Pending,
		now:      time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CloseYear posts the closing entry and marks the year CLOSED in one
// transaction. Nothing is written when a precondition fails.
func (s *Service) CloseYear(ctx context.Context, in CloseYearInput) (Result, error) {
	if in.TenantID == uuid.Nil {
		return Result{}, shared.Invalid("tenant_id", "is required")
	}
	if in.YearID <= 0 {
		return Result{}, shared.Invalid("year_id", "is required")
	}
	if in.RetainedEarningsAccountID < 0 {
		return Result{}, shared.Invalid("retained_earnings_account_id", "must be positive")
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, internalShared.YearCloseLockKey(in.YearID), yearLockTTL)
		if errors.Is(err, cache.ErrLockHeld) {
			s.observe("blocked")
			return Result{}, &shared.ClosingPreconditionError{Reason: "year close already in progress"}
		}
		if err != nil {
			return Result{}, err
		}
		defer func() { _ = release(context.WithoutCancel(ctx)) }()
	}

	var (
		plan  Plan
		entry journals.Entry
		year  periods.Year
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		year, err = tx.LockYear(ctx, in.YearID)
		if err != nil {
			return err
		}
		if year.TenantID != in.TenantID {
			return shared.NotFound("financial year", in.YearID)
		}
		if year.Status != periods.YearStatusOpen {
			return shared.YearClosed(year.EndDate, year.ID)
		}
		openPeriods, docs, err := s.blockers(ctx, tx, year)
		if err != nil {
			return err
		}
		if len(openPeriods) > 0 || len(docs) > 0 {
			return &shared.ClosingPreconditionError{
				Reason:           fmt.Sprintf("year %s is not ready to close", year.Code),
				OpenPeriods:      openPeriods,
				PendingDocuments: docs,
			}
		}

		plan, err = s.plan(ctx, tx, year, in.RetainedEarningsAccountID)
		if err != nil {
			return err
		}
		if debit, credit := plan.Totals(); !debit.Equal(credit) {
			return &shared.InternalConsistencyError{Check: "closing_entry", Debit: debit, Credit: credit}
		}

		if len(plan.Lines) > 0 {
			period, err := tx.PeriodCoveringForShare(ctx, year.ID, year.EndDate)
			if err != nil {
				return err
			}
			if period == nil {
				return shared.NoCoveringPeriod(year.EndDate, year.ID)
			}
			sourceID := fmt.Sprintf("year:%d", year.ID)
			entry, err = tx.InsertEntry(ctx, journals.Entry{
				TenantID:     year.TenantID,
				YearID:       year.ID,
				PeriodID:     period.ID,
				EntryDate:    year.EndDate,
				Description:  fmt.Sprintf("Closing entry %s", year.Code),
				SourceModule: journals.SourceClosing,
				SourceID:     &sourceID,
				CreatedBy:    in.ActorID,
			})
			if err != nil {
				return err
			}
			entry.Lines, err = tx.InsertLines(ctx, entry.ID, plan.Lines)
			if err != nil {
				return err
			}
		}

		year, err = tx.MarkYearClosed(ctx, year.ID, in.ActorID, s.now())
		return err
	})
	if err != nil {
		s.fail(in, err)
		return Result{}, err
	}

	result := Result{
		YearID:         year.ID,
		ClosingEntryID: entry.ID,
		TotalRevenue:   plan.TotalRevenue,
		TotalExpense:   plan.TotalExpense,
		NetProfit:      plan.NetProfit,
	}
	s.afterCommit(ctx, in, result, len(entry.Lines))
	return result, nil
}

// Preview computes the closing entry without posting it and lists what still
// blocks the close. A closed year cannot be previewed.
func (s *Service) Preview(ctx context.Context, tenantID uuid.UUID, yearID, retainedEarningsAccountID int64) (Preview, error) {
	var out Preview
	err := s.repo.WithReadTx(ctx, func(ctx context.Context, tx TxRepository) error {
		year, err := tx.GetYear(ctx, yearID)
		if err != nil {
			return err
		}
		if year.TenantID != tenantID {
			return shared.NotFound("financial year", yearID)
		}
		if year.Status != periods.YearStatusOpen {
			return shared.YearClosed(year.EndDate, year.ID)
		}
		out.OpenPeriods, out.PendingDocuments, err = s.blockers(ctx, tx, year)
		if err != nil {
			return err
		}
		out.Plan, err = s.plan(ctx, tx, year, retainedEarningsAccountID)
		return err
	})
	if err != nil {
		return Preview{}, err
	}
	if out.OpenPeriods == nil {
		out.OpenPeriods = []int{}
	}
	if out.PendingDocuments == nil {
		out.PendingDocuments = []shared.PendingDocument{}
	}
	out.Ready = len(out.OpenPeriods) == 0 && len(out.PendingDocuments) == 0
	return out, nil
}

func (s *Service) blockers(ctx context.Context, tx TxRepository, year periods.Year) ([]int, []shared.PendingDocument, error) {
	open, err := tx.OpenPeriodIndexes(ctx, year.ID)
	if err != nil {
		return nil, nil, err
	}
	docs, err := shared.CollectPending(ctx, s.pending, year.TenantID, year.StartDate, year.EndDate)
	if err != nil {
		return nil, nil, err
	}
	return open, docs, nil
}

func (s *Service) plan(ctx context.Context, tx TxRepository, year periods.Year, retainedEarningsID int64) (Plan, error) {
	re, err := s.retainedEarnings(ctx, tx, year.TenantID, retainedEarningsID)
	if err != nil {
		return Plan{}, err
	}
	balances, err := tx.IncomeBalances(ctx, year.ID)
	if err != nil {
		return Plan{}, err
	}
	plan := BuildClosing(balances, re.ID)
	plan.YearID = year.ID
	return plan, nil
}

func (s *Service) retainedEarnings(ctx context.Context, tx TxRepository, tenantID uuid.UUID, id int64) (accounts.Account, error) {
	const field = "retained_earnings_account_id"
	if id == 0 {
		if s.accounts == nil {
			return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(mappings.KeyRetainedEarnings), Reason: "no mapping"}
		}
		mapped, err := s.accounts.Resolve(ctx, tenantID, mappings.KeyRetainedEarnings)
		if err != nil {
			return accounts.Account{}, err
		}
		id = mapped.ID
	}
	found, err := tx.AccountsByID(ctx, []int64{id})
	if err != nil {
		return accounts.Account{}, err
	}
	account, ok := found[id]
	switch {
	case !ok || account.TenantID != tenantID:
		return accounts.Account{}, shared.Invalidf(field, "account %d does not exist", id)
	case !account.IsActive:
		return accounts.Account{}, shared.Invalidf(field, "account %s is inactive", account.Code)
	case account.Type != accounts.AccountTypeEquity:
		return accounts.Account{}, shared.Invalidf(field, "account %s is %s, expected EQUITY", account.Code, account.Type)
	}
	return account, nil
}

func (s *Service) fail(in CloseYearInput, err error) {
	var inconsistent *shared.InternalConsistencyError
	if errors.As(err, &inconsistent) {
		s.logger.Error("closing entry does not balance",
			slog.String("tenant_id", in.TenantID.String()),
			slog.Int64("year_id", in.YearID),
			slog.String("debit", inconsistent.Debit.StringFixed(2)),
			slog.String("credit", inconsistent.Credit.StringFixed(2)))
		if s.metrics != nil {
			s.metrics.ConsistencyFailure(inconsistent.Check)
		}
	}
	s.observe(resultFor(err))
}

func (s *Service) afterCommit(ctx context.Context, in CloseYearInput, res Result, lines int) {
	if s.audit != nil {
		if err := s.audit.Record(ctx, internalShared.AuditLog{
			TenantID: in.TenantID,
			Actor:    in.ActorID,
			Action:   "year.close",
			Entity:   "financial_year",
			EntityID: fmt.Sprintf("%d", res.YearID),
			Meta: map[string]any{
				"closing_entry_id": res.ClosingEntryID,
				"lines":            lines,
				"net_profit":       res.NetProfit.StringFixed(2),
			},
			At: s.now(),
		}); err != nil {
			s.logger.Warn("audit year close", slog.Int64("year_id", res.YearID), slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	s.observe("closed")
	s.logger.Info("financial year closed",
		slog.String("tenant_id", in.TenantID.String()),
		slog.Int64("year_id", res.YearID),
		slog.String("net_profit", res.NetProfit.StringFixed(2)))
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveClosing(result)
	}
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrClosingPrecondition):
		return "blocked"
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrUnmappedSystemAccount),
		errors.Is(err, shared.ErrYearClosed), errors.Is(err, shared.ErrNotFound):
		return "rejected"
	case errors.Is(err, shared.ErrInternalConsistency):
		return "inconsistent"
	default:
		return "failed"
	}
}
