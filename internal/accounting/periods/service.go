package periods

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/cache"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

const periodLockTTL = 2 * time.Minute

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Locker serialises period close runs across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type Service struct {
	repo    Repository
	audit   AuditPort
	locker  Locker
	pending []shared.PendingDocumentSource
	now     func() time.Time
}

func NewService(repo Repository, audit AuditPort, locker Locker, pending ...shared.PendingDocumentSource) *Service {
	return &Service{repo: repo, audit: audit, locker: locker, pending: pending, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateYear registers a financial year and its monthly periods.
func (s *Service) CreateYear(ctx context.Context, tenantID uuid.UUID, input CreateYearInput) (Year, []Period, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return Year{}, nil, shared.Invalid("code", "required")
	}
	if name == "" {
		name = code
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return Year{}, nil, shared.Invalid("start_date", "start and end dates required")
	}
	start := shared.DateOnly(input.StartDate)
	end := shared.DateOnly(input.EndDate)
	if end.Before(start) {
		return Year{}, nil, shared.Invalid("end_date", "must not be before start_date")
	}
	if end.After(start.AddDate(2, 0, 0)) {
		return Year{}, nil, shared.Invalid("end_date", "financial year cannot exceed 24 months")
	}

	var year Year
	var periods []Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockCalendar(ctx, tenantID); err != nil {
			return err
		}
		overlap, err := tx.HasOverlappingYear(ctx, tenantID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return shared.Invalid("start_date", "financial year overlaps an existing year")
		}
		year, err = tx.InsertYear(ctx, Year{TenantID: tenantID, Code: code, Name: name, StartDate: start, EndDate: end})
		if errors.Is(err, ErrDuplicateYearCode) {
			return shared.Invalidf("code", "financial year %s already exists", code)
		}
		if err != nil {
			return err
		}
		periods, err = tx.InsertPeriods(ctx, MonthlyPeriods(year.ID, start, end))
		if err != nil {
			return err
		}
		if input.MakeCurrent {
			if err := tx.ClearCurrent(ctx, tenantID); err != nil {
				return err
			}
			if err := tx.MarkCurrent(ctx, year.ID); err != nil {
				return err
			}
			year.IsCurrent = true
		}
		return nil
	})
	if err != nil {
		return Year{}, nil, err
	}
	s.record(ctx, tenantID, "year.create", "financial_year", year.ID, map[string]any{
		"code":    year.Code,
		"periods": len(periods),
	})
	return year, periods, nil
}

// SetCurrentYear moves the current flag to yearID.
func (s *Service) SetCurrentYear(ctx context.Context, tenantID uuid.UUID, yearID int64) (Year, error) {
	var year Year
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		year, err = tx.LockYear(ctx, yearID)
		if err != nil {
			return err
		}
		if year.TenantID != tenantID {
			return shared.NotFound("financial year", yearID)
		}
		if year.Status != YearStatusOpen {
			return shared.Invalidf("year_id", "financial year %s is %s", year.Code, year.Status)
		}
		if err := tx.ClearCurrent(ctx, tenantID); err != nil {
			return err
		}
		if err := tx.MarkCurrent(ctx, yearID); err != nil {
			return err
		}
		year.IsCurrent = true
		return nil
	})
	return year, err
}

// ResolvePeriod returns the open year and period accepting postings on date.
func (s *Service) ResolvePeriod(ctx context.Context, tenantID uuid.UUID, date time.Time) (Resolution, error) {
	date = shared.DateOnly(date)
	years, err := s.repo.YearsCovering(ctx, tenantID, date)
	if err != nil {
		return Resolution{}, err
	}
	year, err := SelectYear(date, years)
	if err != nil {
		return Resolution{}, err
	}
	period, err := s.repo.PeriodCovering(ctx, year.ID, date)
	if err != nil {
		return Resolution{}, err
	}
	return CheckPeriod(date, year, period)
}

// ValidateDateIsOpen fails with a calendar error when date cannot accept postings.
func (s *Service) ValidateDateIsOpen(ctx context.Context, tenantID uuid.UUID, date time.Time) error {
	_, err := s.ResolvePeriod(ctx, tenantID, date)
	return err
}

// ClosePeriod stops postings into the period once no pending documents remain.
func (s *Service) ClosePeriod(ctx context.Context, tenantID uuid.UUID, periodID int64) (Period, error) {
	period, year, err := s.owned(ctx, tenantID, periodID)
	if err != nil {
		return Period{}, err
	}
	if year.Status != YearStatusOpen {
		return Period{}, shared.YearClosed(period.EndDate, year.ID)
	}
	if !period.IsOpen {
		return period, nil
	}
	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, internalShared.FinanceLockKey(periodID), periodLockTTL)
		if errors.Is(err, cache.ErrLockHeld) {
			return Period{}, &shared.ClosingPreconditionError{Reason: "period close already in progress"}
		}
		if err != nil {
			return Period{}, err
		}
		defer func() { _ = release(context.WithoutCancel(ctx)) }()
	}
	docs, err := shared.CollectPending(ctx, s.pending, tenantID, period.StartDate, period.EndDate)
	if err != nil {
		return Period{}, err
	}
	if len(docs) > 0 {
		return Period{}, &shared.ClosingPreconditionError{
			Reason:           fmt.Sprintf("period %d has pending documents", period.PeriodIndex),
			PendingDocuments: docs,
		}
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if !locked.IsOpen {
			period = locked
			return nil
		}
		period, err = tx.SetPeriodOpen(ctx, periodID, false)
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, tenantID, "period.close", "financial_period", periodID, map[string]any{"year_id": year.ID, "index": period.PeriodIndex})
	return period, nil
}

// ReopenPeriod re-enables postings while the owning year is still open.
func (s *Service) ReopenPeriod(ctx context.Context, tenantID uuid.UUID, periodID int64) (Period, error) {
	period, _, err := s.owned(ctx, tenantID, periodID)
	if err != nil {
		return Period{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		year, err := tx.LockYear(ctx, period.YearID)
		if err != nil {
			return err
		}
		if year.Status != YearStatusOpen {
			return shared.YearClosed(period.StartDate, year.ID)
		}
		period, err = tx.SetPeriodOpen(ctx, periodID, true)
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, tenantID, "period.reopen", "financial_period", periodID, map[string]any{"year_id": period.YearID, "index": period.PeriodIndex})
	return period, nil
}

func (s *Service) GetYear(ctx context.Context, tenantID uuid.UUID, yearID int64) (Year, error) {
	year, err := s.repo.GetYear(ctx, yearID)
	if err != nil {
		return Year{}, err
	}
	if year.TenantID != tenantID {
		return Year{}, shared.NotFound("financial year", yearID)
	}
	return year, nil
}

func (s *Service) ListYears(ctx context.Context, tenantID uuid.UUID) ([]Year, error) {
	return s.repo.ListYears(ctx, tenantID)
}

func (s *Service) ListPeriods(ctx context.Context, tenantID uuid.UUID, yearID int64) ([]Period, error) {
	if _, err := s.GetYear(ctx, tenantID, yearID); err != nil {
		return nil, err
	}
	return s.repo.ListPeriods(ctx, yearID)
}

func (s *Service) owned(ctx context.Context, tenantID uuid.UUID, periodID int64) (Period, Year, error) {
	period, err := s.repo.GetPeriod(ctx, periodID)
	if err != nil {
		return Period{}, Year{}, err
	}
	year, err := s.repo.GetYear(ctx, period.YearID)
	if err != nil {
		return Period{}, Year{}, err
	}
	if year.TenantID != tenantID {
		return Period{}, Year{}, shared.NotFound("financial period", periodID)
	}
	return period, year, nil
}

func (s *Service) record(ctx context.Context, tenantID uuid.UUID, action, entity string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: tenantID,
		Actor:    internalShared.ActorFromContext(ctx),
		Action:   action,
		Entity:   entity,
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       s.now(),
	})
}
