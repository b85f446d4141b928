package periods

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

type memoryRepo struct {
	years      map[int64]Year
	periods    map[int64]Period
	nextYear   int64
	nextPeriod int64
	calls      []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{years: map[int64]Year{}, periods: map[int64]Period{}}
}

func (m *memoryRepo) ListYears(_ context.Context, tenantID uuid.UUID) ([]Year, error) {
	var out []Year
	for _, y := range m.years {
		if y.TenantID == tenantID {
			out = append(out, y)
		}
	}
	return out, nil
}

func (m *memoryRepo) GetYear(_ context.Context, id int64) (Year, error) {
	y, ok := m.years[id]
	if !ok {
		return Year{}, shared.NotFound("financial year", id)
	}
	return y, nil
}

func (m *memoryRepo) YearsCovering(_ context.Context, tenantID uuid.UUID, date time.Time) ([]Year, error) {
	var out []Year
	for _, y := range m.years {
		if y.TenantID == tenantID && y.Covers(date) {
			out = append(out, y)
		}
	}
	return out, nil
}

func (m *memoryRepo) PeriodCovering(_ context.Context, yearID int64, date time.Time) (*Period, error) {
	for _, p := range m.periods {
		if p.YearID == yearID && p.Covers(date) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) GetPeriod(_ context.Context, id int64) (Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return Period{}, shared.NotFound("financial period", id)
	}
	return p, nil
}

func (m *memoryRepo) ListPeriods(_ context.Context, yearID int64) ([]Period, error) {
	var out []Period
	for i := int64(1); i <= m.nextPeriod; i++ {
		if p, ok := m.periods[i]; ok && p.YearID == yearID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) LockCalendar(_ context.Context, tenantID uuid.UUID) error {
	m.calls = append(m.calls, "lock:"+tenantID.String())
	return nil
}

func (m *memoryRepo) HasOverlappingYear(_ context.Context, tenantID uuid.UUID, start, end time.Time) (bool, error) {
	m.calls = append(m.calls, "overlap")
	for _, y := range m.years {
		if y.TenantID == tenantID && Overlaps(start, end, y.StartDate, y.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) InsertYear(_ context.Context, y Year) (Year, error) {
	for _, existing := range m.years {
		if existing.TenantID == y.TenantID && existing.Code == y.Code {
			return Year{}, ErrDuplicateYearCode
		}
	}
	m.nextYear++
	y.ID = m.nextYear
	y.Status = YearStatusOpen
	m.years[y.ID] = y
	return y, nil
}

func (m *memoryRepo) InsertPeriods(_ context.Context, periods []Period) ([]Period, error) {
	out := make([]Period, 0, len(periods))
	for _, p := range periods {
		m.nextPeriod++
		p.ID = m.nextPeriod
		m.periods[p.ID] = p
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) LockYear(ctx context.Context, id int64) (Year, error) {
	return m.GetYear(ctx, id)
}

func (m *memoryRepo) LockPeriod(ctx context.Context, id int64) (Period, error) {
	return m.GetPeriod(ctx, id)
}

func (m *memoryRepo) ClearCurrent(_ context.Context, tenantID uuid.UUID) error {
	for id, y := range m.years {
		if y.TenantID == tenantID {
			y.IsCurrent = false
			m.years[id] = y
		}
	}
	return nil
}

func (m *memoryRepo) MarkCurrent(_ context.Context, yearID int64) error {
	y := m.years[yearID]
	y.IsCurrent = true
	m.years[yearID] = y
	return nil
}

func (m *memoryRepo) SetPeriodOpen(_ context.Context, periodID int64, open bool) (Period, error) {
	p := m.periods[periodID]
	p.IsOpen = open
	m.periods[periodID] = p
	return p, nil
}

type stubPending struct {
	docs []shared.PendingDocument
}

func (s stubPending) PendingDocuments(_ context.Context, _ uuid.UUID, from, to time.Time) ([]shared.PendingDocument, error) {
	var out []shared.PendingDocument
	for _, d := range s.docs {
		if shared.WithinDates(d.Date, from, to) {
			out = append(out, d)
		}
	}
	return out, nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	r.actions = append(r.actions, log.Action)
	return nil
}

func TestCreateYearGeneratesPeriodsAndRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit, nil)
	tenant := uuid.New()

	year, periods, err := svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31), MakeCurrent: true})
	require.NoError(t, err)
	require.True(t, year.IsCurrent)
	require.Len(t, periods, 12)
	require.Equal(t, []string{"year.create"}, audit.actions)

	_, _, err = svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2024B", StartDate: day(2024, 7, 1), EndDate: day(2025, 6, 30)})
	require.ErrorIs(t, err, shared.ErrValidation)

	next, _, err := svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2025", StartDate: day(2025, 1, 1), EndDate: day(2025, 12, 31), MakeCurrent: true})
	require.NoError(t, err)
	require.True(t, repo.years[next.ID].IsCurrent)
	require.False(t, repo.years[year.ID].IsCurrent)

	_, _, err = svc.CreateYear(ctx, tenant, CreateYearInput{Code: "BAD", StartDate: day(2026, 2, 1), EndDate: day(2026, 1, 1)})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateYearLocksCalendarBeforeOverlapCheck(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	tenant := uuid.New()

	_, _, err := svc.CreateYear(context.Background(), tenant, CreateYearInput{Code: "FY2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31)})
	require.NoError(t, err)
	require.Equal(t, []string{"lock:" + tenant.String(), "overlap"}, repo.calls)
}

func TestResolvePeriodErrors(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	tenant := uuid.New()

	_, err := svc.ResolvePeriod(ctx, tenant, day(2024, 5, 5))
	require.ErrorIs(t, err, shared.ErrNoCoveringPeriod)

	year, periods, err := svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31)})
	require.NoError(t, err)

	res, err := svc.ResolvePeriod(ctx, tenant, time.Date(2024, 5, 5, 17, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 5, res.Period.PeriodIndex)
	require.NoError(t, svc.ValidateDateIsOpen(ctx, tenant, day(2024, 5, 31)))

	_, err = svc.ResolvePeriod(ctx, uuid.New(), day(2024, 5, 5))
	require.ErrorIs(t, err, shared.ErrNoCoveringPeriod)

	_, err = svc.ClosePeriod(ctx, tenant, periods[4].ID)
	require.NoError(t, err)
	_, err = svc.ResolvePeriod(ctx, tenant, day(2024, 5, 5))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)

	y := repo.years[year.ID]
	y.Status = YearStatusClosed
	repo.years[year.ID] = y
	err = svc.ValidateDateIsOpen(ctx, tenant, day(2024, 8, 1))
	require.ErrorIs(t, err, shared.ErrYearClosed)

	y.Status = YearStatusArchived
	repo.years[year.ID] = y
	err = svc.ValidateDateIsOpen(ctx, tenant, day(2024, 8, 1))
	require.ErrorIs(t, err, shared.ErrNoCoveringPeriod)
}

func TestClosePeriodRequiresNoPendingDocuments(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	pending := stubPending{docs: []shared.PendingDocument{{Source: "billing", Reference: "INV-0042", Date: day(2024, 2, 14), Status: "DRAFT"}}}
	svc := NewService(repo, nil, nil, pending)
	tenant := uuid.New()

	_, periods, err := svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31)})
	require.NoError(t, err)

	_, err = svc.ClosePeriod(ctx, tenant, periods[1].ID)
	var pre *shared.ClosingPreconditionError
	require.True(t, errors.As(err, &pre))
	require.Len(t, pre.PendingDocuments, 1)
	require.Equal(t, "INV-0042", pre.PendingDocuments[0].Reference)
	require.True(t, repo.periods[periods[1].ID].IsOpen)

	closed, err := svc.ClosePeriod(ctx, tenant, periods[0].ID)
	require.NoError(t, err)
	require.False(t, closed.IsOpen)

	_, err = svc.ClosePeriod(ctx, uuid.New(), periods[0].ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReopenPeriodOnlyWhileYearOpen(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	tenant := uuid.New()

	year, periods, err := svc.CreateYear(ctx, tenant, CreateYearInput{Code: "FY2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31)})
	require.NoError(t, err)
	_, err = svc.ClosePeriod(ctx, tenant, periods[0].ID)
	require.NoError(t, err)

	reopened, err := svc.ReopenPeriod(ctx, tenant, periods[0].ID)
	require.NoError(t, err)
	require.True(t, reopened.IsOpen)

	y := repo.years[year.ID]
	y.Status = YearStatusClosed
	repo.years[year.ID] = y
	_, err = svc.ReopenPeriod(ctx, tenant, periods[0].ID)
	require.ErrorIs(t, err, shared.ErrYearClosed)

	_, err = svc.SetCurrentYear(ctx, tenant, year.ID)
	require.ErrorIs(t, err, shared.ErrValidation)
}
