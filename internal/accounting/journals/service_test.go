package journals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/costcenters"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/hospital-ledger/internal/shared"
)

type memoryLedger struct {
	years       map[int64]periods.Year
	periods     map[int64]periods.Period
	accounts    map[int64]accounts.Account
	costCenters map[int64]costcenters.CostCenter
	entries     map[int64]Entry
	locks       []string
	nextEntry   int64
	nextLine    int64

	failInsertLines error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		years:       map[int64]periods.Year{},
		periods:     map[int64]periods.Period{},
		accounts:    map[int64]accounts.Account{},
		costCenters: map[int64]costcenters.CostCenter{},
		entries:     map[int64]Entry{},
	}
}

func (m *memoryLedger) Get(_ context.Context, id int64) (Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, shared.NotFound("journal entry", id)
	}
	return e, nil
}

func (m *memoryLedger) List(_ context.Context, tenantID uuid.UUID, _ ListFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryLedger) FindBySource(_ context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (Entry, error) {
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.SourceModule == module && e.SourceID != nil && *e.SourceID == sourceID {
			return e, nil
		}
	}
	return Entry{}, shared.NotFound("journal entry", sourceID)
}

// WithTx restores entries and sequences when fn fails.
func (m *memoryLedger) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	entries := make(map[int64]Entry, len(m.entries))
	for id, e := range m.entries {
		e.Lines = append([]Line(nil), e.Lines...)
		entries[id] = e
	}
	nextEntry, nextLine := m.nextEntry, m.nextLine
	if err := fn(ctx, m); err != nil {
		m.entries, m.nextEntry, m.nextLine = entries, nextEntry, nextLine
		return err
	}
	return nil
}

func (m *memoryLedger) LockSource(_ context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) error {
	m.locks = append(m.locks, tenantID.String()+"|"+string(module)+"|"+sourceID)
	return nil
}

func (m *memoryLedger) YearsCovering(_ context.Context, tenantID uuid.UUID, date time.Time) ([]periods.Year, error) {
	var out []periods.Year
	for _, y := range m.years {
		if y.TenantID == tenantID && y.Covers(date) {
			out = append(out, y)
		}
	}
	return out, nil
}

func (m *memoryLedger) PeriodCoveringForShare(_ context.Context, yearID int64, date time.Time) (*periods.Period, error) {
	for _, p := range m.periods {
		if p.YearID == yearID && p.Covers(date) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memoryLedger) YearAndPeriodForShare(_ context.Context, yearID, periodID int64) (periods.Year, periods.Period, error) {
	return m.years[yearID], m.periods[periodID], nil
}

func (m *memoryLedger) AccountsByID(_ context.Context, ids []int64) (map[int64]accounts.Account, error) {
	out := map[int64]accounts.Account{}
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *memoryLedger) CostCentersByID(_ context.Context, ids []int64) (map[int64]costcenters.CostCenter, error) {
	out := map[int64]costcenters.CostCenter{}
	for _, id := range ids {
		if c, ok := m.costCenters[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memoryLedger) FindBySourceForUpdate(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (*Entry, error) {
	e, err := m.FindBySource(ctx, tenantID, module, sourceID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return &e, err
}

func (m *memoryLedger) GetForUpdate(ctx context.Context, id int64) (Entry, error) {
	return m.Get(ctx, id)
}

func (m *memoryLedger) InsertEntry(_ context.Context, e Entry) (Entry, error) {
	m.nextEntry++
	e.ID = m.nextEntry
	m.entries[e.ID] = e
	return e, nil
}

func (m *memoryLedger) UpdateEntryHeader(_ context.Context, e Entry) (Entry, error) {
	m.entries[e.ID] = e
	return e, nil
}

func (m *memoryLedger) DeleteLines(_ context.Context, entryID int64) error {
	e := m.entries[entryID]
	e.Lines = nil
	m.entries[entryID] = e
	return nil
}

func (m *memoryLedger) InsertLines(_ context.Context, entryID int64, lines []Line) ([]Line, error) {
	if m.failInsertLines != nil {
		return nil, m.failInsertLines
	}
	e := m.entries[entryID]
	for i := range lines {
		m.nextLine++
		lines[i].ID = m.nextLine
		lines[i].EntryID = entryID
	}
	e.Lines = append(e.Lines, lines...)
	m.entries[entryID] = e
	return lines, nil
}

func (m *memoryLedger) DeleteEntry(_ context.Context, entryID int64) error {
	delete(m.entries, entryID)
	return nil
}

type recordingAudit struct{ actions []string }

func (r *recordingAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	r.actions = append(r.actions, log.Action)
	return nil
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

type recordingMetrics struct{ results []string }

func (r *recordingMetrics) ObservePosting(module, result string) {
	r.results = append(r.results, module+":"+result)
}

type fixture struct {
	ledger  *memoryLedger
	svc     *Service
	audit   *recordingAudit
	cache   *countingCache
	metrics *recordingMetrics
	tenant  uuid.UUID
	cash    int64
	revenue int64
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger := newMemoryLedger()
	tenant := uuid.New()
	ledger.years[1] = periods.Year{ID: 1, TenantID: tenant, Code: "FY2024", StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31), Status: periods.YearStatusOpen}
	for i, p := range periods.MonthlyPeriods(1, date(2024, 1, 1), date(2024, 12, 31)) {
		p.ID = int64(i + 1)
		ledger.periods[p.ID] = p
	}
	ledger.accounts[10] = accounts.Account{ID: 10, TenantID: tenant, Code: "1100", Type: accounts.AccountTypeAsset, IsActive: true}
	ledger.accounts[20] = accounts.Account{ID: 20, TenantID: tenant, Code: "4100", Type: accounts.AccountTypeRevenue, IsActive: true}
	ledger.accounts[30] = accounts.Account{ID: 30, TenantID: tenant, Code: "1900", Type: accounts.AccountTypeAsset, IsActive: false}
	ledger.accounts[40] = accounts.Account{ID: 40, TenantID: uuid.New(), Code: "1100", Type: accounts.AccountTypeAsset, IsActive: true}
	ledger.costCenters[5] = costcenters.CostCenter{ID: 5, TenantID: tenant, Code: "OPD", IsActive: true}
	ledger.costCenters[6] = costcenters.CostCenter{ID: 6, TenantID: uuid.New(), Code: "OPD", IsActive: true}

	audit := &recordingAudit{}
	cache := &countingCache{}
	metrics := &recordingMetrics{}
	svc := NewService(ledger, audit, cache, metrics, nil)
	return &fixture{ledger: ledger, svc: svc, audit: audit, cache: cache, metrics: metrics, tenant: tenant, cash: 10, revenue: 20}
}

func (f *fixture) request(d time.Time, source *string, value string) PostingRequest {
	return PostingRequest{
		TenantID:     f.tenant,
		EntryDate:    d,
		Description:  "Outpatient invoice",
		SourceModule: SourceBillingInvoice,
		SourceID:     source,
		CreatedBy:    "billing",
		Lines: []PostingLine{
			{AccountID: f.cash, Debit: amount(value)},
			{AccountID: f.revenue, Credit: amount(value)},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidateRejectsMalformedRequests(t *testing.T) {
	f := newFixture(t)
	base := f.request(date(2024, 3, 1), nil, "100")

	unbalanced := base
	unbalanced.Lines = []PostingLine{{AccountID: 10, Debit: amount("100")}, {AccountID: 20, Credit: amount("99.90")}}
	err := unbalanced.Normalize().Validate()
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.ErrorIs(t, err, shared.ErrValidation)

	single := base
	single.Lines = base.Lines[:1]
	require.ErrorIs(t, single.Validate(), shared.ErrValidation)

	both := base
	both.Lines = []PostingLine{{AccountID: 10, Debit: amount("5"), Credit: amount("5")}, {AccountID: 20, Credit: amount("0")}}
	require.ErrorIs(t, both.Validate(), shared.ErrValidation)

	negative := base
	negative.Lines = []PostingLine{{AccountID: 10, Debit: amount("-5")}, {AccountID: 20, Credit: amount("-5")}}
	require.ErrorIs(t, negative.Validate(), shared.ErrValidation)

	zero := base
	zero.Lines = []PostingLine{{AccountID: 10, Debit: amount("5")}, {AccountID: 20, Credit: amount("5")}, {AccountID: 20}}
	require.ErrorIs(t, zero.Validate(), shared.ErrValidation)

	unknown := base
	unknown.SourceModule = "SALES"
	require.ErrorIs(t, unknown.Validate(), shared.ErrValidation)

	rounded := base
	rounded.Lines = []PostingLine{{AccountID: 10, Debit: amount("100.0004")}, {AccountID: 20, Credit: amount("100")}}
	require.NoError(t, rounded.Normalize().Validate())
}

func TestPostCreatesThenReplacesBySource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := ptr("INV-2024-0001")

	first, err := f.svc.Post(ctx, f.request(date(2024, 3, 10), source, "250.00"))
	require.NoError(t, err)
	require.Equal(t, int64(3), first.PeriodID)
	require.Len(t, first.Lines, 2)

	second, err := f.svc.Post(ctx, f.request(date(2024, 4, 2), source, "225.00"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, int64(4), second.PeriodID)
	require.Len(t, f.ledger.entries, 1)

	stored := f.ledger.entries[first.ID]
	require.Len(t, stored.Lines, 2)
	require.True(t, stored.Lines[0].Debit.Equal(amount("225")))
	require.Equal(t, []string{"journal.post", "journal.replace"}, f.audit.actions)
	require.Equal(t, 2, f.cache.bumps)
	require.Equal(t, []string{"BILLING_INVOICE:created", "BILLING_INVOICE:replaced"}, f.metrics.results)
	require.Len(t, f.ledger.locks, 2)

	found, err := f.svc.FindBySource(ctx, f.tenant, SourceBillingInvoice, "INV-2024-0001")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
}

func TestPostWithoutSourceAlwaysInserts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Post(ctx, f.request(date(2024, 3, 10), nil, "10"))
	require.NoError(t, err)
	_, err = f.svc.Post(ctx, f.request(date(2024, 3, 10), nil, "10"))
	require.NoError(t, err)
	require.Len(t, f.ledger.entries, 2)
	require.Empty(t, f.ledger.locks)
}

func TestPostRejectsClosedCalendar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Post(ctx, f.request(date(2025, 1, 5), nil, "10"))
	require.ErrorIs(t, err, shared.ErrNoCoveringPeriod)

	march := f.ledger.periods[3]
	march.IsOpen = false
	f.ledger.periods[3] = march
	_, err = f.svc.Post(ctx, f.request(date(2024, 3, 15), nil, "10"))
	var cal *shared.CalendarError
	require.True(t, errors.As(err, &cal))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	require.Equal(t, int64(3), cal.PeriodID)

	year := f.ledger.years[1]
	year.Status = periods.YearStatusClosed
	f.ledger.years[1] = year
	_, err = f.svc.Post(ctx, f.request(date(2024, 6, 15), nil, "10"))
	require.ErrorIs(t, err, shared.ErrYearClosed)
	require.Empty(t, f.ledger.entries)
	require.Contains(t, f.metrics.results, "BILLING_INVOICE:calendar_rejected")
}

func TestReplaceFailsWhenOriginalPeriodClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := ptr("INV-7")

	first, err := f.svc.Post(ctx, f.request(date(2024, 2, 10), source, "80"))
	require.NoError(t, err)

	feb := f.ledger.periods[2]
	feb.IsOpen = false
	f.ledger.periods[2] = feb

	_, err = f.svc.Post(ctx, f.request(date(2024, 5, 1), source, "60"))
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	stored := f.ledger.entries[first.ID]
	require.True(t, stored.Lines[0].Debit.Equal(amount("80")))
	require.Equal(t, int64(2), stored.PeriodID)
}

func TestFailedReplaceKeepsOriginalEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source := ptr("INV-42")

	first, err := f.svc.Post(ctx, f.request(date(2024, 3, 10), source, "250.00"))
	require.NoError(t, err)
	original := f.ledger.entries[first.ID]

	f.ledger.failInsertLines = errors.New("insert lines: connection reset")
	replacement := f.request(date(2024, 4, 2), source, "99.00")
	replacement.Description = "Corrected invoice"
	_, err = f.svc.Post(ctx, replacement)
	require.ErrorIs(t, err, f.ledger.failInsertLines)

	require.Len(t, f.ledger.entries, 1)
	stored := f.ledger.entries[first.ID]
	require.Equal(t, original.PeriodID, stored.PeriodID)
	require.Equal(t, original.EntryDate, stored.EntryDate)
	require.Equal(t, original.Description, stored.Description)
	require.Equal(t, original.Lines, stored.Lines)
	require.True(t, stored.Lines[0].Debit.Equal(amount("250")))
	require.Equal(t, []string{"journal.post"}, f.audit.actions)
	require.Equal(t, 1, f.cache.bumps)
	require.Equal(t, "BILLING_INVOICE:failed", f.metrics.results[len(f.metrics.results)-1])

	f.ledger.failInsertLines = nil
	second, err := f.svc.Post(ctx, replacement)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, f.ledger.entries[first.ID].Lines[0].Debit.Equal(amount("99")))
}

func TestPostRejectsForeignOrInactiveReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	foreign := f.request(date(2024, 3, 1), nil, "10")
	foreign.Lines[0].AccountID = 40
	_, err := f.svc.Post(ctx, foreign)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "lines[0].account_id", verr.Field)

	inactive := f.request(date(2024, 3, 1), nil, "10")
	inactive.Lines[0].AccountID = 30
	_, err = f.svc.Post(ctx, inactive)
	require.ErrorIs(t, err, shared.ErrValidation)

	missing := f.request(date(2024, 3, 1), nil, "10")
	missing.Lines[1].AccountID = 999
	_, err = f.svc.Post(ctx, missing)
	require.ErrorIs(t, err, shared.ErrValidation)

	foreignCC := f.request(date(2024, 3, 1), nil, "10")
	foreignCC.Lines[1].CostCenterID = ptr(int64(6))
	_, err = f.svc.Post(ctx, foreignCC)
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "lines[1].cost_center_id", verr.Field)

	ownCC := f.request(date(2024, 3, 1), nil, "10")
	ownCC.Lines[1].CostCenterID = ptr(int64(5))
	entry, err := f.svc.Post(ctx, ownCC)
	require.NoError(t, err)
	require.Equal(t, int64(5), *entry.Lines[1].CostCenterID)
}

func TestPostRejectsReservedClosingSource(t *testing.T) {
	f := newFixture(t)
	req := f.request(date(2024, 12, 31), ptr("year:1"), "10")
	req.SourceModule = SourceClosing
	_, err := f.svc.Post(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteOnlyManualEntriesInOpenPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	billing, err := f.svc.Post(ctx, f.request(date(2024, 3, 1), ptr("INV-1"), "10"))
	require.NoError(t, err)
	err = f.svc.Delete(ctx, f.tenant, billing.ID, "clerk")
	require.ErrorIs(t, err, shared.ErrValidation)

	manualReq := f.request(date(2024, 3, 1), nil, "10")
	manualReq.SourceModule = SourceManual
	manual, err := f.svc.Post(ctx, manualReq)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Delete(ctx, uuid.New(), manual.ID, "clerk"), shared.ErrNotFound)

	march := f.ledger.periods[3]
	march.IsOpen = false
	f.ledger.periods[3] = march
	require.ErrorIs(t, f.svc.Delete(ctx, f.tenant, manual.ID, "clerk"), shared.ErrPeriodClosed)

	march.IsOpen = true
	f.ledger.periods[3] = march
	require.NoError(t, f.svc.Delete(ctx, f.tenant, manual.ID, "clerk"))
	_, err = f.svc.Get(ctx, f.tenant, manual.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Contains(t, f.audit.actions, "journal.delete")
}
