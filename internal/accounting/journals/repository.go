package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/costcenters"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	Get(ctx context.Context, id int64) (Entry, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Entry, error)
	FindBySource(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a posting transaction.
// Calendar lookups are duplicated from the periods repository so they run on the same snapshot.
type TxRepository interface {
	LockSource(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) error
	YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]periods.Year, error)
	PeriodCoveringForShare(ctx context.Context, yearID int64, date time.Time) (*periods.Period, error)
	YearAndPeriodForShare(ctx context.Context, yearID, periodID int64) (periods.Year, periods.Period, error)
	AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	CostCentersByID(ctx context.Context, ids []int64) (map[int64]costcenters.CostCenter, error)
	FindBySourceForUpdate(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (*Entry, error)
	GetForUpdate(ctx context.Context, id int64) (Entry, error)
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntryHeader(ctx context.Context, entry Entry) (Entry, error)
	DeleteLines(ctx context.Context, entryID int64) error
	InsertLines(ctx context.Context, entryID int64, lines []Line) ([]Line, error)
	DeleteEntry(ctx context.Context, entryID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, tenant_id, year_id, period_id, entry_date, description, source_module, source_id, created_by, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.TenantID, &e.YearID, &e.PeriodID, &e.EntryDate, &e.Description, &e.SourceModule, &e.SourceID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadLines(ctx context.Context, q querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, cost_center_id, debit, credit, description
FROM accounting_entry_lines WHERE entry_id=$1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.CostCenterID, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func getWithLines(ctx context.Context, q querier, query string, args ...any) (Entry, error) {
	entry, err := scanEntry(q.QueryRow(ctx, query, args...))
	if err != nil {
		return Entry{}, err
	}
	entry.Lines, err = loadLines(ctx, q, entry.ID)
	return entry, err
}

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	entry, err := getWithLines(ctx, r.db, `SELECT `+entryColumns+` FROM accounting_entries WHERE id=$1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.NotFound("journal entry", id)
	}
	return entry, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]Entry, error) {
	filter = filter.normalized()
	clauses := []string{"tenant_id=$1"}
	args := []any{tenantID}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("entry_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("entry_date <= $%d", len(args)))
	}
	if filter.SourceModule != "" {
		args = append(args, filter.SourceModule)
		clauses = append(clauses, fmt.Sprintf("source_module = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM accounting_entries WHERE %s ORDER BY entry_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		entryColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) FindBySource(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (Entry, error) {
	entry, err := getWithLines(ctx, r.db, `SELECT `+entryColumns+` FROM accounting_entries
WHERE tenant_id=$1 AND source_module=$2 AND source_id=$3`, tenantID, module, sourceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.NotFound("journal entry", string(module)+":"+sourceID)
	}
	return entry, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithLockingTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx))
	})
}

// NewTxRepository binds the journal queries to an open transaction owned by the caller.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) LockSource(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) error {
	key := tenantID.String() + "|" + string(module) + "|" + sourceID
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}

func (r *txRepository) YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]periods.Year, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+periods.YearColumns+` FROM financial_years
WHERE tenant_id=$1 AND start_date <= $2 AND end_date >= $2 ORDER BY start_date FOR SHARE`, tenantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []periods.Year
	for rows.Next() {
		y, err := periods.ScanYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func (r *txRepository) PeriodCoveringForShare(ctx context.Context, yearID int64, date time.Time) (*periods.Period, error) {
	p, err := periods.ScanPeriod(r.tx.QueryRow(ctx, `SELECT `+periods.PeriodColumns+` FROM financial_periods
WHERE year_id=$1 AND start_date <= $2 AND end_date >= $2 ORDER BY period_index LIMIT 1 FOR SHARE`, yearID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *txRepository) YearAndPeriodForShare(ctx context.Context, yearID, periodID int64) (periods.Year, periods.Period, error) {
	y, err := periods.ScanYear(r.tx.QueryRow(ctx, `SELECT `+periods.YearColumns+` FROM financial_years WHERE id=$1 FOR SHARE`, yearID))
	if err != nil {
		return periods.Year{}, periods.Period{}, err
	}
	p, err := periods.ScanPeriod(r.tx.QueryRow(ctx, `SELECT `+periods.PeriodColumns+` FROM financial_periods WHERE id=$1 FOR SHARE`, periodID))
	if err != nil {
		return periods.Year{}, periods.Period{}, err
	}
	return y, p, nil
}

func (r *txRepository) AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, tenant_id, code, name, type, parent_id, is_active, created_at, updated_at
FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]accounts.Account, len(ids))
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) CostCentersByID(ctx context.Context, ids []int64) (map[int64]costcenters.CostCenter, error) {
	out := make(map[int64]costcenters.CostCenter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.tx.Query(ctx, `SELECT id, tenant_id, code, name, type, is_active, created_at, updated_at
FROM cost_centers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c costcenters.CostCenter
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Type, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (r *txRepository) FindBySourceForUpdate(ctx context.Context, tenantID uuid.UUID, module SourceModule, sourceID string) (*Entry, error) {
	entry, err := getWithLines(ctx, r.tx, `SELECT `+entryColumns+` FROM accounting_entries
WHERE tenant_id=$1 AND source_module=$2 AND source_id=$3 FOR UPDATE`, tenantID, module, sourceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, id int64) (Entry, error) {
	entry, err := getWithLines(ctx, r.tx, `SELECT `+entryColumns+` FROM accounting_entries WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.NotFound("journal entry", id)
	}
	return entry, err
}

func (r *txRepository) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	return scanEntry(r.tx.QueryRow(ctx, `INSERT INTO accounting_entries
(tenant_id, year_id, period_id, entry_date, description, source_module, source_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+entryColumns,
		e.TenantID, e.YearID, e.PeriodID, e.EntryDate, e.Description, e.SourceModule, e.SourceID, e.CreatedBy))
}

func (r *txRepository) UpdateEntryHeader(ctx context.Context, e Entry) (Entry, error) {
	out, err := scanEntry(r.tx.QueryRow(ctx, `UPDATE accounting_entries
SET year_id=$2, period_id=$3, entry_date=$4, description=$5, created_by=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+entryColumns, e.ID, e.YearID, e.PeriodID, e.EntryDate, e.Description, e.CreatedBy))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.NotFound("journal entry", e.ID)
	}
	return out, err
}

func (r *txRepository) DeleteLines(ctx context.Context, entryID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM accounting_entry_lines WHERE entry_id=$1`, entryID)
	return err
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		err := r.tx.QueryRow(ctx, `INSERT INTO accounting_entry_lines (entry_id, account_id, cost_center_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`, entryID, line.AccountID, line.CostCenterID, line.Debit, line.Credit, line.Description).Scan(&line.ID)
		if err != nil {
			return nil, err
		}
		line.EntryID = entryID
		out = append(out, line)
	}
	return out, nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounting_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("journal entry", entryID)
	}
	return nil
}
