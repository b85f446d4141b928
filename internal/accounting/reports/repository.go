package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// BalanceFilter selects lines for aggregation. Nil fields do not filter.
type BalanceFilter struct {
	From         *time.Time
	To           *time.Time
	CostCenterID *int64
}

// UnbalancedEntry is an entry whose lines do not net to zero.
type UnbalancedEntry struct {
	EntryID int64           `json:"entry_id"`
	Lines   int             `json:"lines"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// Reader queries one read-only snapshot.
type Reader interface {
	Balances(ctx context.Context, tenantID uuid.UUID, filter BalanceFilter) ([]AccountBalance, error)
	YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]periods.Year, error)
	UnbalancedEntries(ctx context.Context, tenantID uuid.UUID) ([]UnbalancedEntry, error)
}

type Repository interface {
	Snapshot(ctx context.Context, fn func(context.Context, Reader) error) error
	// TenantsWithOpenYear lists tenants whose current financial year is OPEN.
	TenantsWithOpenYear(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type reader struct {
	tx pgx.Tx
}

func (r *repository) Snapshot(ctx context.Context, fn func(context.Context, Reader) error) error {
	return db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &reader{tx: tx})
	})
}

func (r *repository) TenantsWithOpenYear(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT tenant_id FROM financial_years WHERE is_current AND status='OPEN' ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *reader) Balances(ctx context.Context, tenantID uuid.UUID, filter BalanceFilter) ([]AccountBalance, error) {
	rows, err := r.tx.Query(ctx, `SELECT a.id, a.code, a.name, a.type, COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.tenant_id = $1
  AND ($2::date IS NULL OR e.entry_date >= $2)
  AND ($3::date IS NULL OR e.entry_date <= $3)
  AND ($4::bigint IS NULL OR l.cost_center_id = $4)
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`, tenantID, filter.From, filter.To, filter.CostCenterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *reader) YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]periods.Year, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+periods.YearColumns+` FROM financial_years
WHERE tenant_id=$1 AND start_date <= $2 AND end_date >= $2 ORDER BY start_date`, tenantID, date)
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

func (r *reader) UnbalancedEntries(ctx context.Context, tenantID uuid.UUID) ([]UnbalancedEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT e.id, COUNT(l.id), COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM accounting_entries e
LEFT JOIN accounting_entry_lines l ON l.entry_id = e.id
WHERE e.tenant_id = $1
GROUP BY e.id
HAVING COUNT(l.id) < 2 OR ABS(COALESCE(SUM(l.debit),0) - COALESCE(SUM(l.credit),0)) > 0.001
ORDER BY e.id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UnbalancedEntry
	for rows.Next() {
		var u UnbalancedEntry
		if err := rows.Scan(&u.EntryID, &u.Lines, &u.Debit, &u.Credit); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
