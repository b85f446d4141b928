package close

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// Repository opens the closing transaction. WithReadTx backs previews.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	WithReadTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the closing view of one transaction. Entry and line inserts
// are the journal poster's own statements.
type TxRepository interface {
	GetYear(ctx context.Context, id int64) (periods.Year, error)
	LockYear(ctx context.Context, id int64) (periods.Year, error)
	OpenPeriodIndexes(ctx context.Context, yearID int64) ([]int, error)
	IncomeBalances(ctx context.Context, yearID int64) ([]IncomeBalance, error)
	AccountsByID(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	PeriodCoveringForShare(ctx context.Context, yearID int64, date time.Time) (*periods.Period, error)
	InsertEntry(ctx context.Context, entry journals.Entry) (journals.Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []journals.Line) ([]journals.Line, error)
	MarkYearClosed(ctx context.Context, yearID int64, actor string, at time.Time) (periods.Year, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithLockingTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, newTxRepository(tx))
	})
}

func (r *repository) WithReadTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, newTxRepository(tx))
	})
}

type txRepository struct {
	journals.TxRepository
	tx pgx.Tx
}

func newTxRepository(tx pgx.Tx) *txRepository {
	return &txRepository{TxRepository: journals.NewTxRepository(tx), tx: tx}
}

func (r *txRepository) GetYear(ctx context.Context, id int64) (periods.Year, error) {
	return r.year(ctx, `SELECT `+periods.YearColumns+` FROM financial_years WHERE id=$1`, id)
}

func (r *txRepository) LockYear(ctx context.Context, id int64) (periods.Year, error) {
	return r.year(ctx, `SELECT `+periods.YearColumns+` FROM financial_years WHERE id=$1 FOR UPDATE`, id)
}

func (r *txRepository) year(ctx context.Context, sql string, id int64) (periods.Year, error) {
	y, err := periods.ScanYear(r.tx.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return periods.Year{}, shared.NotFound("financial year", id)
	}
	return y, err
}

func (r *txRepository) OpenPeriodIndexes(ctx context.Context, yearID int64) ([]int, error) {
	rows, err := r.tx.Query(ctx, `SELECT period_index FROM financial_periods
WHERE year_id=$1 AND is_open ORDER BY period_index`, yearID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *txRepository) IncomeBalances(ctx context.Context, yearID int64) ([]IncomeBalance, error) {
	rows, err := r.tx.Query(ctx, `SELECT l.account_id, a.type, l.cost_center_id,
	COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.year_id=$1 AND a.type IN ('REVENUE','CONTRA_REVENUE','EXPENSE')
GROUP BY l.account_id, a.type, l.cost_center_id
ORDER BY l.account_id, l.cost_center_id NULLS FIRST`, yearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []IncomeBalance
	for rows.Next() {
		var b IncomeBalance
		if err := rows.Scan(&b.AccountID, &b.AccountType, &b.CostCenterID, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *txRepository) MarkYearClosed(ctx context.Context, yearID int64, actor string, at time.Time) (periods.Year, error) {
	return periods.ScanYear(r.tx.QueryRow(ctx, `UPDATE financial_years
SET status='CLOSED', is_current=FALSE, closed_at=$2, closed_by=$3, updated_at=NOW()
WHERE id=$1 RETURNING `+periods.YearColumns, yearID, at, actor))
}
