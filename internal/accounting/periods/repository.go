package periods

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

var ErrDuplicateYearCode = errors.New("periods: duplicate year code")

// Repository provides calendar reads and transactional writes.
type Repository interface {
	ListYears(ctx context.Context, tenantID uuid.UUID) ([]Year, error)
	GetYear(ctx context.Context, id int64) (Year, error)
	YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]Year, error)
	PeriodCovering(ctx context.Context, yearID int64, date time.Time) (*Period, error)
	GetPeriod(ctx context.Context, id int64) (Period, error)
	ListPeriods(ctx context.Context, yearID int64) ([]Period, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	LockCalendar(ctx context.Context, tenantID uuid.UUID) error
	HasOverlappingYear(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (bool, error)
	InsertYear(ctx context.Context, year Year) (Year, error)
	InsertPeriods(ctx context.Context, periods []Period) ([]Period, error)
	LockYear(ctx context.Context, id int64) (Year, error)
	LockPeriod(ctx context.Context, id int64) (Period, error)
	ClearCurrent(ctx context.Context, tenantID uuid.UUID) error
	MarkCurrent(ctx context.Context, yearID int64) error
	SetPeriodOpen(ctx context.Context, periodID int64, open bool) (Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// YearColumns and PeriodColumns match ScanYear and ScanPeriod; other packages
// reading the calendar inside their own transactions reuse them.
const (
	YearColumns   = `id, tenant_id, code, name, start_date, end_date, status, is_current, closed_at, closed_by, created_at`
	PeriodColumns = `id, year_id, period_index, start_date, end_date, is_open, closed_at`
)

func ScanYear(row pgx.Row) (Year, error) {
	var y Year
	err := row.Scan(&y.ID, &y.TenantID, &y.Code, &y.Name, &y.StartDate, &y.EndDate, &y.Status, &y.IsCurrent, &y.ClosedAt, &y.ClosedBy, &y.CreatedAt)
	return y, err
}

func ScanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.YearID, &p.PeriodIndex, &p.StartDate, &p.EndDate, &p.IsOpen, &p.ClosedAt)
	return p, err
}

func collectYears(rows pgx.Rows) ([]Year, error) {
	defer rows.Close()
	var out []Year
	for rows.Next() {
		y, err := ScanYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func collectPeriods(rows pgx.Rows) ([]Period, error) {
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := ScanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) ListYears(ctx context.Context, tenantID uuid.UUID) ([]Year, error) {
	rows, err := r.db.Query(ctx, `SELECT `+YearColumns+` FROM financial_years WHERE tenant_id=$1 ORDER BY start_date DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectYears(rows)
}

func (r *repository) GetYear(ctx context.Context, id int64) (Year, error) {
	y, err := ScanYear(r.db.QueryRow(ctx, `SELECT `+YearColumns+` FROM financial_years WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, shared.NotFound("financial year", id)
	}
	return y, err
}

func (r *repository) YearsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]Year, error) {
	rows, err := r.db.Query(ctx, `SELECT `+YearColumns+` FROM financial_years
WHERE tenant_id=$1 AND start_date <= $2 AND end_date >= $2 ORDER BY start_date`, tenantID, date)
	if err != nil {
		return nil, err
	}
	return collectYears(rows)
}

func (r *repository) PeriodCovering(ctx context.Context, yearID int64, date time.Time) (*Period, error) {
	p, err := ScanPeriod(r.db.QueryRow(ctx, `SELECT `+PeriodColumns+` FROM financial_periods
WHERE year_id=$1 AND start_date <= $2 AND end_date >= $2 ORDER BY period_index LIMIT 1`, yearID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetPeriod(ctx context.Context, id int64) (Period, error) {
	p, err := ScanPeriod(r.db.QueryRow(ctx, `SELECT `+PeriodColumns+` FROM financial_periods WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.NotFound("financial period", id)
	}
	return p, err
}

func (r *repository) ListPeriods(ctx context.Context, yearID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+PeriodColumns+` FROM financial_periods WHERE year_id=$1 ORDER BY period_index`, yearID)
	if err != nil {
		return nil, err
	}
	return collectPeriods(rows)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithLockingTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// LockCalendar serialises year creation per tenant until the transaction ends.
func (r *txRepository) LockCalendar(ctx context.Context, tenantID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "calendar|"+tenantID.String())
	return err
}

func (r *txRepository) HasOverlappingYear(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM financial_years
WHERE tenant_id=$1 AND start_date <= $3 AND end_date >= $2)`, tenantID, start, end).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertYear(ctx context.Context, y Year) (Year, error) {
	out, err := ScanYear(r.tx.QueryRow(ctx, `INSERT INTO financial_years (tenant_id, code, name, start_date, end_date, status, is_current)
VALUES ($1,$2,$3,$4,$5,'OPEN',FALSE) RETURNING `+YearColumns, y.TenantID, y.Code, y.Name, y.StartDate, y.EndDate))
	if db.IsUniqueViolation(err, "uq_financial_years_tenant_code") {
		return Year{}, ErrDuplicateYearCode
	}
	return out, err
}

func (r *txRepository) InsertPeriods(ctx context.Context, periods []Period) ([]Period, error) {
	out := make([]Period, 0, len(periods))
	for _, p := range periods {
		inserted, err := ScanPeriod(r.tx.QueryRow(ctx, `INSERT INTO financial_periods (year_id, period_index, start_date, end_date, is_open)
VALUES ($1,$2,$3,$4,$5) RETURNING `+PeriodColumns, p.YearID, p.PeriodIndex, p.StartDate, p.EndDate, p.IsOpen))
		if err != nil {
			return nil, err
		}
		out = append(out, inserted)
	}
	return out, nil
}

func (r *txRepository) LockYear(ctx context.Context, id int64) (Year, error) {
	y, err := ScanYear(r.tx.QueryRow(ctx, `SELECT `+YearColumns+` FROM financial_years WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Year{}, shared.NotFound("financial year", id)
	}
	return y, err
}

func (r *txRepository) LockPeriod(ctx context.Context, id int64) (Period, error) {
	p, err := ScanPeriod(r.tx.QueryRow(ctx, `SELECT `+PeriodColumns+` FROM financial_periods WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.NotFound("financial period", id)
	}
	return p, err
}

func (r *txRepository) ClearCurrent(ctx context.Context, tenantID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `UPDATE financial_years SET is_current=FALSE, updated_at=NOW() WHERE tenant_id=$1 AND is_current`, tenantID)
	return err
}

func (r *txRepository) MarkCurrent(ctx context.Context, yearID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE financial_years SET is_current=TRUE, updated_at=NOW() WHERE id=$1`, yearID)
	return err
}

func (r *txRepository) SetPeriodOpen(ctx context.Context, periodID int64, open bool) (Period, error) {
	return ScanPeriod(r.tx.QueryRow(ctx, `UPDATE financial_periods
SET is_open=$2, closed_at=CASE WHEN $2 THEN NULL ELSE NOW() END
WHERE id=$1 RETURNING `+PeriodColumns, periodID, open))
}
