package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// Query selects the ledger rows to load.
type Query struct {
	TenantID     uuid.UUID
	AccountID    int64
	From         time.Time
	To           time.Time
	CostCenterID *int64
}

// Snapshot is everything Build needs, read from one consistent snapshot.
type Snapshot struct {
	Account       accounts.Account
	OpeningDebit  decimal.Decimal
	OpeningCredit decimal.Decimal
	Lines         []Line
}

type Repository interface {
	// Load reads the account unscoped by tenant; lines and sums are tenant scoped.
	Load(ctx context.Context, q Query) (Snapshot, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Load(ctx context.Context, q Query) (Snapshot, error) {
	var snap Snapshot
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		acc := &snap.Account
		err := tx.QueryRow(ctx, `SELECT id, tenant_id, code, name, type, parent_id, is_active, created_at, updated_at
FROM accounts WHERE id=$1`, q.AccountID).
			Scan(&acc.ID, &acc.TenantID, &acc.Code, &acc.Name, &acc.Type, &acc.ParentID, &acc.IsActive, &acc.CreatedAt, &acc.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.NotFound("account", q.AccountID)
		}
		if err != nil {
			return err
		}
		if acc.TenantID != q.TenantID {
			return nil
		}
		if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
WHERE e.tenant_id=$1 AND l.account_id=$2 AND e.entry_date < $3
  AND ($4::bigint IS NULL OR l.cost_center_id = $4)`,
			q.TenantID, q.AccountID, q.From, q.CostCenterID).Scan(&snap.OpeningDebit, &snap.OpeningCredit); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `SELECT e.id, l.id, e.entry_date, COALESCE(NULLIF(l.description,''), e.description),
       e.source_module, e.source_id, l.cost_center_id, l.debit, l.credit
FROM accounting_entry_lines l
JOIN accounting_entries e ON e.id = l.entry_id
WHERE e.tenant_id=$1 AND l.account_id=$2 AND e.entry_date BETWEEN $3 AND $4
  AND ($5::bigint IS NULL OR l.cost_center_id = $5)
ORDER BY e.entry_date, l.id`,
			q.TenantID, q.AccountID, q.From, q.To, q.CostCenterID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var line Line
			if err := rows.Scan(&line.EntryID, &line.LineID, &line.EntryDate, &line.Description,
				&line.SourceModule, &line.SourceID, &line.CostCenterID, &line.Debit, &line.Credit); err != nil {
				return err
			}
			snap.Lines = append(snap.Lines, line)
		}
		return rows.Err()
	})
	return snap, err
}
