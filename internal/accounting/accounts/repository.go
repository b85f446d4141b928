package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

// ErrDuplicateCode is returned by the repository when the code already exists for the tenant.
var ErrDuplicateCode = errors.New("accounts: duplicate code")

type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	// Find loads an account by id regardless of tenant so callers can detect cross-tenant references.
	Find(ctx context.Context, id int64) (Account, error)
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (Account, error)
	Insert(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
	HasPostedLines(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, tenant_id, code, name, type, parent_id, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Find(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.NotFound("account", id)
	}
	return a, err
}

func (r *repository) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND code=$2`, tenantID, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.NotFound("account", code)
	}
	return a, err
}

func (r *repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, type, parent_id, is_active)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING `+accountColumns, a.TenantID, a.Code, a.Name, a.Type, a.ParentID, a.IsActive)
	out, err := scanAccount(row)
	if db.IsUniqueViolation(err, "uq_accounts_tenant_code") {
		return Account{}, ErrDuplicateCode
	}
	return out, err
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET name=$3, type=$4, parent_id=$5, is_active=$6, updated_at=NOW()
WHERE id=$1 AND tenant_id=$2 RETURNING `+accountColumns, a.ID, a.TenantID, a.Name, a.Type, a.ParentID, a.IsActive)
	out, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, shared.NotFound("account", a.ID)
	}
	return out, err
}

func (r *repository) HasPostedLines(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounting_entry_lines WHERE account_id=$1)`, id).Scan(&exists)
	return exists, err
}
