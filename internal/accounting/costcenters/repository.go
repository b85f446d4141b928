package costcenters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/hospital-ledger/internal/platform/db"
)

var ErrDuplicateCode = errors.New("costcenters: duplicate code")

type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]CostCenter, error)
	Find(ctx context.Context, id int64) (CostCenter, error)
	Insert(ctx context.Context, cc CostCenter) (CostCenter, error)
	SetActive(ctx context.Context, tenantID uuid.UUID, id int64, active bool) (CostCenter, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, tenant_id, code, name, type, is_active, created_at, updated_at`

func scan(row pgx.Row) (CostCenter, error) {
	var c CostCenter
	err := row.Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Type, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID) ([]CostCenter, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM cost_centers WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CostCenter
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Find(ctx context.Context, id int64) (CostCenter, error) {
	c, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM cost_centers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCenter{}, shared.NotFound("cost center", id)
	}
	return c, err
}

func (r *repository) Insert(ctx context.Context, cc CostCenter) (CostCenter, error) {
	c, err := scan(r.db.QueryRow(ctx, `INSERT INTO cost_centers (tenant_id, code, name, type, is_active)
VALUES ($1,$2,$3,$4,TRUE) RETURNING `+columns, cc.TenantID, cc.Code, cc.Name, cc.Type))
	if db.IsUniqueViolation(err, "uq_cost_centers_tenant_code") {
		return CostCenter{}, ErrDuplicateCode
	}
	return c, err
}

func (r *repository) SetActive(ctx context.Context, tenantID uuid.UUID, id int64, active bool) (CostCenter, error) {
	c, err := scan(r.db.QueryRow(ctx, `UPDATE cost_centers SET is_active=$3, updated_at=NOW()
WHERE id=$1 AND tenant_id=$2 RETURNING `+columns, id, tenantID, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCenter{}, shared.NotFound("cost center", id)
	}
	return c, err
}
