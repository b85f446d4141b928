package mappings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type Repository interface {
	Get(ctx context.Context, tenantID uuid.UUID, key Key) (Mapping, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error)
	Upsert(ctx context.Context, m Mapping) (Mapping, error)
	SetActive(ctx context.Context, tenantID uuid.UUID, key Key, active bool) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Get resolves an account mapping for the specified key.
func (r *repository) Get(ctx context.Context, tenantID uuid.UUID, key Key) (Mapping, error) {
	var m Mapping
	err := r.db.QueryRow(ctx, `SELECT tenant_id, key, account_id, is_active, updated_at
FROM system_account_mappings WHERE tenant_id=$1 AND key=$2`, tenantID, key).
		Scan(&m.TenantID, &m.Key, &m.AccountID, &m.IsActive, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Mapping{}, shared.NotFound("system account mapping", key)
		}
		return Mapping{}, err
	}
	return m, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error) {
	rows, err := r.db.Query(ctx, `SELECT tenant_id, key, account_id, is_active, updated_at
FROM system_account_mappings WHERE tenant_id=$1 ORDER BY key`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.TenantID, &m.Key, &m.AccountID, &m.IsActive, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) Upsert(ctx context.Context, m Mapping) (Mapping, error) {
	var out Mapping
	err := r.db.QueryRow(ctx, `INSERT INTO system_account_mappings (tenant_id, key, account_id, is_active)
VALUES ($1,$2,$3,TRUE)
ON CONFLICT (tenant_id, key) DO UPDATE SET account_id=EXCLUDED.account_id, is_active=TRUE, updated_at=NOW()
RETURNING tenant_id, key, account_id, is_active, updated_at`, m.TenantID, m.Key, m.AccountID).
		Scan(&out.TenantID, &out.Key, &out.AccountID, &out.IsActive, &out.UpdatedAt)
	return out, err
}

func (r *repository) SetActive(ctx context.Context, tenantID uuid.UUID, key Key, active bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE system_account_mappings SET is_active=$3, updated_at=NOW() WHERE tenant_id=$1 AND key=$2`, tenantID, key, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("system account mapping", key)
	}
	return nil
}
