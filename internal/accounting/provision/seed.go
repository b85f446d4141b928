// Package provision seeds a tenant with a starter chart of accounts and the
// system account mappings automated postings rely on.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type AccountStore interface {
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (accounts.Account, error)
	Create(ctx context.Context, tenantID uuid.UUID, input accounts.CreateInput) (accounts.Account, error)
}

type MappingStore interface {
	Get(ctx context.Context, tenantID uuid.UUID, key mappings.Key) (mappings.Mapping, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, key mappings.Key, accountID int64) (mappings.Mapping, error)
}

// Result counts what a seed run created.
type Result struct {
	AccountsCreated int `json:"accounts_created"`
	AccountsKept    int `json:"accounts_kept"`
	MappingsCreated int `json:"mappings_created"`
	MappingsKept    int `json:"mappings_kept"`
}

type Seeder struct {
	accounts AccountStore
	mappings MappingStore
	logger   *slog.Logger
}

func NewSeeder(accounts AccountStore, mappings MappingStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{accounts: accounts, mappings: mappings, logger: logger}
}

// SeedDefaultChart creates missing accounts of DefaultHospitalChart and maps
// unmapped keys. Existing accounts and active mappings are left untouched, so
// running it twice is a no-op.
func (s *Seeder) SeedDefaultChart(ctx context.Context, tenantID uuid.UUID) (Result, error) {
	return s.Seed(ctx, tenantID, DefaultHospitalChart)
}

func (s *Seeder) Seed(ctx context.Context, tenantID uuid.UUID, chart []ChartAccount) (Result, error) {
	var res Result
	if tenantID == uuid.Nil {
		return res, shared.Invalid("tenant_id", "required")
	}
	ids := make(map[string]int64, len(chart))
	for _, row := range chart {
		acc, err := s.accounts.GetByCode(ctx, tenantID, row.Code)
		switch {
		case err == nil:
			res.AccountsKept++
		case errors.Is(err, shared.ErrNotFound):
			input := accounts.CreateInput{Code: row.Code, Name: row.Name, Type: row.Type}
			if row.Parent != "" {
				parentID, ok := ids[row.Parent]
				if !ok {
					return res, fmt.Errorf("provision: parent %s of %s not seeded", row.Parent, row.Code)
				}
				input.ParentID = &parentID
			}
			acc, err = s.accounts.Create(ctx, tenantID, input)
			if err != nil {
				return res, fmt.Errorf("provision: create account %s: %w", row.Code, err)
			}
			res.AccountsCreated++
		default:
			return res, err
		}
		ids[row.Code] = acc.ID

		if row.Key == "" {
			continue
		}
		existing, err := s.mappings.Get(ctx, tenantID, row.Key)
		if err == nil && existing.IsActive {
			res.MappingsKept++
			continue
		}
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return res, err
		}
		if _, err := s.mappings.Upsert(ctx, tenantID, row.Key, acc.ID); err != nil {
			return res, fmt.Errorf("provision: map %s: %w", row.Key, err)
		}
		res.MappingsCreated++
	}
	s.logger.Info("chart seeded",
		slog.String("tenant_id", tenantID.String()),
		slog.Int("accounts_created", res.AccountsCreated),
		slog.Int("mappings_created", res.MappingsCreated))
	return res, nil
}
