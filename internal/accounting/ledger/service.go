package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetLedger returns the movements of accountID between from and to, inclusive.
func (s *Service) GetLedger(ctx context.Context, tenantID uuid.UUID, accountID int64, from, to time.Time, costCenterID *int64) (Ledger, error) {
	from, to = shared.DateOnly(from), shared.DateOnly(to)
	if from.After(to) {
		return Ledger{}, shared.Invalid("from", "must not be after to")
	}
	snap, err := s.repo.Load(ctx, Query{TenantID: tenantID, AccountID: accountID, From: from, To: to, CostCenterID: costCenterID})
	if err != nil {
		return Ledger{}, err
	}
	if snap.Account.TenantID != tenantID {
		return Ledger{}, shared.Invalidf("account_id", "account %d belongs to another tenant", accountID)
	}
	out := Build(snap.Account, snap.OpeningDebit, snap.OpeningCredit, snap.Lines)
	out.From, out.To, out.CostCenterID = from, to, costCenterID
	return out, nil
}
