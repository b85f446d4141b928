package mappings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// AccountFinder loads accounts by id across tenants.
type AccountFinder interface {
	Find(ctx context.Context, id int64) (accounts.Account, error)
}

type Service struct {
	repo     Repository
	accounts AccountFinder
}

func NewService(repo Repository, accounts AccountFinder) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// ParseKey normalises raw input into a known key.
func ParseKey(raw string) (Key, error) {
	key := Key(strings.ToUpper(strings.TrimSpace(raw)))
	if !key.Known() {
		return "", shared.Invalidf("key", "unknown system account key %q", raw)
	}
	return key, nil
}

// Resolve returns the active account mapped to key. There is no fallback.
func (s *Service) Resolve(ctx context.Context, tenantID uuid.UUID, key Key) (accounts.Account, error) {
	m, err := s.repo.Get(ctx, tenantID, key)
	if errors.Is(err, shared.ErrNotFound) {
		return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key), Reason: "no mapping"}
	}
	if err != nil {
		return accounts.Account{}, err
	}
	if !m.IsActive {
		return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key), Reason: "mapping inactive"}
	}
	account, err := s.accounts.Find(ctx, m.AccountID)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && account.TenantID != tenantID) {
		return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key), Reason: "mapped account missing"}
	}
	if err != nil {
		return accounts.Account{}, err
	}
	if !account.IsActive {
		return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key), Reason: "mapped account inactive"}
	}
	return account, nil
}

// Upsert maps key to accountID, replacing any previous mapping.
func (s *Service) Upsert(ctx context.Context, tenantID uuid.UUID, key Key, accountID int64) (Mapping, error) {
	if !key.Known() {
		return Mapping{}, shared.Invalidf("key", "unknown system account key %q", key)
	}
	account, err := s.accounts.Find(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return Mapping{}, shared.Invalidf("account_id", "account %d does not exist", accountID)
	}
	if err != nil {
		return Mapping{}, err
	}
	if account.TenantID != tenantID {
		return Mapping{}, shared.Invalidf("account_id", "account %d belongs to another tenant", accountID)
	}
	return s.repo.Upsert(ctx, Mapping{TenantID: tenantID, Key: key, AccountID: accountID, IsActive: true})
}

func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, key Key) (Mapping, error) {
	return s.repo.Get(ctx, tenantID, key)
}

func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, key Key) error {
	return s.repo.SetActive(ctx, tenantID, key, false)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Mapping, error) {
	return s.repo.List(ctx, tenantID)
}
