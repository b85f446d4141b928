package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// maxDepth bounds parent traversal when checking for cycles.
const maxDepth = 64

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// Get returns the tenant's account; accounts of other tenants are reported as not found.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	account, err := s.repo.Find(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if account.TenantID != tenantID {
		return Account{}, shared.NotFound("account", id)
	}
	return account, nil
}

func (s *Service) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (Account, error) {
	return s.repo.GetByCode(ctx, tenantID, strings.TrimSpace(code))
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input CreateInput) (Account, error) {
	if tenantID == uuid.Nil {
		return Account{}, shared.Invalid("tenant_id", "required")
	}
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return Account{}, shared.Invalid("code", "required")
	}
	if name == "" {
		return Account{}, shared.Invalid("name", "required")
	}
	if !input.Type.Valid() {
		return Account{}, shared.Invalidf("type", "unknown account type %q", input.Type)
	}
	if input.ParentID != nil {
		if _, err := s.parent(ctx, tenantID, *input.ParentID); err != nil {
			return Account{}, err
		}
	}
	created, err := s.repo.Insert(ctx, Account{
		TenantID: tenantID,
		Code:     code,
		Name:     name,
		Type:     input.Type,
		ParentID: input.ParentID,
		IsActive: true,
	})
	if errors.Is(err, ErrDuplicateCode) {
		return Account{}, shared.Invalidf("code", "account code %s already exists", code)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, id int64, input UpdateInput) (Account, error) {
	account, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return Account{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Account{}, shared.Invalid("name", "required")
		}
		account.Name = name
	}
	if input.Type != nil && *input.Type != account.Type {
		if !input.Type.Valid() {
			return Account{}, shared.Invalidf("type", "unknown account type %q", *input.Type)
		}
		posted, err := s.repo.HasPostedLines(ctx, id)
		if err != nil {
			return Account{}, err
		}
		if posted {
			return Account{}, shared.Invalid("type", "cannot change type of an account with posted lines")
		}
		account.Type = *input.Type
	}
	switch {
	case input.ClearParent:
		account.ParentID = nil
	case input.ParentID != nil:
		if err := s.checkParent(ctx, tenantID, id, *input.ParentID); err != nil {
			return Account{}, err
		}
		parentID := *input.ParentID
		account.ParentID = &parentID
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}
	return s.repo.Update(ctx, account)
}

// Deactivate soft-deletes the account; posted history stays intact.
func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	inactive := false
	return s.Update(ctx, tenantID, id, UpdateInput{IsActive: &inactive})
}

func (s *Service) parent(ctx context.Context, tenantID uuid.UUID, parentID int64) (Account, error) {
	parent, err := s.repo.Find(ctx, parentID)
	if errors.Is(err, shared.ErrNotFound) {
		return Account{}, shared.Invalidf("parent_id", "parent account %d does not exist", parentID)
	}
	if err != nil {
		return Account{}, err
	}
	if parent.TenantID != tenantID {
		return Account{}, shared.Invalidf("parent_id", "parent account %d belongs to another tenant", parentID)
	}
	return parent, nil
}

func (s *Service) checkParent(ctx context.Context, tenantID uuid.UUID, id, parentID int64) error {
	if parentID == id {
		return shared.Invalid("parent_id", "account cannot be its own parent")
	}
	current, err := s.parent(ctx, tenantID, parentID)
	if err != nil {
		return err
	}
	for depth := 0; current.ParentID != nil; depth++ {
		if *current.ParentID == id {
			return shared.Invalid("parent_id", "parent would create a cycle")
		}
		if depth >= maxDepth {
			return shared.Invalid("parent_id", "account hierarchy too deep")
		}
		current, err = s.repo.Find(ctx, *current.ParentID)
		if err != nil {
			return err
		}
	}
	return nil
}
