package costcenters

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

const defaultType = "CLINICAL"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]CostCenter, error) {
	return s.repo.List(ctx, tenantID)
}

func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (CostCenter, error) {
	cc, err := s.repo.Find(ctx, id)
	if err != nil {
		return CostCenter{}, err
	}
	if cc.TenantID != tenantID {
		return CostCenter{}, shared.NotFound("cost center", id)
	}
	return cc, nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input CreateInput) (CostCenter, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return CostCenter{}, shared.Invalid("code", "required")
	}
	if name == "" {
		return CostCenter{}, shared.Invalid("name", "required")
	}
	typ := strings.ToUpper(strings.TrimSpace(input.Type))
	if typ == "" {
		typ = defaultType
	}
	cc, err := s.repo.Insert(ctx, CostCenter{TenantID: tenantID, Code: code, Name: name, Type: typ, IsActive: true})
	if errors.Is(err, ErrDuplicateCode) {
		return CostCenter{}, shared.Invalidf("code", "cost center %s already exists", code)
	}
	return cc, err
}

func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, id int64) (CostCenter, error) {
	return s.repo.SetActive(ctx, tenantID, id, false)
}
