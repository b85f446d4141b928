package costcenters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type memoryRepo struct {
	items  map[int64]CostCenter
	nextID int64
}

func (m *memoryRepo) List(_ context.Context, tenantID uuid.UUID) ([]CostCenter, error) {
	var out []CostCenter
	for _, cc := range m.items {
		if cc.TenantID == tenantID {
			out = append(out, cc)
		}
	}
	return out, nil
}

func (m *memoryRepo) Find(_ context.Context, id int64) (CostCenter, error) {
	cc, ok := m.items[id]
	if !ok {
		return CostCenter{}, shared.NotFound("cost center", id)
	}
	return cc, nil
}

func (m *memoryRepo) Insert(_ context.Context, cc CostCenter) (CostCenter, error) {
	for _, existing := range m.items {
		if existing.TenantID == cc.TenantID && existing.Code == cc.Code {
			return CostCenter{}, ErrDuplicateCode
		}
	}
	m.nextID++
	cc.ID = m.nextID
	m.items[cc.ID] = cc
	return cc, nil
}

func (m *memoryRepo) SetActive(_ context.Context, tenantID uuid.UUID, id int64, active bool) (CostCenter, error) {
	cc, ok := m.items[id]
	if !ok || cc.TenantID != tenantID {
		return CostCenter{}, shared.NotFound("cost center", id)
	}
	cc.IsActive = active
	m.items[id] = cc
	return cc, nil
}

func TestCreateDefaultsTypeAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepo{items: map[int64]CostCenter{}})
	tenant := uuid.New()

	cc, err := svc.Create(ctx, tenant, CreateInput{Code: " ICU ", Name: "Intensive Care"})
	require.NoError(t, err)
	require.Equal(t, "ICU", cc.Code)
	require.Equal(t, "CLINICAL", cc.Type)
	require.True(t, cc.IsActive)

	_, err = svc.Create(ctx, tenant, CreateInput{Code: "ICU", Name: "Duplicate"})
	require.ErrorIs(t, err, shared.ErrValidation)

	other, err := svc.Create(ctx, uuid.New(), CreateInput{Code: "ICU", Name: "Other tenant", Type: "support"})
	require.NoError(t, err)
	require.Equal(t, "SUPPORT", other.Type)

	_, err = svc.Create(ctx, tenant, CreateInput{Code: "LAB"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetAndDeactivateAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepo{items: map[int64]CostCenter{}})
	tenant := uuid.New()

	cc, err := svc.Create(ctx, tenant, CreateInput{Code: "RAD", Name: "Radiology"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), cc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Deactivate(ctx, uuid.New(), cc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	updated, err := svc.Deactivate(ctx, tenant, cc.ID)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}
