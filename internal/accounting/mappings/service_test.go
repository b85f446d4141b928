package mappings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type memoryAccounts map[int64]accounts.Account

func (m memoryAccounts) Find(_ context.Context, id int64) (accounts.Account, error) {
	a, ok := m[id]
	if !ok {
		return accounts.Account{}, shared.NotFound("account", id)
	}
	return a, nil
}

type memoryRepo struct {
	rows map[Key]Mapping
}

func (m *memoryRepo) Get(_ context.Context, _ uuid.UUID, key Key) (Mapping, error) {
	row, ok := m.rows[key]
	if !ok {
		return Mapping{}, shared.NotFound("system account mapping", key)
	}
	return row, nil
}

func (m *memoryRepo) List(context.Context, uuid.UUID) ([]Mapping, error) {
	out := make([]Mapping, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memoryRepo) Upsert(_ context.Context, row Mapping) (Mapping, error) {
	m.rows[row.Key] = row
	return row, nil
}

func (m *memoryRepo) SetActive(_ context.Context, _ uuid.UUID, key Key, active bool) error {
	row, ok := m.rows[key]
	if !ok {
		return shared.NotFound("system account mapping", key)
	}
	row.IsActive = active
	m.rows[key] = row
	return nil
}

func TestResolveFailsWithoutFallback(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	accs := memoryAccounts{
		1: {ID: 1, TenantID: tenant, Code: "1100", Type: accounts.AccountTypeAsset, IsActive: true},
		2: {ID: 2, TenantID: tenant, Code: "1190", Type: accounts.AccountTypeAsset, IsActive: false},
		3: {ID: 3, TenantID: uuid.New(), Code: "1100", Type: accounts.AccountTypeAsset, IsActive: true},
	}
	svc := NewService(&memoryRepo{rows: map[Key]Mapping{}}, accs)

	_, err := svc.Resolve(ctx, tenant, KeyCashMain)
	var unmapped *shared.UnmappedSystemAccountError
	require.True(t, errors.As(err, &unmapped))
	require.Equal(t, "CASH_MAIN", unmapped.Key)

	_, err = svc.Upsert(ctx, tenant, KeyCashMain, 1)
	require.NoError(t, err)
	acc, err := svc.Resolve(ctx, tenant, KeyCashMain)
	require.NoError(t, err)
	require.Equal(t, int64(1), acc.ID)

	_, err = svc.Upsert(ctx, tenant, KeyCashMain, 2)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tenant, KeyCashMain)
	require.ErrorIs(t, err, shared.ErrUnmappedSystemAccount)

	require.NoError(t, svc.Deactivate(ctx, tenant, KeyCashMain))
	_, err = svc.Resolve(ctx, tenant, KeyCashMain)
	require.ErrorIs(t, err, shared.ErrUnmappedSystemAccount)
}

func TestUpsertValidatesKeyAndTenant(t *testing.T) {
	ctx := context.Background()
	tenant := uuid.New()
	accs := memoryAccounts{
		3: {ID: 3, TenantID: uuid.New(), Code: "1100", Type: accounts.AccountTypeAsset, IsActive: true},
	}
	svc := NewService(&memoryRepo{rows: map[Key]Mapping{}}, accs)

	_, err := svc.Upsert(ctx, tenant, Key("PETTY_CASH"), 3)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Upsert(ctx, tenant, KeyBankMain, 3)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Upsert(ctx, tenant, KeyBankMain, 99)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey(" retained_earnings ")
	require.NoError(t, err)
	require.Equal(t, KeyRetainedEarnings, key)

	_, err = ParseKey("unknown")
	require.ErrorIs(t, err, shared.ErrValidation)
}
