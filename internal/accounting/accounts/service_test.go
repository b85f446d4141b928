package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

type memoryRepo struct {
	accounts map[int64]Account
	posted   map[int64]bool
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[int64]Account{}, posted: map[int64]bool{}}
}

func (m *memoryRepo) List(_ context.Context, tenantID uuid.UUID) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) Find(_ context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, shared.NotFound("account", id)
	}
	return a, nil
}

func (m *memoryRepo) GetByCode(_ context.Context, tenantID uuid.UUID, code string) (Account, error) {
	for _, a := range m.accounts {
		if a.TenantID == tenantID && a.Code == code {
			return a, nil
		}
	}
	return Account{}, shared.NotFound("account", code)
}

func (m *memoryRepo) Insert(_ context.Context, a Account) (Account, error) {
	for _, existing := range m.accounts {
		if existing.TenantID == a.TenantID && existing.Code == a.Code {
			return Account{}, ErrDuplicateCode
		}
	}
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryRepo) Update(_ context.Context, a Account) (Account, error) {
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memoryRepo) HasPostedLines(_ context.Context, id int64) (bool, error) {
	return m.posted[id], nil
}

func TestNormalSideAndSignedBalance(t *testing.T) {
	debitNormal := []AccountType{AccountTypeAsset, AccountTypeExpense, AccountTypeContraRevenue}
	creditNormal := []AccountType{AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeContraAsset}
	d := decimal.NewFromInt(150)
	c := decimal.NewFromInt(40)
	for _, typ := range debitNormal {
		require.Equal(t, SideDebit, NormalSide(typ), typ)
		require.True(t, SignedBalance(typ, d, c).Equal(decimal.NewFromInt(110)), typ)
	}
	for _, typ := range creditNormal {
		require.Equal(t, SideCredit, NormalSide(typ), typ)
		require.True(t, SignedBalance(typ, d, c).Equal(decimal.NewFromInt(-110)), typ)
	}
}

func TestCreateRejectsDuplicateCodeAndForeignParent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())
	tenant := uuid.New()
	other := uuid.New()

	cash, err := svc.Create(ctx, tenant, CreateInput{Code: "1100", Name: "Cash", Type: AccountTypeAsset})
	require.NoError(t, err)
	require.True(t, cash.IsActive)

	_, err = svc.Create(ctx, tenant, CreateInput{Code: "1100", Name: "Cash again", Type: AccountTypeAsset})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, other, CreateInput{Code: "1100", Name: "Other tenant cash", Type: AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, other, CreateInput{Code: "1110", Name: "Petty", Type: AccountTypeAsset, ParentID: &cash.ID})
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "parent_id", verr.Field)

	_, err = svc.Create(ctx, tenant, CreateInput{Code: "9", Name: "Bad", Type: "INCOME"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateBlocksTypeChangeWithPostedLines(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)
	tenant := uuid.New()

	acc, err := svc.Create(ctx, tenant, CreateInput{Code: "4100", Name: "Outpatient revenue", Type: AccountTypeRevenue})
	require.NoError(t, err)

	expense := AccountTypeExpense
	updated, err := svc.Update(ctx, tenant, acc.ID, UpdateInput{Type: &expense})
	require.NoError(t, err)
	require.Equal(t, AccountTypeExpense, updated.Type)

	repo.posted[acc.ID] = true
	revenue := AccountTypeRevenue
	_, err = svc.Update(ctx, tenant, acc.ID, UpdateInput{Type: &revenue})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRejectsParentCycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())
	tenant := uuid.New()

	root, err := svc.Create(ctx, tenant, CreateInput{Code: "1000", Name: "Assets", Type: AccountTypeAsset})
	require.NoError(t, err)
	child, err := svc.Create(ctx, tenant, CreateInput{Code: "1100", Name: "Cash", Type: AccountTypeAsset, ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, tenant, CreateInput{Code: "1110", Name: "Petty cash", Type: AccountTypeAsset, ParentID: &child.ID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, tenant, root.ID, UpdateInput{ParentID: &grandchild.ID})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(ctx, tenant, root.ID, UpdateInput{ParentID: &root.ID})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetHidesOtherTenantsAccounts(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())
	tenant := uuid.New()
	acc, err := svc.Create(ctx, tenant, CreateInput{Code: "2100", Name: "Payables", Type: AccountTypeLiability})
	require.NoError(t, err)

	_, err = svc.Get(ctx, uuid.New(), acc.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	deactivated, err := svc.Deactivate(ctx, tenant, acc.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
}
