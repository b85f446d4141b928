package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset         AccountType = "ASSET"
	AccountTypeContraAsset   AccountType = "CONTRA_ASSET"
	AccountTypeLiability     AccountType = "LIABILITY"
	AccountTypeEquity        AccountType = "EQUITY"
	AccountTypeRevenue       AccountType = "REVENUE"
	AccountTypeContraRevenue AccountType = "CONTRA_REVENUE"
	AccountTypeExpense       AccountType = "EXPENSE"
)

// AccountTypes lists every valid type.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeContraAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeContraRevenue,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsIncomeStatement reports whether balances of this type close into retained earnings.
func (t AccountType) IsIncomeStatement() bool {
	return t == AccountTypeRevenue || t == AccountTypeContraRevenue || t == AccountTypeExpense
}

// Side is the normal balance side of an account.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// NormalSide returns the side on which balances of type t increase.
func NormalSide(t AccountType) Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense, AccountTypeContraRevenue:
		return SideDebit
	default:
		return SideCredit
	}
}

// SignedBalance expresses debit/credit totals on the normal side of t.
func SignedBalance(t AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if NormalSide(t) == SideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Account models a chart of accounts node.
type Account struct {
	ID        int64       `json:"id"`
	TenantID  uuid.UUID   `json:"tenant_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	ParentID  *int64      `json:"parent_id,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateInput describes a new account.
type CreateInput struct {
	Code     string
	Name     string
	Type     AccountType
	ParentID *int64
}

// UpdateInput patches an account; nil fields stay unchanged.
type UpdateInput struct {
	Name        *string
	Type        *AccountType
	ParentID    *int64
	ClearParent bool
	IsActive    *bool
}
