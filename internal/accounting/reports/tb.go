package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// AccountBalance carries the raw debit and credit sums of one account.
type AccountBalance struct {
	AccountID int64                `json:"account_id"`
	Code      string               `json:"code"`
	Name      string               `json:"name"`
	Type      accounts.AccountType `json:"type"`
	Debit     decimal.Decimal      `json:"debit"`
	Credit    decimal.Decimal      `json:"credit"`
}

// Balance is the signed balance on the account's normal side.
func (a AccountBalance) Balance() decimal.Decimal {
	return accounts.SignedBalance(a.Type, a.Debit, a.Credit)
}

// TrialBalanceFilter narrows the trial balance. Nil bounds are open.
type TrialBalanceFilter struct {
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	CostCenterID *int64     `json:"cost_center_id,omitempty"`
}

// TrialBalanceRow is one account line of the trial balance.
type TrialBalanceRow struct {
	AccountBalance
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalance lists debit and credit sums per account.
type TrialBalance struct {
	Filter      TrialBalanceFilter `json:"filter"`
	Rows        []TrialBalanceRow  `json:"rows"`
	TotalDebit  decimal.Decimal    `json:"total_debit"`
	TotalCredit decimal.Decimal    `json:"total_credit"`
}

// BuildTrialBalance orders rows by account code and totals both sides.
func BuildTrialBalance(filter TrialBalanceFilter, balances []AccountBalance) TrialBalance {
	rows := make([]TrialBalanceRow, 0, len(balances))
	tb := TrialBalance{Filter: filter}
	for _, acc := range balances {
		rows = append(rows, TrialBalanceRow{AccountBalance: acc, Balance: acc.Balance()})
		tb.TotalDebit = tb.TotalDebit.Add(acc.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(acc.Credit)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	tb.Rows = rows
	return tb
}

// Check reports an InternalConsistencyError when the totals disagree.
// A cost-center filtered trial balance may legitimately differ and is not checked.
func (tb TrialBalance) Check() error {
	if tb.Filter.CostCenterID != nil {
		return nil
	}
	if !shared.NearlyEqual(tb.TotalDebit, tb.TotalCredit) {
		return &shared.InternalConsistencyError{Check: "trial_balance", Debit: tb.TotalDebit, Credit: tb.TotalCredit}
	}
	return nil
}
