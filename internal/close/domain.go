package close

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// IncomeBalance is the year's debit and credit total for one income statement
// account within one cost center. A nil CostCenterID is its own group.
type IncomeBalance struct {
	AccountID    int64
	AccountType  accounts.AccountType
	CostCenterID *int64
	Debit        decimal.Decimal
	Credit       decimal.Decimal
}

// CloseYearInput names the year to close. A zero RetainedEarningsAccountID
// falls back to the RETAINED_EARNINGS system account mapping.
type CloseYearInput struct {
	TenantID                  uuid.UUID
	YearID                    int64
	RetainedEarningsAccountID int64
	ActorID                   string
}

// Plan is the closing entry computed for a year.
type Plan struct {
	YearID                    int64           `json:"year_id"`
	RetainedEarningsAccountID int64           `json:"retained_earnings_account_id"`
	Lines                     []journals.Line `json:"lines"`
	TotalRevenue              decimal.Decimal `json:"total_revenue"`
	TotalExpense              decimal.Decimal `json:"total_expense"`
	NetProfit                 decimal.Decimal `json:"net_profit"`
}

// Totals sums the plan's debit and credit columns.
func (p Plan) Totals() (debit, credit decimal.Decimal) {
	for _, l := range p.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Result reports a completed close. ClosingEntryID is zero when the year had
// no income statement activity and no entry was posted.
type Result struct {
	YearID         int64           `json:"year_id"`
	ClosingEntryID int64           `json:"closing_entry_id"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

// Preview is a dry run of CloseYear along with whatever still blocks it.
type Preview struct {
	Plan
	OpenPeriods      []int                    `json:"open_periods"`
	PendingDocuments []shared.PendingDocument `json:"pending_documents"`
	Ready            bool                     `json:"ready"`
}
