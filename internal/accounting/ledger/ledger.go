package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
)

// Line is one posted line of an account ledger with the balance after it.
type Line struct {
	EntryID      int64           `json:"entry_id"`
	LineID       int64           `json:"line_id"`
	EntryDate    time.Time       `json:"entry_date"`
	Description  string          `json:"description"`
	SourceModule string          `json:"source_module"`
	SourceID     *string         `json:"source_id,omitempty"`
	CostCenterID *int64          `json:"cost_center_id,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Balance      decimal.Decimal `json:"balance"`
}

// Ledger lists the movements of one account over a date range.
type Ledger struct {
	Account        accounts.Account `json:"account"`
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	CostCenterID   *int64           `json:"cost_center_id,omitempty"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Lines          []Line           `json:"lines"`
	TotalDebit     decimal.Decimal  `json:"total_debit"`
	TotalCredit    decimal.Decimal  `json:"total_credit"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

// Build computes opening, running and closing balances on the account's normal side.
// lines must already be ordered by entry date then line id.
func Build(account accounts.Account, openingDebit, openingCredit decimal.Decimal, lines []Line) Ledger {
	out := Ledger{
		Account:        account,
		OpeningBalance: accounts.SignedBalance(account.Type, openingDebit, openingCredit),
		Lines:          make([]Line, 0, len(lines)),
	}
	balance := out.OpeningBalance
	for _, line := range lines {
		balance = balance.Add(accounts.SignedBalance(account.Type, line.Debit, line.Credit))
		line.Balance = balance
		out.TotalDebit = out.TotalDebit.Add(line.Debit)
		out.TotalCredit = out.TotalCredit.Add(line.Credit)
		out.Lines = append(out.Lines, line)
	}
	out.ClosingBalance = balance
	return out
}
