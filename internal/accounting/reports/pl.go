package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// StatementLine is one account inside a statement section.
type StatementLine struct {
	AccountID int64                `json:"account_id,omitempty"`
	Code      string               `json:"code,omitempty"`
	Name      string               `json:"name"`
	Type      accounts.AccountType `json:"type,omitempty"`
	Amount    decimal.Decimal      `json:"amount"`
}

// Section groups statement lines under a label.
type Section struct {
	Label string          `json:"label"`
	Lines []StatementLine `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s *Section) add(line StatementLine) {
	s.Lines = append(s.Lines, line)
	s.Total = s.Total.Add(line.Amount)
}

func (s *Section) sortByCode() {
	sort.SliceStable(s.Lines, func(i, j int) bool { return s.Lines[i].Code < s.Lines[j].Code })
}

// IncomeStatement is revenue against expense for a date range.
type IncomeStatement struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	CostCenterID *int64          `json:"cost_center_id,omitempty"`
	Revenue      Section         `json:"revenue"`
	Expense      Section         `json:"expense"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// BuildIncomeStatement places revenue and contra-revenue in the revenue section,
// the latter as negative amounts, and drops accounts with a negligible net.
func BuildIncomeStatement(from, to time.Time, balances []AccountBalance) IncomeStatement {
	out := IncomeStatement{
		From:    from,
		To:      to,
		Revenue: Section{Label: "Revenue", Lines: []StatementLine{}},
		Expense: Section{Label: "Expense", Lines: []StatementLine{}},
	}
	for _, acc := range balances {
		line := StatementLine{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Type: acc.Type}
		switch acc.Type {
		case accounts.AccountTypeRevenue, accounts.AccountTypeContraRevenue:
			line.Amount = acc.Credit.Sub(acc.Debit)
			if shared.Negligible(line.Amount) {
				continue
			}
			out.Revenue.add(line)
		case accounts.AccountTypeExpense:
			line.Amount = acc.Debit.Sub(acc.Credit)
			if shared.Negligible(line.Amount) {
				continue
			}
			out.Expense.add(line)
		}
	}
	out.Revenue.sortByCode()
	out.Expense.sortByCode()
	out.TotalRevenue = out.Revenue.Total
	out.TotalExpense = out.Expense.Total
	out.NetProfit = out.TotalRevenue.Sub(out.TotalExpense)
	return out
}

// netIncome is revenue minus expense over the income-statement accounts in balances.
func netIncome(balances []AccountBalance) decimal.Decimal {
	net := decimal.Zero
	for _, acc := range balances {
		if acc.Type.IsIncomeStatement() {
			net = net.Add(acc.Credit.Sub(acc.Debit))
		}
	}
	return net
}
