package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

const (
	currentEarningsLabel = "Current period earnings"
	priorEarningsLabel   = "Unclosed prior-year earnings"
)

// BalanceSheet is the position of the tenant at AsOf.
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	YearID           int64           `json:"year_id"`
	YearCode         string          `json:"year_code"`
	Assets           Section         `json:"assets"`
	Liabilities      Section         `json:"liabilities"`
	Equity           Section         `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	Difference       decimal.Decimal `json:"difference"`
}

// BuildBalanceSheet takes cumulative balances through asOf and the year-to-date
// balances from the year start. Contra assets reduce the asset section.
// Income not yet closed into equity appears as synthetic equity lines.
func BuildBalanceSheet(asOf time.Time, year periods.Year, cumulative, yearToDate []AccountBalance) BalanceSheet {
	out := BalanceSheet{
		AsOf:        asOf,
		YearID:      year.ID,
		YearCode:    year.Code,
		Assets:      Section{Label: "Assets", Lines: []StatementLine{}},
		Liabilities: Section{Label: "Liabilities", Lines: []StatementLine{}},
		Equity:      Section{Label: "Equity", Lines: []StatementLine{}},
	}
	for _, acc := range cumulative {
		line := StatementLine{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, Type: acc.Type}
		var section *Section
		switch acc.Type {
		case accounts.AccountTypeAsset, accounts.AccountTypeContraAsset:
			line.Amount = acc.Debit.Sub(acc.Credit)
			section = &out.Assets
		case accounts.AccountTypeLiability:
			line.Amount = acc.Credit.Sub(acc.Debit)
			section = &out.Liabilities
		case accounts.AccountTypeEquity:
			line.Amount = acc.Credit.Sub(acc.Debit)
			section = &out.Equity
		default:
			continue
		}
		if shared.Negligible(line.Amount) {
			continue
		}
		section.add(line)
	}
	out.Assets.sortByCode()
	out.Liabilities.sortByCode()
	out.Equity.sortByCode()

	current := netIncome(yearToDate)
	prior := netIncome(cumulative).Sub(current)
	if !shared.Negligible(prior) {
		out.Equity.add(StatementLine{Name: priorEarningsLabel, Amount: prior})
	}
	if !shared.Negligible(current) {
		out.Equity.add(StatementLine{Name: currentEarningsLabel, Amount: current})
	}

	out.TotalAssets = out.Assets.Total
	out.TotalLiabilities = out.Liabilities.Total
	out.TotalEquity = out.Equity.Total
	out.Difference = out.TotalAssets.Sub(out.TotalLiabilities.Add(out.TotalEquity))
	return out
}
