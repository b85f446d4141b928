package close

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

const closingLineDescription = "Year-end closing"

type bucket struct {
	set bool
	id  int64
}

func bucketOf(id *int64) bucket {
	if id == nil {
		return bucket{}
	}
	return bucket{set: true, id: *id}
}

func (b bucket) less(o bucket) bool {
	if b.set != o.set {
		return !b.set
	}
	return b.id < o.id
}

func (b bucket) ptr() *int64 {
	if !b.set {
		return nil
	}
	id := b.id
	return &id
}

// BuildClosing zeroes every income statement balance and moves the net of each
// cost center into retained earnings: a credit for profit, a debit for loss.
// Groups whose balance rounds to zero produce no line.
func BuildClosing(balances []IncomeBalance, retainedEarningsID int64) Plan {
	sorted := make([]IncomeBalance, 0, len(balances))
	for _, b := range balances {
		if b.AccountType.IsIncomeStatement() {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AccountID != sorted[j].AccountID {
			return sorted[i].AccountID < sorted[j].AccountID
		}
		return bucketOf(sorted[i].CostCenterID).less(bucketOf(sorted[j].CostCenterID))
	})

	plan := Plan{
		RetainedEarningsAccountID: retainedEarningsID,
		TotalRevenue:              decimal.Zero,
		TotalExpense:              decimal.Zero,
	}
	profit := make(map[bucket]decimal.Decimal)
	for _, b := range sorted {
		debit, credit := shared.Round2(b.Debit), shared.Round2(b.Credit)
		if b.AccountType == accounts.AccountTypeExpense {
			plan.TotalExpense = plan.TotalExpense.Add(debit.Sub(credit))
		} else {
			plan.TotalRevenue = plan.TotalRevenue.Add(credit.Sub(debit))
		}

		net := debit.Sub(credit)
		if net.IsZero() {
			continue
		}
		key := bucketOf(b.CostCenterID)
		profit[key] = profit[key].Sub(net)

		line := journals.Line{AccountID: b.AccountID, CostCenterID: key.ptr(), Description: closingLineDescription}
		if net.IsPositive() {
			line.Credit = net
		} else {
			line.Debit = net.Neg()
		}
		plan.Lines = append(plan.Lines, line)
	}

	keys := make([]bucket, 0, len(profit))
	for k := range profit {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	for _, k := range keys {
		p := profit[k]
		if p.IsZero() {
			continue
		}
		line := journals.Line{AccountID: retainedEarningsID, CostCenterID: k.ptr(), Description: "Net result to retained earnings"}
		if p.IsPositive() {
			line.Credit = p
		} else {
			line.Debit = p.Neg()
		}
		plan.Lines = append(plan.Lines, line)
	}

	plan.NetProfit = plan.TotalRevenue.Sub(plan.TotalExpense)
	return plan
}
