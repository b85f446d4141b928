package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// PayrollLine is the gross pay charged to one cost center.
type PayrollLine struct {
	CostCenterID *int64         `json:"cost_center_id,omitempty"`
	Gross        decimal.Decimal `json:"gross"`
}

// PayrollAccrued: Dr salaries expense per cost center, Cr salaries payable.
type PayrollAccrued struct {
	Document
	Lines []PayrollLine `json:"lines"`
}

func (PayrollAccrued) Kind() string { return "PAYROLL" }

func (e PayrollAccrued) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	total := decimal.Zero
	for i, l := range e.Lines {
		if err := nonNegative(fmt.Sprintf("lines[%d].gross", i), l.Gross); err != nil {
			return journals.PostingRequest{}, err
		}
		b.add(mappings.KeySalariesExpense, l.CostCenterID, l.Gross, decimal.Zero, "Payroll "+e.Number)
		total = total.Add(shared.Round2(l.Gross))
	}
	b.credit(mappings.KeySalariesPayable, total, "Payroll "+e.Number)
	return b.request(e, journals.SourcePayroll, "Payroll "+e.Number)
}

// OpeningLine is a balance carried in from a previous system.
type OpeningLine struct {
	AccountID    int64           `json:"account_id"`
	CostCenterID *int64          `json:"cost_center_id,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
}

// OpeningBalance posts migrated balances; any difference between the sides
// lands in opening balance equity.
type OpeningBalance struct {
	Document
	Lines []OpeningLine `json:"lines"`
}

func (OpeningBalance) Kind() string { return "OPENING" }

func (e OpeningBalance) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	diff := decimal.Zero
	for i, l := range e.Lines {
		if err := nonNegative(fmt.Sprintf("lines[%d]", i), l.Debit, l.Credit); err != nil {
			return journals.PostingRequest{}, err
		}
		b.direct(l.AccountID, l.CostCenterID, l.Debit, l.Credit, "Opening balance")
		diff = diff.Add(shared.Round2(l.Debit)).Sub(shared.Round2(l.Credit))
	}
	if diff.IsPositive() {
		b.credit(mappings.KeyOpeningBalanceEquity, diff, "Opening balance difference")
	} else {
		b.debit(mappings.KeyOpeningBalanceEquity, diff.Neg(), "Opening balance difference")
	}
	return b.request(e, journals.SourceOpeningBalance, "Opening balance "+e.Number)
}
