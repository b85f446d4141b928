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

// Service names the revenue stream of an invoice line.
type Service string

const (
	ServiceOutpatient Service = "OUTPATIENT"
	ServiceInpatient  Service = "INPATIENT"
	ServicePharmacy   Service = "PHARMACY"
	ServiceLaboratory Service = "LABORATORY"
	ServiceRadiology  Service = "RADIOLOGY"
)

var revenueKeys = map[Service]mappings.Key{
	ServiceOutpatient: mappings.KeyRevenueOutpatient,
	ServiceInpatient:  mappings.KeyRevenueInpatient,
	ServicePharmacy:   mappings.KeyRevenuePharmacy,
	ServiceLaboratory: mappings.KeyRevenueLaboratory,
	ServiceRadiology:  mappings.KeyRevenueRadiology,
}

// ChargeLine is one revenue line of an invoice. A nil CostCenterID inherits
// the document's cost center.
type ChargeLine struct {
	Service      Service         `json:"service"`
	Amount       decimal.Decimal `json:"amount"`
	CostCenterID *int64          `json:"cost_center_id,omitempty"`
}

// InvoiceIssued: Dr receivable (net) and discounts, Cr revenue per service and output VAT.
type InvoiceIssued struct {
	Document
	Payer    Payer           `json:"payer"`
	Charges  []ChargeLine    `json:"charges"`
	Discount decimal.Decimal `json:"discount"`
	VAT      decimal.Decimal `json:"vat"`
}

func (InvoiceIssued) Kind() string { return "INVOICE" }

// Net is the amount charged to the payer, built from the rounded charges,
// discount and VAT.
func (e InvoiceIssued) Net() decimal.Decimal {
	charges := make([]decimal.Decimal, 0, len(e.Charges))
	for _, c := range e.Charges {
		charges = append(charges, c.Amount)
	}
	return cents(charges...).Sub(cents(e.Discount)).Add(cents(e.VAT))
}

func (e InvoiceIssued) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	receivable, err := e.Payer.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	for i, c := range e.Charges {
		if _, ok := revenueKeys[c.Service]; !ok {
			return journals.PostingRequest{}, shared.Invalidf(fmt.Sprintf("charges[%d].service", i), "unknown service %q", c.Service)
		}
		if err := nonNegative(fmt.Sprintf("charges[%d].amount", i), c.Amount); err != nil {
			return journals.PostingRequest{}, err
		}
	}
	if err := nonNegative("amount", e.Discount, e.VAT); err != nil {
		return journals.PostingRequest{}, err
	}
	if e.Net().IsNegative() {
		return journals.PostingRequest{}, shared.Invalid("discount", "exceeds invoice total")
	}

	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(receivable, e.Net(), "Invoice "+e.Number)
	b.debit(mappings.KeySalesDiscounts, e.Discount, "Discount")
	for _, c := range e.Charges {
		cc := c.CostCenterID
		if cc == nil {
			cc = e.CostCenterID
		}
		b.add(revenueKeys[c.Service], cc, decimal.Zero, c.Amount, string(c.Service))
	}
	b.credit(mappings.KeyVATOutput, e.VAT, "Output VAT")
	return b.request(e, journals.SourceBillingInvoice, "Invoice "+e.Number)
}

// PaymentReceived: Dr cash or bank, Cr the payer's receivable. Advance
// payments without an invoice are credited to patient deposits.
type PaymentReceived struct {
	Document
	Method  Method          `json:"method"`
	Payer   Payer           `json:"payer"`
	Amount  decimal.Decimal `json:"amount"`
	Deposit bool            `json:"deposit"`
}

func (PaymentReceived) Kind() string { return "PAYMENT" }

func (e PaymentReceived) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount); err != nil {
		return journals.PostingRequest{}, err
	}
	cash, err := e.Method.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	counter := mappings.KeyPatientDeposits
	if !e.Deposit {
		if counter, err = e.Payer.key(); err != nil {
			return journals.PostingRequest{}, err
		}
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(cash, e.Amount, "Payment "+e.Number)
	b.credit(counter, e.Amount, "Payment "+e.Number)
	return b.request(e, journals.SourceBillingPayment, "Payment "+e.Number)
}

// CreditNoteIssued: Dr sales returns and output VAT, Cr receivable.
type CreditNoteIssued struct {
	Document
	Payer  Payer           `json:"payer"`
	Amount decimal.Decimal `json:"amount"`
	VAT    decimal.Decimal `json:"vat"`
}

func (CreditNoteIssued) Kind() string { return "CREDIT_NOTE" }

func (e CreditNoteIssued) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount, e.VAT); err != nil {
		return journals.PostingRequest{}, err
	}
	receivable, err := e.Payer.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(mappings.KeySalesReturns, e.Amount, "Credit note "+e.Number)
	b.debit(mappings.KeyVATOutput, e.VAT, "Output VAT reversal")
	b.credit(receivable, cents(e.Amount, e.VAT), "Credit note "+e.Number)
	return b.request(e, journals.SourceBillingCreditNote, "Credit note "+e.Number)
}

// RefundPaid: Dr receivable (or patient deposits), Cr cash or bank.
type RefundPaid struct {
	Document
	Method      Method          `json:"method"`
	Payer       Payer           `json:"payer"`
	Amount      decimal.Decimal `json:"amount"`
	FromDeposit bool            `json:"from_deposit"`
}

func (RefundPaid) Kind() string { return "REFUND" }

func (e RefundPaid) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount); err != nil {
		return journals.PostingRequest{}, err
	}
	cash, err := e.Method.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	counter := mappings.KeyPatientDeposits
	if !e.FromDeposit {
		if counter, err = e.Payer.key(); err != nil {
			return journals.PostingRequest{}, err
		}
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(counter, e.Amount, "Refund "+e.Number)
	b.credit(cash, e.Amount, "Refund "+e.Number)
	return b.request(e, journals.SourceBillingRefund, "Refund "+e.Number)
}
