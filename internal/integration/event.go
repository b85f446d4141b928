// Package integration turns business documents from billing, procurement,
// inventory and payroll into ledger postings.
package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// ErrNothingToPost is returned by Build when every amount of the document is zero.
var ErrNothingToPost = errors.New("integration: nothing to post")

// Resolver maps a system account key to the tenant's account.
type Resolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key mappings.Key) (accounts.Account, error)
}

// Event is a business document that produces one ledger entry. Kind is
// stable and prefixes the entry's source id, so handling the same document
// twice replaces the earlier entry.
type Event interface {
	Kind() string
	Build(ctx context.Context, tenantID uuid.UUID, resolver Resolver) (journals.PostingRequest, error)
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("integration: date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

// Document carries the header shared by every event.
type Document struct {
	ID           int64  `json:"id"`
	Number       string `json:"number"`
	Date         Date   `json:"date"`
	CostCenterID *int64 `json:"cost_center_id,omitempty"`
	Actor        string `json:"actor,omitempty"`
}

func (d Document) validate() error {
	if d.ID <= 0 {
		return shared.Invalid("document.id", "required")
	}
	if d.Date.IsZero() {
		return shared.Invalid("document.date", "required")
	}
	return nil
}

// SourceID is the idempotency key of the entry posted for this document.
func SourceID(e Event, doc Document) string {
	return fmt.Sprintf("%s:%d", e.Kind(), doc.ID)
}

// Method is how money moved.
type Method string

const (
	MethodCash Method = "CASH"
	MethodBank Method = "BANK"
)

func (m Method) key() (mappings.Key, error) {
	switch m {
	case MethodCash:
		return mappings.KeyCashMain, nil
	case MethodBank, "":
		return mappings.KeyBankMain, nil
	}
	return "", shared.Invalidf("method", "unknown payment method %q", m)
}

// Payer selects the receivable an invoice is charged to.
type Payer string

const (
	PayerPatient   Payer = "PATIENT"
	PayerInsurance Payer = "INSURANCE"
)

func (p Payer) key() (mappings.Key, error) {
	switch p {
	case PayerPatient, "":
		return mappings.KeyReceivablePatients, nil
	case PayerInsurance:
		return mappings.KeyReceivableInsurance, nil
	}
	return "", shared.Invalidf("payer", "unknown payer %q", p)
}

// Stock selects the inventory account of a movement.
type Stock string

const (
	StockPharmacy        Stock = "PHARMACY"
	StockMedicalSupplies Stock = "MEDICAL_SUPPLIES"
)

func (s Stock) key() (mappings.Key, error) {
	switch s {
	case StockPharmacy, "":
		return mappings.KeyInventoryPharmacy, nil
	case StockMedicalSupplies:
		return mappings.KeyInventoryMedicalSupplies, nil
	}
	return "", shared.Invalidf("stock", "unknown stock %q", s)
}

func nonNegative(field string, amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if a.IsNegative() {
			return shared.Invalid(field, "must not be negative")
		}
	}
	return nil
}

// cents sums amounts after rounding each to 2 decimals, the way the builder
// rounds the lines it appends, so a counter-line always matches them.
func cents(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(shared.Round2(a))
	}
	return total
}

// builder accumulates lines, resolving each key once.
type builder struct {
	ctx      context.Context
	tenantID uuid.UUID
	resolver Resolver
	doc      Document
	resolved map[mappings.Key]int64
	lines    []journals.PostingLine
	err      error
}

func newBuilder(ctx context.Context, tenantID uuid.UUID, resolver Resolver, doc Document) *builder {
	return &builder{ctx: ctx, tenantID: tenantID, resolver: resolver, doc: doc, resolved: map[mappings.Key]int64{}}
}

func (b *builder) account(key mappings.Key) int64 {
	if id, ok := b.resolved[key]; ok {
		return id
	}
	acct, err := b.resolver.Resolve(b.ctx, b.tenantID, key)
	if err != nil {
		b.err = err
		return 0
	}
	b.resolved[key] = acct.ID
	return acct.ID
}

func (b *builder) add(key mappings.Key, costCenterID *int64, debit, credit decimal.Decimal, desc string) {
	if b.err != nil {
		return
	}
	if shared.Round2(debit).IsZero() && shared.Round2(credit).IsZero() {
		return
	}
	id := b.account(key)
	b.direct(id, costCenterID, debit, credit, desc)
}

// direct appends a line for an explicit account.
func (b *builder) direct(accountID int64, costCenterID *int64, debit, credit decimal.Decimal, desc string) {
	if b.err != nil {
		return
	}
	debit, credit = shared.Round2(debit), shared.Round2(credit)
	if debit.IsZero() && credit.IsZero() {
		return
	}
	b.lines = append(b.lines, journals.PostingLine{
		AccountID:    accountID,
		CostCenterID: costCenterID,
		Debit:        debit,
		Credit:       credit,
		Description:  desc,
	})
}

func (b *builder) debit(key mappings.Key, amount decimal.Decimal, desc string) {
	b.add(key, b.doc.CostCenterID, amount, decimal.Zero, desc)
}

func (b *builder) credit(key mappings.Key, amount decimal.Decimal, desc string) {
	b.add(key, b.doc.CostCenterID, decimal.Zero, amount, desc)
}

func (b *builder) request(e Event, module journals.SourceModule, description string) (journals.PostingRequest, error) {
	if b.err != nil {
		return journals.PostingRequest{}, b.err
	}
	if len(b.lines) == 0 {
		return journals.PostingRequest{}, ErrNothingToPost
	}
	sourceID := SourceID(e, b.doc)
	return journals.PostingRequest{
		TenantID:     b.tenantID,
		EntryDate:    b.doc.Date.Time,
		Description:  description,
		SourceModule: module,
		SourceID:     &sourceID,
		CreatedBy:    b.doc.Actor,
		Lines:        b.lines,
	}, nil
}
