package ar

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus mirrors the billing module's patient invoice lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// Invoice is an issued patient invoice together with what has been paid against it.
type Invoice struct {
	ID          int64           `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	PatientID   int64           `json:"patient_id"`
	PatientName string          `json:"patient_name"`
	InvoiceDate time.Time       `json:"invoice_date"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Paid        decimal.Decimal `json:"paid"`
	Status      InvoiceStatus   `json:"status"`
}

// Outstanding is the unpaid remainder of the invoice.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.NetAmount.Sub(i.Paid)
}

// Buckets holds outstanding amounts by days since invoice date.
type Buckets struct {
	Days0To30   decimal.Decimal `json:"days_0_30"`
	Days31To60  decimal.Decimal `json:"days_31_60"`
	Days61To90  decimal.Decimal `json:"days_61_90"`
	Days91To120 decimal.Decimal `json:"days_91_120"`
	Days121Plus decimal.Decimal `json:"days_121_plus"`
	Total       decimal.Decimal `json:"total"`
}

func (b *Buckets) add(days int, amount decimal.Decimal) {
	switch {
	case days <= 30:
		b.Days0To30 = b.Days0To30.Add(amount)
	case days <= 60:
		b.Days31To60 = b.Days31To60.Add(amount)
	case days <= 90:
		b.Days61To90 = b.Days61To90.Add(amount)
	case days <= 120:
		b.Days91To120 = b.Days91To120.Add(amount)
	default:
		b.Days121Plus = b.Days121Plus.Add(amount)
	}
	b.Total = b.Total.Add(amount)
}

// PatientAging is one patient's row in the aging report.
type PatientAging struct {
	PatientID   int64   `json:"patient_id"`
	PatientName string  `json:"patient_name"`
	Invoices    int     `json:"invoices"`
	Buckets     Buckets `json:"buckets"`
}

// AgingReport is the receivables aging as of a date.
type AgingReport struct {
	AsOf     time.Time      `json:"as_of"`
	Patients []PatientAging `json:"patients"`
	Totals   Buckets        `json:"totals"`
}
