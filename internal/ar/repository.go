package ar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// InvoiceSource is the billing collaborator that exposes open patient invoices.
type InvoiceSource interface {
	OpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]Invoice, error)
}

// BillingRepository reads the billing tables shared with the ledger database.
type BillingRepository struct {
	pool *pgxpool.Pool
}

func NewBillingRepository(pool *pgxpool.Pool) *BillingRepository {
	return &BillingRepository{pool: pool}
}

// OpenInvoices returns issued and partially paid invoices with their posted payments.
func (r *BillingRepository) OpenInvoices(ctx context.Context, tenantID uuid.UUID) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.invoice_no, i.patient_id, i.patient_name, i.invoice_date, i.net_amount,
       COALESCE((SELECT SUM(p.amount) FROM patient_payments p WHERE p.invoice_id = i.id AND p.status = 'POSTED'), 0),
       i.status
FROM patient_invoices i
WHERE i.tenant_id = $1 AND i.status IN ('ISSUED','PARTIALLY_PAID')
ORDER BY i.invoice_date, i.id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNo, &inv.PatientID, &inv.PatientName, &inv.InvoiceDate, &inv.NetAmount, &inv.Paid, &inv.Status); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// PendingDocuments lists draft patient invoices dated in [from, to]; they block period and year close.
func (r *BillingRepository) PendingDocuments(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]shared.PendingDocument, error) {
	rows, err := r.pool.Query(ctx, `SELECT invoice_no, invoice_date, status FROM patient_invoices
WHERE tenant_id = $1 AND status = 'DRAFT' AND invoice_date BETWEEN $2 AND $3
ORDER BY invoice_date, invoice_no`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []shared.PendingDocument
	for rows.Next() {
		doc := shared.PendingDocument{Source: "BILLING_INVOICE"}
		if err := rows.Scan(&doc.Reference, &doc.Date, &doc.Status); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}
