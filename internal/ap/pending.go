// Package ap exposes procurement payables to the ledger.
package ap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// SupplierInvoiceRepository reads the procurement supplier invoice table.
type SupplierInvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierInvoiceRepository(pool *pgxpool.Pool) *SupplierInvoiceRepository {
	return &SupplierInvoiceRepository{pool: pool}
}

// PendingDocuments lists draft supplier invoices dated in [from, to]. A draft
// has not been posted to the ledger yet, so it blocks closing the range.
func (r *SupplierInvoiceRepository) PendingDocuments(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]shared.PendingDocument, error) {
	rows, err := r.pool.Query(ctx, `SELECT invoice_no, supplier_name, invoice_date, status FROM supplier_invoices
WHERE tenant_id = $1 AND status = 'DRAFT' AND invoice_date BETWEEN $2 AND $3
ORDER BY invoice_date, invoice_no`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []shared.PendingDocument
	for rows.Next() {
		var no, supplier string
		doc := shared.PendingDocument{Source: "PROCUREMENT_SUPPLIER_INVOICE"}
		if err := rows.Scan(&no, &supplier, &doc.Date, &doc.Status); err != nil {
			return nil, err
		}
		doc.Reference = no + " (" + supplier + ")"
		out = append(out, doc)
	}
	return out, rows.Err()
}
