package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
)

// GoodsReceived: Dr inventory, Cr goods received not invoiced.
type GoodsReceived struct {
	Document
	Stock  Stock           `json:"stock"`
	Amount decimal.Decimal `json:"amount"`
}

func (GoodsReceived) Kind() string { return "GRN" }

func (e GoodsReceived) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount); err != nil {
		return journals.PostingRequest{}, err
	}
	inventory, err := e.Stock.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(inventory, e.Amount, "Goods receipt "+e.Number)
	b.credit(mappings.KeyGRNI, e.Amount, "Goods receipt "+e.Number)
	return b.request(e, journals.SourceProcurementGoodsReceipt, "Goods receipt "+e.Number)
}

// SupplierInvoicePosted: Dr GRNI when matched to a receipt (inventory
// otherwise) and input VAT, Cr supplier payables.
type SupplierInvoicePosted struct {
	Document
	Stock          Stock           `json:"stock"`
	Amount         decimal.Decimal `json:"amount"`
	VAT            decimal.Decimal `json:"vat"`
	AgainstReceipt bool            `json:"against_receipt"`
}

func (SupplierInvoicePosted) Kind() string { return "SUPPLIER_INVOICE" }

func (e SupplierInvoicePosted) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount, e.VAT); err != nil {
		return journals.PostingRequest{}, err
	}
	goods := mappings.KeyGRNI
	if !e.AgainstReceipt {
		var err error
		if goods, err = e.Stock.key(); err != nil {
			return journals.PostingRequest{}, err
		}
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(goods, e.Amount, "Supplier invoice "+e.Number)
	b.debit(mappings.KeyVATInput, e.VAT, "Input VAT")
	b.credit(mappings.KeyPayableSuppliers, cents(e.Amount, e.VAT), "Supplier invoice "+e.Number)
	return b.request(e, journals.SourceProcurementSupplierInvoice, "Supplier invoice "+e.Number)
}

// SupplierPaymentPosted: Dr supplier payables, Cr cash or bank.
type SupplierPaymentPosted struct {
	Document
	Method Method          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

func (SupplierPaymentPosted) Kind() string { return "SUPPLIER_PAYMENT" }

func (e SupplierPaymentPosted) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
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
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(mappings.KeyPayableSuppliers, e.Amount, "Supplier payment "+e.Number)
	b.credit(cash, e.Amount, "Supplier payment "+e.Number)
	return b.request(e, journals.SourceProcurementSupplierPayment, "Supplier payment "+e.Number)
}

// PurchaseReturned: Dr supplier payables, Cr inventory and input VAT.
type PurchaseReturned struct {
	Document
	Stock  Stock           `json:"stock"`
	Amount decimal.Decimal `json:"amount"`
	VAT    decimal.Decimal `json:"vat"`
}

func (PurchaseReturned) Kind() string { return "PURCHASE_RETURN" }

func (e PurchaseReturned) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("amount", e.Amount, e.VAT); err != nil {
		return journals.PostingRequest{}, err
	}
	inventory, err := e.Stock.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(mappings.KeyPayableSuppliers, cents(e.Amount, e.VAT), "Purchase return "+e.Number)
	b.credit(inventory, e.Amount, "Purchase return "+e.Number)
	b.credit(mappings.KeyVATInput, e.VAT, "Input VAT reversal")
	return b.request(e, journals.SourceProcurementPurchaseReturn, "Purchase return "+e.Number)
}
