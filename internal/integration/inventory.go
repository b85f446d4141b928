package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
)

// DispenseCOGS: Dr cost of goods sold, Cr inventory at cost.
type DispenseCOGS struct {
	Document
	Stock Stock           `json:"stock"`
	Cost  decimal.Decimal `json:"cost"`
}

func (DispenseCOGS) Kind() string { return "DISPENSE" }

func (e DispenseCOGS) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	if err := nonNegative("cost", e.Cost); err != nil {
		return journals.PostingRequest{}, err
	}
	inventory, err := e.Stock.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	b.debit(mappings.KeyCOGSPharmacy, e.Cost, "Dispense "+e.Number)
	b.credit(inventory, e.Cost, "Dispense "+e.Number)
	return b.request(e, journals.SourceInventoryCOGS, "Dispense "+e.Number)
}

// StockCountVariance posts a signed count difference: a surplus is Dr
// inventory, Cr inventory gain; a shortage is Dr inventory loss, Cr inventory.
type StockCountVariance struct {
	Document
	Stock    Stock           `json:"stock"`
	Variance decimal.Decimal `json:"variance"`
}

func (StockCountVariance) Kind() string { return "STOCK_COUNT" }

func (e StockCountVariance) Build(ctx context.Context, tenantID uuid.UUID, r Resolver) (journals.PostingRequest, error) {
	if err := e.Document.validate(); err != nil {
		return journals.PostingRequest{}, err
	}
	inventory, err := e.Stock.key()
	if err != nil {
		return journals.PostingRequest{}, err
	}
	b := newBuilder(ctx, tenantID, r, e.Document)
	if e.Variance.IsPositive() {
		b.debit(inventory, e.Variance, "Stock count surplus "+e.Number)
		b.credit(mappings.KeyInventoryGain, e.Variance, "Stock count surplus "+e.Number)
	} else {
		loss := e.Variance.Neg()
		b.debit(mappings.KeyInventoryLoss, loss, "Stock count shortage "+e.Number)
		b.credit(inventory, loss, "Stock count shortage "+e.Number)
	}
	return b.request(e, journals.SourceInventoryStockVariance, "Stock count "+e.Number)
}
