package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceModule identifies the origin of an entry.
type SourceModule string

const (
	SourceManual                     SourceModule = "MANUAL"
	SourceOpeningBalance             SourceModule = "OPENING_BALANCE"
	SourceBillingInvoice             SourceModule = "BILLING_INVOICE"
	SourceBillingPayment             SourceModule = "BILLING_PAYMENT"
	SourceBillingCreditNote          SourceModule = "BILLING_CREDIT_NOTE"
	SourceBillingRefund              SourceModule = "BILLING_REFUND"
	SourceProcurementGoodsReceipt    SourceModule = "PROCUREMENT_GOODS_RECEIPT"
	SourceProcurementSupplierInvoice SourceModule = "PROCUREMENT_SUPPLIER_INVOICE"
	SourceProcurementSupplierPayment SourceModule = "PROCUREMENT_SUPPLIER_PAYMENT"
	SourceProcurementPurchaseReturn  SourceModule = "PROCUREMENT_PURCHASE_RETURN"
	SourceInventoryCOGS              SourceModule = "INVENTORY_COGS"
	SourceInventoryStockVariance     SourceModule = "INVENTORY_STOCK_VARIANCE"
	SourcePayroll                    SourceModule = "PAYROLL"
	SourceClosing                    SourceModule = "CLOSING"
)

var sourceModules = map[SourceModule]struct{}{
	SourceManual: {}, SourceOpeningBalance: {},
	SourceBillingInvoice: {}, SourceBillingPayment: {}, SourceBillingCreditNote: {}, SourceBillingRefund: {},
	SourceProcurementGoodsReceipt: {}, SourceProcurementSupplierInvoice: {}, SourceProcurementSupplierPayment: {}, SourceProcurementPurchaseReturn: {},
	SourceInventoryCOGS: {}, SourceInventoryStockVariance: {}, SourcePayroll: {}, SourceClosing: {},
}

// Valid reports whether m is a known source module.
func (m SourceModule) Valid() bool {
	_, ok := sourceModules[m]
	return ok
}

// UserDeletable reports whether entries of this source may be deleted by users.
func (m SourceModule) UserDeletable() bool {
	return m == SourceManual || m == SourceOpeningBalance
}

// Entry is a posted accounting entry header with its lines.
type Entry struct {
	ID           int64        `json:"id"`
	TenantID     uuid.UUID    `json:"tenant_id"`
	YearID       int64        `json:"year_id"`
	PeriodID     int64        `json:"period_id"`
	EntryDate    time.Time    `json:"entry_date"`
	Description  string       `json:"description"`
	SourceModule SourceModule `json:"source_module"`
	SourceID     *string      `json:"source_id,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Lines        []Line       `json:"lines,omitempty"`
}

// Line stores a debit or credit amount for an account.
type Line struct {
	ID           int64           `json:"id"`
	EntryID      int64           `json:"entry_id"`
	AccountID    int64           `json:"account_id"`
	CostCenterID *int64          `json:"cost_center_id,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description,omitempty"`
}
