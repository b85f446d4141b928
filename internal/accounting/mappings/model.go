package mappings

import (
	"time"

	"github.com/google/uuid"
)

// Key names a logical system account used by automated postings.
type Key string

const (
	KeyCashMain                 Key = "CASH_MAIN"
	KeyBankMain                 Key = "BANK_MAIN"
	KeyReceivablePatients       Key = "RECEIVABLE_PATIENTS"
	KeyReceivableInsurance      Key = "RECEIVABLE_INSURANCE"
	KeyPayableSuppliers         Key = "PAYABLE_SUPPLIERS"
	KeyInventoryPharmacy        Key = "INVENTORY_PHARMACY"
	KeyInventoryMedicalSupplies Key = "INVENTORY_MEDICAL_SUPPLIES"
	KeyGRNI                     Key = "GRNI"
	KeyVATInput                 Key = "VAT_INPUT"
	KeyVATOutput                Key = "VAT_OUTPUT"
	KeyRevenueOutpatient        Key = "REVENUE_OUTPATIENT"
	KeyRevenueInpatient         Key = "REVENUE_INPATIENT"
	KeyRevenuePharmacy          Key = "REVENUE_PHARMACY"
	KeyRevenueLaboratory        Key = "REVENUE_LABORATORY"
	KeyRevenueRadiology         Key = "REVENUE_RADIOLOGY"
	KeySalesDiscounts           Key = "SALES_DISCOUNTS"
	KeySalesReturns             Key = "SALES_RETURNS"
	KeyCOGSPharmacy             Key = "COGS_PHARMACY"
	KeyInventoryGain            Key = "INVENTORY_GAIN"
	KeyInventoryLoss            Key = "INVENTORY_LOSS"
	KeyPatientDeposits          Key = "PATIENT_DEPOSITS"
	KeyRetainedEarnings         Key = "RETAINED_EARNINGS"
	KeyOpeningBalanceEquity     Key = "OPENING_BALANCE_EQUITY"
	KeySalariesExpense          Key = "SALARIES_EXPENSE"
	KeySalariesPayable          Key = "SALARIES_PAYABLE"
)

// Keys is the fixed set of logical keys.
var Keys = []Key{
	KeyCashMain, KeyBankMain, KeyReceivablePatients, KeyReceivableInsurance, KeyPayableSuppliers,
	KeyInventoryPharmacy, KeyInventoryMedicalSupplies, KeyGRNI, KeyVATInput, KeyVATOutput,
	KeyRevenueOutpatient, KeyRevenueInpatient, KeyRevenuePharmacy, KeyRevenueLaboratory, KeyRevenueRadiology,
	KeySalesDiscounts, KeySalesReturns, KeyCOGSPharmacy, KeyInventoryGain, KeyInventoryLoss,
	KeyPatientDeposits, KeyRetainedEarnings, KeyOpeningBalanceEquity, KeySalariesExpense, KeySalariesPayable,
}

// Known reports whether k belongs to the fixed key set.
func (k Key) Known() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Mapping links a logical key to a tenant's ledger account.
type Mapping struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	Key       Key       `json:"key"`
	AccountID int64     `json:"account_id"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}
