package provision

import (
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
)

// ChartAccount is one row of a seed chart. Parents must precede their children.
type ChartAccount struct {
	Code   string
	Name   string
	Type   accounts.AccountType
	Parent string
	Key    mappings.Key
}

// DefaultHospitalChart covers every system account key with a conventional code.
var DefaultHospitalChart = []ChartAccount{
	{Code: "1000", Name: "Assets", Type: accounts.AccountTypeAsset},
	{Code: "1100", Name: "Cash on Hand", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyCashMain},
	{Code: "1110", Name: "Bank Operating Account", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyBankMain},
	{Code: "1200", Name: "Patient Receivables", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyReceivablePatients},
	{Code: "1210", Name: "Insurance Receivables", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyReceivableInsurance},
	{Code: "1290", Name: "Allowance for Doubtful Receivables", Type: accounts.AccountTypeContraAsset, Parent: "1000"},
	{Code: "1300", Name: "Pharmacy Inventory", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyInventoryPharmacy},
	{Code: "1310", Name: "Medical Supplies Inventory", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyInventoryMedicalSupplies},
	{Code: "1400", Name: "VAT Input", Type: accounts.AccountTypeAsset, Parent: "1000", Key: mappings.KeyVATInput},
	{Code: "1500", Name: "Medical Equipment", Type: accounts.AccountTypeAsset, Parent: "1000"},
	{Code: "1590", Name: "Accumulated Depreciation", Type: accounts.AccountTypeContraAsset, Parent: "1000"},

	{Code: "2000", Name: "Liabilities", Type: accounts.AccountTypeLiability},
	{Code: "2100", Name: "Supplier Payables", Type: accounts.AccountTypeLiability, Parent: "2000", Key: mappings.KeyPayableSuppliers},
	{Code: "2110", Name: "Goods Received Not Invoiced", Type: accounts.AccountTypeLiability, Parent: "2000", Key: mappings.KeyGRNI},
	{Code: "2200", Name: "VAT Output", Type: accounts.AccountTypeLiability, Parent: "2000", Key: mappings.KeyVATOutput},
	{Code: "2300", Name: "Patient Deposits", Type: accounts.AccountTypeLiability, Parent: "2000", Key: mappings.KeyPatientDeposits},
	{Code: "2400", Name: "Salaries Payable", Type: accounts.AccountTypeLiability, Parent: "2000", Key: mappings.KeySalariesPayable},

	{Code: "3000", Name: "Equity", Type: accounts.AccountTypeEquity},
	{Code: "3100", Name: "Retained Earnings", Type: accounts.AccountTypeEquity, Parent: "3000", Key: mappings.KeyRetainedEarnings},
	{Code: "3200", Name: "Opening Balance Equity", Type: accounts.AccountTypeEquity, Parent: "3000", Key: mappings.KeyOpeningBalanceEquity},

	{Code: "4000", Name: "Operating Revenue", Type: accounts.AccountTypeRevenue},
	{Code: "4100", Name: "Outpatient Services", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyRevenueOutpatient},
	{Code: "4200", Name: "Inpatient Services", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyRevenueInpatient},
	{Code: "4300", Name: "Pharmacy Sales", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyRevenuePharmacy},
	{Code: "4400", Name: "Laboratory Services", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyRevenueLaboratory},
	{Code: "4500", Name: "Radiology Services", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyRevenueRadiology},
	{Code: "4800", Name: "Inventory Count Gains", Type: accounts.AccountTypeRevenue, Parent: "4000", Key: mappings.KeyInventoryGain},
	{Code: "4900", Name: "Patient Discounts", Type: accounts.AccountTypeContraRevenue, Parent: "4000", Key: mappings.KeySalesDiscounts},
	{Code: "4910", Name: "Patient Returns and Refunds", Type: accounts.AccountTypeContraRevenue, Parent: "4000", Key: mappings.KeySalesReturns},

	{Code: "5000", Name: "Operating Expenses", Type: accounts.AccountTypeExpense},
	{Code: "5100", Name: "Cost of Pharmacy Sales", Type: accounts.AccountTypeExpense, Parent: "5000", Key: mappings.KeyCOGSPharmacy},
	{Code: "5200", Name: "Salaries and Wages", Type: accounts.AccountTypeExpense, Parent: "5000", Key: mappings.KeySalariesExpense},
	{Code: "5300", Name: "Inventory Count Losses", Type: accounts.AccountTypeExpense, Parent: "5000", Key: mappings.KeyInventoryLoss},
	{Code: "5400", Name: "Depreciation Expense", Type: accounts.AccountTypeExpense, Parent: "5000"},
	{Code: "5500", Name: "Medical Supplies Used", Type: accounts.AccountTypeExpense, Parent: "5000"},
}
