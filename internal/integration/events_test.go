package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// keyResolver maps every key to 1000 + its position in mappings.Keys.
type keyResolver struct {
	missing map[mappings.Key]bool
	calls   map[mappings.Key]int
}

func newKeyResolver() *keyResolver {
	return &keyResolver{missing: map[mappings.Key]bool{}, calls: map[mappings.Key]int{}}
}

func (r *keyResolver) Resolve(_ context.Context, tenantID uuid.UUID, key mappings.Key) (accounts.Account, error) {
	r.calls[key]++
	if r.missing[key] {
		return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key), Reason: "no mapping"}
	}
	for i, k := range mappings.Keys {
		if k == key {
			return accounts.Account{ID: int64(1000 + i), TenantID: tenantID, IsActive: true}, nil
		}
	}
	return accounts.Account{}, &shared.UnmappedSystemAccountError{TenantID: tenantID, Key: string(key)}
}

func accountFor(key mappings.Key) int64 {
	for i, k := range mappings.Keys {
		if k == key {
			return int64(1000 + i)
		}
	}
	return 0
}

func amt(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func doc(id int64) Document {
	return Document{ID: id, Number: "DOC-1", Date: NewDate(2024, 3, 5), Actor: "billing"}
}

func ptr(v int64) *int64 { return &v }

func allEvents() []Event {
	return []Event{
		InvoiceIssued{Document: doc(1), Charges: []ChargeLine{
			{Service: ServiceOutpatient, Amount: amt("100")},
			{Service: ServiceLaboratory, Amount: amt("50")},
		}, Discount: amt("10"), VAT: amt("14")},
		PaymentReceived{Document: doc(2), Method: MethodCash, Amount: amt("200")},
		CreditNoteIssued{Document: doc(3), Amount: amt("40"), VAT: amt("4")},
		RefundPaid{Document: doc(4), Method: MethodBank, Amount: amt("25")},
		GoodsReceived{Document: doc(5), Stock: StockPharmacy, Amount: amt("750")},
		SupplierInvoicePosted{Document: doc(6), Amount: amt("500"), VAT: amt("50"), AgainstReceipt: true},
		SupplierPaymentPosted{Document: doc(7), Amount: amt("550")},
		PurchaseReturned{Document: doc(8), Stock: StockMedicalSupplies, Amount: amt("60"), VAT: amt("6")},
		DispenseCOGS{Document: doc(9), Cost: amt("33.33")},
		StockCountVariance{Document: doc(10), Variance: amt("-12.5")},
		PayrollAccrued{Document: doc(11), Lines: []PayrollLine{{CostCenterID: ptr(5), Gross: amt("1000")}, {CostCenterID: ptr(6), Gross: amt("2000")}}},
		OpeningBalance{Document: doc(12), Lines: []OpeningLine{{AccountID: 10, Debit: amt("500")}, {AccountID: 20, Credit: amt("300")}}},
	}
}

func TestEveryEventBuildsBalancedRequest(t *testing.T) {
	tenant := uuid.New()
	seen := map[string]bool{}
	for _, evt := range allEvents() {
		t.Run(evt.Kind(), func(t *testing.T) {
			req, err := evt.Build(context.Background(), tenant, newKeyResolver())
			require.NoError(t, err)
			require.NoError(t, req.Normalize().Validate())
			require.Equal(t, tenant, req.TenantID)
			require.NotNil(t, req.SourceID)
			require.Regexp(t, "^"+evt.Kind()+":[0-9]+$", *req.SourceID)
			require.True(t, req.SourceModule.Valid())
			require.NotEqual(t, journals.SourceClosing, req.SourceModule)
		})
		seen[evt.Kind()] = true
	}
	require.Len(t, seen, len(Kinds()))
}

func TestInvoiceIssuedLines(t *testing.T) {
	evt := allEvents()[0].(InvoiceIssued)
	evt.CostCenterID = ptr(5)
	evt.Charges[1].CostCenterID = ptr(7)

	req, err := evt.Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.Equal(t, "INVOICE:1", *req.SourceID)
	require.Equal(t, journals.SourceBillingInvoice, req.SourceModule)
	require.Len(t, req.Lines, 5)

	require.Equal(t, accountFor(mappings.KeyReceivablePatients), req.Lines[0].AccountID)
	require.True(t, req.Lines[0].Debit.Equal(amt("154")))
	require.Equal(t, accountFor(mappings.KeySalesDiscounts), req.Lines[1].AccountID)
	require.Equal(t, accountFor(mappings.KeyRevenueOutpatient), req.Lines[2].AccountID)
	require.Equal(t, int64(5), *req.Lines[2].CostCenterID)
	require.Equal(t, accountFor(mappings.KeyRevenueLaboratory), req.Lines[3].AccountID)
	require.Equal(t, int64(7), *req.Lines[3].CostCenterID)
	require.Equal(t, accountFor(mappings.KeyVATOutput), req.Lines[4].AccountID)
}

func TestSubCentAmountsStillBalance(t *testing.T) {
	events := []Event{
		InvoiceIssued{Document: doc(1), Charges: []ChargeLine{
			{Service: ServiceOutpatient, Amount: amt("10.005")},
			{Service: ServicePharmacy, Amount: amt("10.005")},
		}},
		InvoiceIssued{Document: doc(2), Charges: []ChargeLine{
			{Service: ServiceLaboratory, Amount: amt("33.335")},
			{Service: ServiceRadiology, Amount: amt("33.335")},
			{Service: ServiceInpatient, Amount: amt("33.335")},
		}, Discount: amt("1.005"), VAT: amt("10.9985")},
		CreditNoteIssued{Document: doc(3), Amount: amt("10.005"), VAT: amt("0.005")},
		SupplierInvoicePosted{Document: doc(4), Amount: amt("99.995"), VAT: amt("10.995"), AgainstReceipt: true},
		PurchaseReturned{Document: doc(5), Amount: amt("5.555"), VAT: amt("0.555")},
	}
	for _, evt := range events {
		t.Run(evt.Kind(), func(t *testing.T) {
			req, err := evt.Build(context.Background(), uuid.New(), newKeyResolver())
			require.NoError(t, err)
			debit, credit := decimal.Zero, decimal.Zero
			for _, l := range req.Lines {
				require.True(t, l.Debit.Equal(shared.Round2(l.Debit)))
				require.True(t, l.Credit.Equal(shared.Round2(l.Credit)))
				debit, credit = debit.Add(l.Debit), credit.Add(l.Credit)
			}
			require.True(t, debit.Equal(credit), "debit %s credit %s", debit, credit)
			require.NoError(t, req.Normalize().Validate())
		})
	}

	req, err := events[0].Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.True(t, req.Lines[0].Debit.Equal(amt("20.02")))
}

func TestInvoiceInsurancePayerAndZeroLinesSkipped(t *testing.T) {
	evt := InvoiceIssued{Document: doc(1), Payer: PayerInsurance, Charges: []ChargeLine{{Service: ServiceInpatient, Amount: amt("80")}}}
	req, err := evt.Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.Len(t, req.Lines, 2)
	require.Equal(t, accountFor(mappings.KeyReceivableInsurance), req.Lines[0].AccountID)
}

func TestInvoiceRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		evt   InvoiceIssued
		field string
	}{
		"unknown service":   {InvoiceIssued{Document: doc(1), Charges: []ChargeLine{{Service: "SPA", Amount: amt("1")}}}, "charges[0].service"},
		"negative charge":   {InvoiceIssued{Document: doc(1), Charges: []ChargeLine{{Service: ServiceOutpatient, Amount: amt("-1")}}}, "charges[0].amount"},
		"discount too big":  {InvoiceIssued{Document: doc(1), Charges: []ChargeLine{{Service: ServiceOutpatient, Amount: amt("5")}}, Discount: amt("6")}, "discount"},
		"missing document":  {InvoiceIssued{Charges: []ChargeLine{{Service: ServiceOutpatient, Amount: amt("5")}}}, "document.id"},
		"unknown payer":     {InvoiceIssued{Document: doc(1), Payer: "EMPLOYER"}, "payer"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.evt.Build(context.Background(), uuid.New(), newKeyResolver())
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestPaymentIntoDeposits(t *testing.T) {
	req, err := PaymentReceived{Document: doc(2), Amount: amt("300"), Deposit: true}.Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.Equal(t, accountFor(mappings.KeyBankMain), req.Lines[0].AccountID)
	require.Equal(t, accountFor(mappings.KeyPatientDeposits), req.Lines[1].AccountID)
}

func TestStockCountVarianceDirection(t *testing.T) {
	r := newKeyResolver()
	surplus, err := StockCountVariance{Document: doc(10), Variance: amt("8")}.Build(context.Background(), uuid.New(), r)
	require.NoError(t, err)
	require.Equal(t, accountFor(mappings.KeyInventoryPharmacy), surplus.Lines[0].AccountID)
	require.Equal(t, accountFor(mappings.KeyInventoryGain), surplus.Lines[1].AccountID)

	shortage, err := StockCountVariance{Document: doc(10), Variance: amt("-8")}.Build(context.Background(), uuid.New(), r)
	require.NoError(t, err)
	require.Equal(t, accountFor(mappings.KeyInventoryLoss), shortage.Lines[0].AccountID)
	require.True(t, shortage.Lines[0].Debit.Equal(amt("8")))
	require.Equal(t, accountFor(mappings.KeyInventoryPharmacy), shortage.Lines[1].AccountID)
}

func TestOpeningBalanceDifferenceGoesToEquity(t *testing.T) {
	req, err := allEvents()[11].Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.Len(t, req.Lines, 3)
	last := req.Lines[2]
	require.Equal(t, accountFor(mappings.KeyOpeningBalanceEquity), last.AccountID)
	require.True(t, last.Credit.Equal(amt("200")))
	require.Equal(t, journals.SourceOpeningBalance, req.SourceModule)

	balanced := OpeningBalance{Document: doc(12), Lines: []OpeningLine{{AccountID: 10, Debit: amt("5")}, {AccountID: 20, Credit: amt("5")}}}
	req, err = balanced.Build(context.Background(), uuid.New(), newKeyResolver())
	require.NoError(t, err)
	require.Len(t, req.Lines, 2)
}

func TestZeroAmountsPostNothing(t *testing.T) {
	_, err := GoodsReceived{Document: doc(5), Amount: amt("0.001")}.Build(context.Background(), uuid.New(), newKeyResolver())
	require.ErrorIs(t, err, ErrNothingToPost)
}

func TestResolverCalledOncePerKey(t *testing.T) {
	r := newKeyResolver()
	_, err := allEvents()[10].Build(context.Background(), uuid.New(), r)
	require.NoError(t, err)
	require.Equal(t, 1, r.calls[mappings.KeySalariesExpense])
}

func TestDecode(t *testing.T) {
	evt, err := Decode("payment", []byte(`{"id":42,"number":"RCPT-42","date":"2024-03-05","method":"CASH","amount":"125.50"}`))
	require.NoError(t, err)
	p, ok := evt.(*PaymentReceived)
	require.True(t, ok)
	require.Equal(t, int64(42), p.ID)
	require.Equal(t, NewDate(2024, 3, 5), p.Date)
	require.True(t, p.Amount.Equal(amt("125.50")))

	_, err = Decode("unknown", []byte(`{}`))
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = Decode("PAYMENT", []byte(`{"date":"05/03/2024"}`))
	require.ErrorIs(t, err, shared.ErrValidation)
}
