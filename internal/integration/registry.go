package integration

import (
	"encoding/json"
	"strings"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

var factories = map[string]func() Event{
	InvoiceIssued{}.Kind():         func() Event { return &InvoiceIssued{} },
	PaymentReceived{}.Kind():       func() Event { return &PaymentReceived{} },
	CreditNoteIssued{}.Kind():      func() Event { return &CreditNoteIssued{} },
	RefundPaid{}.Kind():            func() Event { return &RefundPaid{} },
	GoodsReceived{}.Kind():         func() Event { return &GoodsReceived{} },
	SupplierInvoicePosted{}.Kind(): func() Event { return &SupplierInvoicePosted{} },
	SupplierPaymentPosted{}.Kind(): func() Event { return &SupplierPaymentPosted{} },
	PurchaseReturned{}.Kind():      func() Event { return &PurchaseReturned{} },
	DispenseCOGS{}.Kind():          func() Event { return &DispenseCOGS{} },
	StockCountVariance{}.Kind():    func() Event { return &StockCountVariance{} },
	PayrollAccrued{}.Kind():        func() Event { return &PayrollAccrued{} },
	OpeningBalance{}.Kind():        func() Event { return &OpeningBalance{} },
}

// Kinds lists every event kind accepted by Decode.
func Kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}

// Decode parses a JSON event body for kind.
func Decode(kind string, body []byte) (Event, error) {
	factory, ok := factories[strings.ToUpper(kind)]
	if !ok {
		return nil, shared.Invalidf("kind", "unknown event kind %q", kind)
	}
	evt := factory()
	if err := json.Unmarshal(body, evt); err != nil {
		return nil, shared.Invalidf("body", "decode %s: %v", kind, err)
	}
	return evt, nil
}
