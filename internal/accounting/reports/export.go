package reports

import (
	"io"
	"time"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/export"
)

// WriteTrialBalanceCSV streams the trial balance as CSV with a metadata header.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	s := export.NewStreamer(w)
	if err := s.Comment("Report: Trial Balance"); err != nil {
		return err
	}
	if err := s.Comment("From: %s  To: %s  Cost center: %s", dateToken(tb.Filter.From), dateToken(tb.Filter.To), idToken(tb.Filter.CostCenterID)); err != nil {
		return err
	}
	if err := s.Comment("Accounts: %d  Total debit: %s  Total credit: %s", len(tb.Rows), s.Display(tb.TotalDebit), s.Display(tb.TotalCredit)); err != nil {
		return err
	}
	if err := s.Row("Account Code", "Account Name", "Type", "Debit", "Credit", "Balance"); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		if err := s.Row(row.Code, row.Name, string(row.Type), export.Amount(row.Debit), export.Amount(row.Credit), export.Amount(row.Balance)); err != nil {
			return err
		}
	}
	if err := s.Row("", "Total", "", export.Amount(tb.TotalDebit), export.Amount(tb.TotalCredit), ""); err != nil {
		return err
	}
	return s.Close()
}

func csvFilename(kind string, at time.Time) string {
	return kind + "-" + at.Format("20060102") + ".csv"
}
