package ar

import (
	"io"
	"strconv"
	"time"

	"github.com/odyssey-erp/hospital-ledger/internal/platform/export"
)

// WriteAgingCSV prints one row per patient followed by the totals.
func WriteAgingCSV(w io.Writer, report AgingReport) error {
	s := export.NewStreamer(w)
	if err := s.Comment("Report: Receivables Aging"); err != nil {
		return err
	}
	if err := s.Comment("As of: %s  Patients: %d  Outstanding: %s", report.AsOf.Format(time.DateOnly), len(report.Patients), s.Display(report.Totals.Total)); err != nil {
		return err
	}
	if err := s.Row("Patient ID", "Patient", "Invoices", "0-30", "31-60", "61-90", "91-120", "121+", "Total"); err != nil {
		return err
	}
	for _, p := range report.Patients {
		if err := s.Row(append([]string{strconv.FormatInt(p.PatientID, 10), p.PatientName, strconv.Itoa(p.Invoices)}, bucketCells(p.Buckets)...)...); err != nil {
			return err
		}
	}
	if err := s.Row(append([]string{"", "Total", ""}, bucketCells(report.Totals)...)...); err != nil {
		return err
	}
	return s.Close()
}

func bucketCells(b Buckets) []string {
	return []string{
		export.Amount(b.Days0To30),
		export.Amount(b.Days31To60),
		export.Amount(b.Days61To90),
		export.Amount(b.Days91To120),
		export.Amount(b.Days121Plus),
		export.Amount(b.Total),
	}
}
