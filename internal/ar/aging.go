package ar

import (
	"sort"
	"time"

	"github.com/odyssey-erp/hospital-ledger/internal/accounting/shared"
)

// BuildAging buckets each invoice's outstanding amount by its age at asOf.
// Settled invoices are skipped and invoices dated after asOf count as current.
func BuildAging(asOf time.Time, invoices []Invoice) AgingReport {
	asOf = shared.DateOnly(asOf)
	byPatient := make(map[int64]*PatientAging)
	report := AgingReport{AsOf: asOf, Patients: []PatientAging{}}
	for _, inv := range invoices {
		outstanding := inv.Outstanding()
		if outstanding.LessThanOrEqual(shared.Tolerance) {
			continue
		}
		days := int(asOf.Sub(shared.DateOnly(inv.InvoiceDate)).Hours() / 24)
		if days < 0 {
			days = 0
		}
		row, ok := byPatient[inv.PatientID]
		if !ok {
			row = &PatientAging{PatientID: inv.PatientID, PatientName: inv.PatientName}
			byPatient[inv.PatientID] = row
		}
		row.Invoices++
		row.Buckets.add(days, outstanding)
		report.Totals.add(days, outstanding)
	}
	for _, row := range byPatient {
		report.Patients = append(report.Patients, *row)
	}
	sort.Slice(report.Patients, func(i, j int) bool {
		a, b := report.Patients[i], report.Patients[j]
		if a.PatientName != b.PatientName {
			return a.PatientName < b.PatientName
		}
		return a.PatientID < b.PatientID
	})
	return report
}
