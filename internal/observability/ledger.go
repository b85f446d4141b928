package observability

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics mencatat metrik domain: posting jurnal, pemeriksaan konsistensi, dan tutup buku.
type LedgerMetrics struct {
	postings    *prometheus.CounterVec
	consistency *prometheus.CounterVec
	closings    *prometheus.CounterVec
}

// NewLedgerMetrics mendaftarkan metrik domain pada registerer.
func NewLedgerMetrics(registerer prometheus.Registerer) *LedgerMetrics {
	postings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_postings_total",
		Help: "Journal postings by source module and result.",
	}, []string{"source_module", "result"})
	consistency := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_consistency_failures_total",
		Help: "Internal consistency check failures by check name.",
	}, []string{"check"})
	closings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_year_closings_total",
		Help: "Financial year close attempts by result.",
	}, []string{"result"})
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	registerer.MustRegister(postings, consistency, closings)
	return &LedgerMetrics{postings: postings, consistency: consistency, closings: closings}
}

// ObservePosting menambah hitungan posting. result: created, replaced, deleted, rejected, failed.
func (m *LedgerMetrics) ObservePosting(sourceModule, result string) {
	if m == nil {
		return
	}
	m.postings.WithLabelValues(sourceModule, result).Inc()
}

// ConsistencyFailure menandai pemeriksaan total yang tidak seimbang.
func (m *LedgerMetrics) ConsistencyFailure(check string) {
	if m == nil {
		return
	}
	m.consistency.WithLabelValues(check).Inc()
}

// ObserveClosing mencatat hasil proses tutup tahun.
func (m *LedgerMetrics) ObserveClosing(result string) {
	if m == nil {
		return
	}
	m.closings.WithLabelValues(result).Inc()
}
