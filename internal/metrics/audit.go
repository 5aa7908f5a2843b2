package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	auditExportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "export_total",
		Help:      "Count of audit export batches.",
	}, []string{"table", "status"})
	auditExportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "export_duration_seconds",
		Help:      "Duration of exporting one audit batch.",
		Buckets:   durationBuckets,
	}, []string{"table", "status"})
	auditExportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "exported_rows_total",
		Help:      "Count of rows written to the audit store.",
	}, []string{"table"})
)

// Audit tracks metrics for the audit exporter.
type Audit struct{}

// NewAudit creates an Audit metrics collector.
func NewAudit() *Audit {
	return &Audit{}
}

// ObserveExport records one exported batch. Rows count only on success.
func (m Audit) ObserveExport(table string, rows int, err error, started time.Time) {
	status := statusOf(err)
	auditExportTotal.WithLabelValues(table, status).Inc()
	auditExportDuration.WithLabelValues(table, status).Observe(time.Since(started).Seconds())
	if err == nil {
		auditExportRows.WithLabelValues(table).Add(float64(rows))
	}
}
