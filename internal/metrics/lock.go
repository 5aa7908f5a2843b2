package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lockOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lock",
		Name:      "operations_total",
		Help:      "Count of run lock operations.",
	}, []string{"operation", "status"})
	lockOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "lock",
		Name:      "operation_duration_seconds",
		Help:      "Duration of run lock operations.",
		Buckets:   durationBuckets,
	}, []string{"operation", "status"})
)

// Lock tracks metrics for the run lock.
type Lock struct{}

// NewLock creates a Lock metrics collector.
func NewLock() *Lock {
	return &Lock{}
}

func (m Lock) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	lockOperationsTotal.WithLabelValues(operation, status).Inc()
	lockOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
