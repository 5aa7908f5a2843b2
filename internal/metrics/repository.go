package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Count of repository operations.",
	}, []string{"store", "operation", "status"})
	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of repository operations.",
		Buckets:   durationBuckets,
	}, []string{"store", "operation", "status"})
)

// Repository tracks metrics for the operations of one store.
type Repository struct {
	store string
}

// NewSQLiteRepository creates a Repository collector for the ledger store.
func NewSQLiteRepository() *Repository {
	return &Repository{store: "sqlite"}
}

// NewClickhouseRepository creates a Repository collector for the audit store.
func NewClickhouseRepository() *Repository {
	return &Repository{store: "clickhouse"}
}

// NewStaging creates a Repository collector for staged files.
func NewStaging() *Repository {
	return &Repository{store: "staging"}
}

// Observe records duration and status of a repository operation.
func (m Repository) Observe(operation string, err error, started time.Time) {
	store := m.store
	if store == "" {
		store = "unknown"
	}
	status := statusOf(err)

	repositoryRequestsTotal.WithLabelValues(store, operation, status).Inc()
	repositoryRequestDuration.WithLabelValues(store, operation, status).Observe(time.Since(started).Seconds())
}
