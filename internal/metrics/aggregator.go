package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregatorLoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "shard_load_total",
		Help:      "Count of event shard loads.",
	}, []string{"status"})
	aggregatorLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "shard_load_duration_seconds",
		Help:      "Duration of loading one event shard.",
		Buckets:   durationBuckets,
	}, []string{"status"})
	aggregatorEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "events_loaded_total",
		Help:      "Count of check-in events loaded from shards.",
	})
	aggregatorDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "duplicate_events_total",
		Help:      "Count of duplicate events dropped across overlapping shards.",
	})
	aggregatorFoldTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "fold_total",
		Help:      "Count of fold runs.",
	}, []string{"status"})
	aggregatorFoldDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "fold_duration_seconds",
		Help:      "Duration of folding events into snapshots.",
		Buckets:   durationBuckets,
	}, []string{"status"})
	aggregatorAccounts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "snapshot_accounts",
		Help:      "Number of accounts in the last folded snapshot.",
	})
)

// Aggregator tracks metrics for snapshot aggregation.
type Aggregator struct{}

// NewAggregator creates an Aggregator metrics collector.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (m Aggregator) ObserveLoad(err error, events int, started time.Time) {
	status := statusOf(err)
	aggregatorLoadTotal.WithLabelValues(status).Inc()
	aggregatorLoadDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	if err == nil {
		aggregatorEventsTotal.Add(float64(events))
	}
}

func (m Aggregator) ObserveFold(err error, accounts int, started time.Time) {
	status := statusOf(err)
	aggregatorFoldTotal.WithLabelValues(status).Inc()
	aggregatorFoldDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	if err == nil {
		aggregatorAccounts.Set(float64(accounts))
	}
}

func (m Aggregator) ObserveDuplicates(dropped int) {
	aggregatorDuplicatesTotal.Add(float64(dropped))
}
