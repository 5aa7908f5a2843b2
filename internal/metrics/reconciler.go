package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilerStageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "stage_total",
		Help:      "Count of reconciliation stages by outcome.",
	}, []string{"stage", "status"})

	reconcilerStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "stage_duration_seconds",
		Help:      "Duration of reconciliation stages.",
		Buckets:   durationBuckets,
	}, []string{"stage", "status"})

	reconcilerBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "batch_total",
		Help:      "Count of processed batches.",
	}, []string{"stage", "status"})

	reconcilerBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "batch_duration_seconds",
		Help:      "Duration of processing one batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage", "status"})

	reconcilerBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "batch_size",
		Help:      "Number of items per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{"stage"})

	reconcilerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "runs_total",
		Help:      "Count of reconciliation runs by outcome.",
	}, []string{"outcome"})

	reconcilerRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "run_duration_seconds",
		Help:      "Duration of reconciliation runs.",
		Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"outcome"})

	reconcilerClampedAccounts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "clamped_accounts_total",
		Help:      "Count of accounts whose total was clamped at zero while removing daily points.",
	})

	reconcilerClampedPoints = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciler",
		Name:      "clamped_points_total",
		Help:      "Points lost to clamping totals at zero.",
	})
)

// Reconciler tracks metrics for reconciliation runs.
type Reconciler struct{}

// NewReconciler creates a Reconciler metrics collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObserveStage records the outcome and duration of a stage.
func (m Reconciler) ObserveStage(stage string, err error, started time.Time) {
	status := statusOf(err)
	reconcilerStageTotal.WithLabelValues(stage, status).Inc()
	reconcilerStageDuration.WithLabelValues(stage, status).Observe(time.Since(started).Seconds())
}

// ObserveBatch records one batch of a stage.
func (m Reconciler) ObserveBatch(stage string, size int, err error, started time.Time) {
	status := statusOf(err)
	reconcilerBatchTotal.WithLabelValues(stage, status).Inc()
	reconcilerBatchDuration.WithLabelValues(stage, status).Observe(time.Since(started).Seconds())
	reconcilerBatchSize.WithLabelValues(stage).Observe(float64(size))
}

// ObserveRun records a finished run.
func (m Reconciler) ObserveRun(outcome string, started time.Time) {
	reconcilerRunsTotal.WithLabelValues(outcome).Inc()
	reconcilerRunDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// ObserveClamped records accounts clamped at zero during removal.
func (m Reconciler) ObserveClamped(accounts int, points int64) {
	reconcilerClampedAccounts.Add(float64(accounts))
	reconcilerClampedPoints.Add(float64(points))
}
