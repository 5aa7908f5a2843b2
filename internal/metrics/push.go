package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every registered collector to a Prometheus Pushgateway under job.
// Batch commands exit before a scrape could reach them.
func Push(ctx context.Context, url, job string) error {
	return PushFrom(ctx, prometheus.DefaultGatherer, url, job)
}

// PushFrom is Push with an explicit gatherer.
func PushFrom(ctx context.Context, gatherer prometheus.Gatherer, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
