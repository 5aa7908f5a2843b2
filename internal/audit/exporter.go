// Package audit exports reconciliation results to the analytics store.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
	"github.com/goodnatureofminers/dailypoints/internal/reconciler"
	"github.com/goodnatureofminers/dailypoints/pkg/batcher"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

type Exporter struct {
	repo      Repository
	metrics   Metrics
	limiter   ratelimit.Limiter
	batchSize int
	logger    *zap.Logger
}

// NewExporter builds an Exporter. A non-positive rps disables throttling.
func NewExporter(repo Repository, metrics Metrics, batchSize, rps int, logger *zap.Logger) (*Exporter, error) {
	if repo == nil {
		return nil, errors.New("audit repository is required")
	}
	if metrics == nil {
		return nil, errors.New("audit metrics is required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		repo:      repo,
		metrics:   metrics,
		limiter:   limiter,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Export writes the run summary and, for committed runs, the inserted ledger entries.
func (e *Exporter) Export(ctx context.Context, res reconciler.Result) error {
	report := Report(res)

	e.limiter.Take()
	started := time.Now()
	err := e.repo.InsertRunReport(ctx, report)
	e.metrics.ObserveExport(tableRuns, 1, err, started)
	if err != nil {
		return fmt.Errorf("export run %s: %w", res.RunID, err)
	}

	if !res.Committed() {
		return nil
	}

	for i, chunk := range batcher.Chunks(res.Entries, e.batchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.limiter.Take()
		started := time.Now()
		err := e.repo.InsertLedgerAudit(ctx, res.RunID, chunk)
		e.metrics.ObserveExport(tableLedger, len(chunk), err, started)
		if err != nil {
			return fmt.Errorf("export run %s ledger chunk %d: %w", res.RunID, i, err)
		}
	}

	e.logger.Debug("audit exported",
		zap.String("run_id", res.RunID),
		zap.Int("entries", len(res.Entries)),
	)
	return nil
}

// Report flattens a reconciliation result into its audit row.
func Report(res reconciler.Result) model.RunReport {
	report := model.RunReport{
		RunID:            res.RunID,
		Outcome:          string(res.Outcome),
		StartedAt:        res.StartedAt,
		FinishedAt:       res.FinishedAt,
		AffectedAccounts: uint64(max(res.Stats.AffectedAccounts, 0)),
		PurgedEntries:    uint64(max(res.Stats.PurgedEntries, 0)),
		ReappliedPoints:  res.Stats.ReappliedPoints,
		InsertedEntries:  uint64(max(res.Stats.InsertedEntries, 0)),
		ClampedAccounts:  uint64(max(res.Stats.ClampedAccounts, 0)),
		ClampedPoints:    res.Stats.ClampedPoints,
	}
	if !res.Committed() {
		report.FailedAt = string(res.FailedAt)
		if res.Reason != nil {
			report.Reason = res.Reason.Error()
		}
	}
	return report
}
