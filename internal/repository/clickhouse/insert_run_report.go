package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

const insertRunReportQuery = `
INSERT INTO points_reconciliation_runs (
	run_id,
	outcome,
	failed_at,
	reason,
	started_at,
	finished_at,
	affected_accounts,
	purged_entries,
	reapplied_points,
	inserted_entries,
	clamped_accounts,
	clamped_points
) VALUES`

// InsertRunReport stores the summary row of one reconciliation run.
func (r *Repository) InsertRunReport(ctx context.Context, report model.RunReport) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_run_report", err, start)
	}()

	batch, err := r.conn.PrepareBatch(ctx, insertRunReportQuery)
	if err != nil {
		return fmt.Errorf("prepare run report batch: %w", err)
	}

	if err = batch.Append(
		report.RunID,
		report.Outcome,
		report.FailedAt,
		report.Reason,
		report.StartedAt.UTC(),
		report.FinishedAt.UTC(),
		report.AffectedAccounts,
		report.PurgedEntries,
		report.ReappliedPoints,
		report.InsertedEntries,
		report.ClampedAccounts,
		report.ClampedPoints,
	); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("append run report: %w", err)
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert run report: %w", err)
	}
	return nil
}
