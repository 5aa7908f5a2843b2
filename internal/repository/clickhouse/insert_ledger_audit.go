package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

const insertLedgerAuditQuery = `
INSERT INTO points_ledger_audit (
	run_id,
	account,
	points,
	category,
	tx_hash,
	created_at
) VALUES`

// InsertLedgerAudit stores ledger entries inserted by a run.
func (r *Repository) InsertLedgerAudit(ctx context.Context, runID string, entries []model.LedgerEntry) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_ledger_audit", err, start)
	}()

	if len(entries) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertLedgerAuditQuery)
	if err != nil {
		return fmt.Errorf("prepare ledger audit batch: %w", err)
	}

	for _, entry := range entries {
		if err = batch.Append(
			runID,
			entry.Account,
			entry.Points,
			string(entry.Category),
			entry.TxHash,
			entry.CreatedAt.UTC(),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append ledger audit entry: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert ledger audit: %w", err)
	}
	return nil
}
