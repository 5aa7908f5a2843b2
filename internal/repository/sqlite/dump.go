package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// Aggregates reads every aggregate row ordered by account.
func (r *Repository) Aggregates(ctx context.Context) ([]model.AccountAggregate, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("aggregates", err, start)
	}()

	const query = `
SELECT account, total_points
FROM account_aggregates
ORDER BY account`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var out []model.AccountAggregate
	for rows.Next() {
		var a model.AccountAggregate
		if err = rows.Scan(&a.Account, &a.TotalPoints); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return out, nil
}

// LedgerEntries reads every ledger row in a stable order that ignores the
// surrogate id, so two equal ledgers compare equal.
func (r *Repository) LedgerEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("ledger_entries", err, start)
	}()

	const query = `
SELECT account, points, category, tx_hash, created_at
FROM ledger_entries
ORDER BY account, category, created_at, tx_hash, points`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var out []model.LedgerEntry
	for rows.Next() {
		var (
			e         model.LedgerEntry
			category  string
			createdAt int64
		)
		if err = rows.Scan(&e.Account, &e.Points, &category, &e.TxHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Category = model.Category(category)
		e.CreatedAt = fromMillis(createdAt)
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return out, nil
}
