package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// InsertLedgerEntries appends ledger rows and returns how many were inserted.
func (t *Tx) InsertLedgerEntries(ctx context.Context, entries []model.LedgerEntry) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("insert_ledger_entries", err, start)
	}()

	if len(entries) == 0 {
		return 0, nil
	}

	query := `
INSERT INTO ledger_entries (account, points, category, tx_hash, created_at)
VALUES ` + placeholders(len(entries), "(?, ?, ?, ?, ?)")

	args := make([]any, 0, 5*len(entries))
	for _, e := range entries {
		args = append(args, e.Account, e.Points, string(e.Category), e.TxHash, toMillis(e.CreatedAt))
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert ledger entries: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert ledger entries rows affected: %w", err)
	}
	return inserted, nil
}
