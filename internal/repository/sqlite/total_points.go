package sqlite

import (
	"context"
	"fmt"
	"time"
)

// TotalPoints reads the aggregate totals of the requested accounts. Accounts
// without an aggregate row are absent from the result.
func (t *Tx) TotalPoints(ctx context.Context, accounts []string) (map[string]int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("total_points", err, start)
	}()

	totals := make(map[string]int64, len(accounts))
	if len(accounts) == 0 {
		return totals, nil
	}

	query := `
SELECT account, total_points
FROM account_aggregates
WHERE account IN (` + placeholders(len(accounts), "?") + `)`

	rows, err := t.tx.QueryContext(ctx, query, stringArgs(accounts)...)
	if err != nil {
		return nil, fmt.Errorf("query total points: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var (
			account string
			total   int64
		)
		if err = rows.Scan(&account, &total); err != nil {
			return nil, fmt.Errorf("scan total points: %w", err)
		}
		totals[account] = total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate total points: %w", err)
	}
	return totals, nil
}
