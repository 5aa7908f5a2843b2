package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// SubtractCategoryPoints lowers each account's total by its current category
// contribution, clamped at zero. Only rows whose value actually changes are
// written; their count is returned.
func (t *Tx) SubtractCategoryPoints(ctx context.Context, category model.Category, accounts []string) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("subtract_category_points", err, start)
	}()

	if len(accounts) == 0 {
		return 0, nil
	}

	query := `
UPDATE account_aggregates
SET total_points = MAX(0, account_aggregates.total_points - contribution.points)
FROM (
	SELECT account, SUM(points) AS points
	FROM ledger_entries
	WHERE category = ? AND account IN (` + placeholders(len(accounts), "?") + `)
	GROUP BY account
) AS contribution
WHERE account_aggregates.account = contribution.account
	AND account_aggregates.total_points <> MAX(0, account_aggregates.total_points - contribution.points)`

	args := append([]any{string(category)}, stringArgs(accounts)...)
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("subtract category points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("subtract category points rows affected: %w", err)
	}
	return affected, nil
}
