package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// CountCategory returns the number of ledger entries of the category.
func (t *Tx) CountCategory(ctx context.Context, category model.Category) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("count_category", err, start)
	}()

	const query = `
SELECT COUNT(*)
FROM ledger_entries
WHERE category = ?`

	var count int64
	if err = t.tx.QueryRowContext(ctx, query, string(category)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category entries: %w", err)
	}
	return count, nil
}
