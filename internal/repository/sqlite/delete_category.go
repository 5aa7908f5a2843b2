package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// DeleteCategory removes every ledger entry of the category and returns how many were deleted.
func (t *Tx) DeleteCategory(ctx context.Context, category model.Category) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("delete_category", err, start)
	}()

	const query = `DELETE FROM ledger_entries WHERE category = ?`

	res, err := t.tx.ExecContext(ctx, query, string(category))
	if err != nil {
		return 0, fmt.Errorf("delete category entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete category rows affected: %w", err)
	}
	return deleted, nil
}
