package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// AddPoints adds each delta to its account total, creating missing aggregate
// rows. Returns the number of upserted rows.
func (t *Tx) AddPoints(ctx context.Context, deltas []model.AccountAggregate) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("add_points", err, start)
	}()

	if len(deltas) == 0 {
		return 0, nil
	}

	query := `
INSERT INTO account_aggregates (account, total_points)
VALUES ` + placeholders(len(deltas), "(?, ?)") + `
ON CONFLICT (account) DO UPDATE SET total_points = account_aggregates.total_points + excluded.total_points`

	args := make([]any, 0, 2*len(deltas))
	for _, d := range deltas {
		args = append(args, d.Account, d.TotalPoints)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("add points rows affected: %w", err)
	}
	return affected, nil
}
