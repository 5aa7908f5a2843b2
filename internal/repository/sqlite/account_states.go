package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// AccountStates reads the aggregate total, the category contribution and the
// overall ledger contribution of each requested account. Accounts without an
// aggregate row are reported with HasAggregate unset. Results are ordered by account.
func (t *Tx) AccountStates(ctx context.Context, category model.Category, accounts []string) ([]model.AccountState, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("account_states", err, start)
	}()

	if len(accounts) == 0 {
		return nil, nil
	}

	query := `
WITH requested(account) AS (VALUES ` + placeholders(len(accounts), "(?)") + `)
SELECT
	r.account,
	a.total_points,
	COALESCE((SELECT SUM(l.points) FROM ledger_entries l WHERE l.account = r.account AND l.category = ?), 0),
	COALESCE((SELECT SUM(l.points) FROM ledger_entries l WHERE l.account = r.account), 0)
FROM requested r
LEFT JOIN account_aggregates a ON a.account = r.account
ORDER BY r.account`

	args := append(stringArgs(accounts), string(category))
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account states: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	states := make([]model.AccountState, 0, len(accounts))
	for rows.Next() {
		var (
			state model.AccountState
			total sql.NullInt64
		)
		if err = rows.Scan(&state.Account, &total, &state.DailyPoints, &state.LedgerPoints); err != nil {
			return nil, fmt.Errorf("scan account state: %w", err)
		}
		state.TotalPoints = total.Int64
		state.HasAggregate = total.Valid
		states = append(states, state)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account states: %w", err)
	}
	return states, nil
}
