package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// CategoryAccounts returns the distinct accounts owning at least one ledger
// entry of the category, in ascending order.
func (t *Tx) CategoryAccounts(ctx context.Context, category model.Category) ([]string, error) {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("category_accounts", err, start)
	}()

	const query = `
SELECT DISTINCT account
FROM ledger_entries
WHERE category = ?
ORDER BY account`

	rows, err := t.tx.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("query category accounts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var accounts []string
	for rows.Next() {
		var account string
		if err = rows.Scan(&account); err != nil {
			return nil, fmt.Errorf("scan category account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category accounts: %w", err)
	}
	return accounts, nil
}
