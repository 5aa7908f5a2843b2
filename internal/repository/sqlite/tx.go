package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Tx is one open ledger transaction. Every mutation stays invisible to other
// connections until Commit.
type Tx struct {
	tx      *sql.Tx
	metrics Metrics
}

// Commit makes the transaction durable.
func (t *Tx) Commit() error {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("commit", err, start)
	}()

	if err = t.tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback() error {
	start := time.Now()
	var err error
	defer func() {
		t.metrics.Observe("rollback", err, start)
	}()

	if err = t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			err = nil
			return nil
		}
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}
