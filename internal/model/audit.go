package model

import "time"

// RunReport is the audited summary of one reconciliation run.
type RunReport struct {
	RunID            string
	Outcome          string
	FailedAt         string
	Reason           string
	StartedAt        time.Time
	FinishedAt       time.Time
	AffectedAccounts uint64
	PurgedEntries    uint64
	ReappliedPoints  int64
	InsertedEntries  uint64
	ClampedAccounts  uint64
	ClampedPoints    int64
}
