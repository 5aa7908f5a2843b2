package audit

const (
	defaultBatchSize = 1000

	tableRuns   = "points_reconciliation_runs"
	tableLedger = "points_ledger_audit"
)
