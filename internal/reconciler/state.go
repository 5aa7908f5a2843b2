package reconciler

import (
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// State is a stage of a reconciliation run.
type State string

const (
	StateStarted                State = "STARTED"
	StateBackupTaken            State = "BACKUP_TAKEN"
	StateContributionsRemoved   State = "CONTRIBUTIONS_REMOVED"
	StateRemovalVerified        State = "REMOVAL_VERIFIED"
	StateCategoryPurged         State = "CATEGORY_PURGED"
	StateContributionsReapplied State = "CONTRIBUTIONS_REAPPLIED"
	StateReapplyVerified        State = "REAPPLY_VERIFIED"
	StateCommitted              State = "COMMITTED"
	StateRolledBack             State = "ROLLED_BACK"
)

// Outcome is the terminal result of a run.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
)

// Stats counts what a run did to the store.
type Stats struct {
	AffectedAccounts int
	SnapshotAccounts int
	PurgedEntries    int64
	RemovalUpdates   int64
	ReappliedPoints  int64
	InsertedEntries  int64
	ClampedAccounts  int
	ClampedPoints    int64
	BackupPath       string
}

// Result reports one reconciliation run. A rolled back run carries the stage
// it failed in and the reason; nothing it did is visible in the store.
type Result struct {
	RunID      string
	Outcome    Outcome
	FailedAt   State
	Reason     error
	Stats      Stats
	Entries    []model.LedgerEntry
	StartedAt  time.Time
	FinishedAt time.Time
}

// Committed reports whether the run's changes are durable.
func (r Result) Committed() bool {
	return r.Outcome == OutcomeCommitted
}

// State returns the terminal state of the run.
func (r Result) State() State {
	if r.Committed() {
		return StateCommitted
	}
	return StateRolledBack
}
