// Package model defines domain models for daily points reconciliation.
package model

import "time"

// StreakCap bounds the points a single check-in can contribute.
const StreakCap = 30

// Category partitions ledger entries by their point-earning mechanism.
type Category string

var (
	// CategoryDaily marks contributions earned by daily check-ins.
	CategoryDaily Category = "daily"
)

// EventNameDailyCheckIn is the contract event folded into daily points.
const EventNameDailyCheckIn = "DailyCheckIn"

// Event is one decoded daily check-in log delivered by the event source.
type Event struct {
	Account      string
	StreakLength int64
	BlockOrdinal uint64
	TxHash       string
	Timestamp    time.Time
}

// AccountSnapshot is the recomputed point summary of one account.
type AccountSnapshot struct {
	Account       string `json:"account"`
	Points        int64  `json:"points"`
	MaxStreakSeen int64  `json:"maxStreakSeen"`
	EventCount    int64  `json:"eventCount"`
}

// Snapshots maps a lowercased account to its snapshot.
type Snapshots map[string]AccountSnapshot

// TotalPoints sums points over all snapshots.
func (s Snapshots) TotalPoints() int64 {
	var total int64
	for _, snap := range s {
		total += snap.Points
	}
	return total
}

// RawTxRecord is the verbatim staged record of one source event.
type RawTxRecord struct {
	Hash        string    `json:"hash"`
	EventName   string    `json:"eventName"`
	BlockNumber uint64    `json:"blockNumber"`
	ArgsJSON    string    `json:"argsJson"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LedgerEntry is one persisted, category-tagged point contribution.
type LedgerEntry struct {
	Account   string
	Points    int64
	Category  Category
	TxHash    string
	CreatedAt time.Time
}

// AccountAggregate is the shared per-account total.
type AccountAggregate struct {
	Account     string
	TotalPoints int64
}

// AccountState is a point-in-time view of an account across the aggregate and ledger tables.
type AccountState struct {
	Account      string `json:"account"`
	TotalPoints  int64  `json:"totalPoints"`
	HasAggregate bool   `json:"hasAggregate"`
	DailyPoints  int64  `json:"dailyPoints"`
	LedgerPoints int64  `json:"ledgerPoints"`
}

// Drift is how far the stored total is from the sum of ledger contributions.
func (s AccountState) Drift() int64 {
	return s.TotalPoints - s.LedgerPoints
}

// Backup captures account states before a reconciliation run mutates the store.
type Backup struct {
	RunID        string         `json:"runId"`
	TakenAt      time.Time      `json:"takenAt"`
	DailyEntries int64          `json:"dailyEntries"`
	Accounts     []AccountState `json:"accounts"`
}

// DailyContribution returns the points a check-in with the given streak earns.
func DailyContribution(streak int64) int64 {
	if streak <= 0 {
		return 0
	}
	return min(streak, StreakCap)
}
