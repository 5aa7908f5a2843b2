package reconciler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
	"github.com/goodnatureofminers/dailypoints/pkg/batcher"
	"github.com/goodnatureofminers/dailypoints/pkg/safe"
	"go.uber.org/zap"
)

// run carries the state of one reconciliation between stages.
type run struct {
	tx       Tx
	runID    string
	logger   *zap.Logger
	metrics  Metrics
	backups  BackupWriter
	now      func() time.Time
	strict   bool
	pageSize int
	accounts *batcher.Driver
	records  *batcher.Driver

	plan       plan
	daily      []string
	dailyCount int64
	touched    []string
	before     map[string]model.AccountState

	// afterRemoval and afterReapply hold expected totals of accounts that
	// have an aggregate row at that point of the run.
	afterRemoval map[string]int64
	afterReapply map[string]int64
	clamped      map[string]int64

	stats Stats
}

func (rn *run) takeBackup(ctx context.Context) error {
	daily, err := rn.tx.CategoryAccounts(ctx, model.CategoryDaily)
	if err != nil {
		return fmt.Errorf("discover affected accounts: %w", err)
	}
	count, err := rn.tx.CountCategory(ctx, model.CategoryDaily)
	if err != nil {
		return fmt.Errorf("count daily entries: %w", err)
	}
	rn.daily = daily
	rn.dailyCount = count
	rn.touched = union(daily, rn.plan.accounts())

	states, err := rn.readStates(ctx, StateBackupTaken, rn.touched)
	if err != nil {
		return err
	}
	rn.before = make(map[string]model.AccountState, len(states))
	for _, st := range states {
		rn.before[st.Account] = st
	}

	path, err := rn.backups.WriteBackup(ctx, model.Backup{
		RunID:        rn.runID,
		TakenAt:      rn.now(),
		DailyEntries: count,
		Accounts:     states,
	})
	if err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	rn.stats.AffectedAccounts = len(daily)
	rn.stats.BackupPath = path
	rn.logger.Info("backup taken",
		zap.String("path", path),
		zap.Int("affected_accounts", len(daily)),
		zap.Int("touched_accounts", len(rn.touched)),
		zap.Int64("daily_entries", count),
	)
	return nil
}

func (rn *run) removeContributions(ctx context.Context) error {
	rn.afterRemoval = make(map[string]int64, len(rn.daily))
	rn.clamped = make(map[string]int64)

	return batcher.ForEach(ctx, rn.accounts, rn.daily, func(ctx context.Context, batch []string) error {
		started := time.Now()
		err := rn.removeBatch(ctx, batch)
		rn.metrics.ObserveBatch(string(StateContributionsRemoved), len(batch), err, started)
		return err
	})
}

func (rn *run) removeBatch(ctx context.Context, batch []string) error {
	const stage = StateContributionsRemoved

	var changed int64
	for _, account := range batch {
		st := rn.before[account]
		remaining := st.TotalPoints - st.DailyPoints
		if remaining < 0 {
			if rn.strict {
				return verificationf(stage, "account %s total %d is below its daily contribution %d",
					account, st.TotalPoints, st.DailyPoints)
			}
			rn.clamped[account] = -remaining
			remaining = 0
		}
		if !st.HasAggregate {
			continue
		}
		rn.afterRemoval[account] = remaining
		if remaining != st.TotalPoints {
			changed++
		}
	}

	updated, err := rn.tx.SubtractCategoryPoints(ctx, model.CategoryDaily, batch)
	if err != nil {
		return fmt.Errorf("remove daily contributions: %w", err)
	}
	if updated != changed {
		return verificationf(stage, "update changed %d rows, expected %d", updated, changed)
	}
	rn.stats.RemovalUpdates += updated

	totals, err := rn.tx.TotalPoints(ctx, batch)
	if err != nil {
		return fmt.Errorf("re-read totals: %w", err)
	}
	var observed int64
	for _, account := range batch {
		if total, ok := totals[account]; ok && total != rn.before[account].TotalPoints {
			observed++
		}
	}
	if observed != updated {
		return verificationf(stage, "%d totals changed, update reported %d", observed, updated)
	}
	return checkTotals(stage, batch, totals, rn.expectedAfterRemoval)
}

func (rn *run) verifyRemoval(ctx context.Context) error {
	if err := rn.checkAll(ctx, StateRemovalVerified, rn.daily, rn.expectedAfterRemoval); err != nil {
		return err
	}

	var points int64
	for _, account := range sortedKeys(rn.clamped) {
		amount := rn.clamped[account]
		points += amount
		rn.logger.Warn("daily removal clamped at zero",
			zap.String("account", account),
			zap.Int64("total_points", rn.before[account].TotalPoints),
			zap.Int64("daily_points", rn.before[account].DailyPoints),
			zap.Int64("clamped_points", amount),
		)
	}
	rn.stats.ClampedAccounts = len(rn.clamped)
	rn.stats.ClampedPoints = points
	if len(rn.clamped) > 0 {
		rn.metrics.ObserveClamped(len(rn.clamped), points)
	}
	return nil
}

func (rn *run) purgeCategory(ctx context.Context) error {
	deleted, err := rn.tx.DeleteCategory(ctx, model.CategoryDaily)
	if err != nil {
		return fmt.Errorf("purge daily entries: %w", err)
	}
	if deleted != rn.dailyCount {
		return verificationf(StateCategoryPurged, "deleted %d daily entries, discovered %d", deleted, rn.dailyCount)
	}
	rn.stats.PurgedEntries = deleted
	return nil
}

func (rn *run) reapplyContributions(ctx context.Context) error {
	rn.afterReapply = make(map[string]int64, len(rn.plan.deltas))

	err := batcher.ForEach(ctx, rn.accounts, rn.plan.deltas, func(ctx context.Context, batch []model.AccountAggregate) error {
		started := time.Now()
		err := rn.reapplyBatch(ctx, batch)
		rn.metrics.ObserveBatch(string(StateContributionsReapplied), len(batch), err, started)
		return err
	})
	if err != nil {
		return err
	}

	return batcher.ForEach(ctx, rn.records, rn.plan.entries, func(ctx context.Context, batch []model.LedgerEntry) error {
		started := time.Now()
		err := rn.insertBatch(ctx, batch)
		rn.metrics.ObserveBatch("insert_ledger_entries", len(batch), err, started)
		return err
	})
}

func (rn *run) reapplyBatch(ctx context.Context, batch []model.AccountAggregate) error {
	const stage = StateContributionsReapplied

	accounts := make([]string, 0, len(batch))
	for _, d := range batch {
		accounts = append(accounts, d.Account)
	}

	old, err := rn.tx.TotalPoints(ctx, accounts)
	if err != nil {
		return fmt.Errorf("read totals: %w", err)
	}
	upserted, err := rn.tx.AddPoints(ctx, batch)
	if err != nil {
		return fmt.Errorf("reapply daily contributions: %w", err)
	}
	if upserted != int64(len(batch)) {
		return verificationf(stage, "upsert touched %d rows, expected %d", upserted, len(batch))
	}
	totals, err := rn.tx.TotalPoints(ctx, accounts)
	if err != nil {
		return fmt.Errorf("re-read totals: %w", err)
	}

	for _, d := range batch {
		want, err := safe.AddInt64(old[d.Account], d.TotalPoints)
		if err != nil {
			return verificationf(stage, "account %s: %v", d.Account, err)
		}
		got, ok := totals[d.Account]
		if !ok {
			return verificationf(stage, "account %s has no aggregate after upsert", d.Account)
		}
		if got != want {
			return verificationf(stage, "account %s total %d, expected %d + %d", d.Account, got, old[d.Account], d.TotalPoints)
		}
		rn.afterReapply[d.Account] = want
		rn.stats.ReappliedPoints += d.TotalPoints
	}
	return nil
}

func (rn *run) insertBatch(ctx context.Context, batch []model.LedgerEntry) error {
	inserted, err := rn.tx.InsertLedgerEntries(ctx, batch)
	if err != nil {
		return fmt.Errorf("insert daily entries: %w", err)
	}
	if inserted != int64(len(batch)) {
		return verificationf(StateContributionsReapplied, "inserted %d daily entries, expected %d", inserted, len(batch))
	}
	rn.stats.InsertedEntries += inserted
	return nil
}

func (rn *run) verifyReapply(ctx context.Context) error {
	const stage = StateReapplyVerified

	if err := rn.checkAll(ctx, stage, rn.touched, rn.expectedFinal); err != nil {
		return err
	}

	states, err := rn.readStates(ctx, stage, rn.touched)
	if err != nil {
		return err
	}
	for _, st := range states {
		before := rn.before[st.Account]
		want := before.Drift() + rn.clamped[st.Account]
		if got := st.Drift(); got != want {
			return verificationf(stage, "account %s drift %d, expected %d", st.Account, got, want)
		}
		if st.DailyPoints != rn.plan.points[st.Account] {
			return verificationf(stage, "account %s daily ledger sums to %d, expected %d",
				st.Account, st.DailyPoints, rn.plan.points[st.Account])
		}
	}
	return nil
}

func (rn *run) commit(context.Context) error {
	if err := rn.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (rn *run) expectedAfterRemoval(account string) (int64, bool) {
	total, ok := rn.afterRemoval[account]
	return total, ok
}

func (rn *run) expectedFinal(account string) (int64, bool) {
	if total, ok := rn.afterReapply[account]; ok {
		return total, true
	}
	return rn.expectedAfterRemoval(account)
}

// checkAll re-reads the totals of accounts page by page and compares them to expected.
func (rn *run) checkAll(ctx context.Context, stage State, accounts []string, expected func(string) (int64, bool)) error {
	for _, page := range batcher.Chunks(accounts, rn.pageSize) {
		totals, err := rn.tx.TotalPoints(ctx, page)
		if err != nil {
			return fmt.Errorf("read totals: %w", err)
		}
		if err := checkTotals(stage, page, totals, expected); err != nil {
			return err
		}
	}
	return nil
}

// readStates reads account states page by page, failing on a missing or unexpected account.
func (rn *run) readStates(ctx context.Context, stage State, accounts []string) ([]model.AccountState, error) {
	out := make([]model.AccountState, 0, len(accounts))
	for _, page := range batcher.Chunks(accounts, rn.pageSize) {
		states, err := rn.tx.AccountStates(ctx, model.CategoryDaily, page)
		if err != nil {
			return nil, fmt.Errorf("read account states: %w", err)
		}
		if len(states) != len(page) {
			return nil, verificationf(stage, "read %d account states, requested %d", len(states), len(page))
		}
		for i, st := range states {
			if st.Account != page[i] {
				return nil, verificationf(stage, "account state %d is %s, requested %s", i, st.Account, page[i])
			}
		}
		out = append(out, states...)
	}
	return out, nil
}

func checkTotals(stage State, accounts []string, totals map[string]int64, expected func(string) (int64, bool)) error {
	for _, account := range accounts {
		want, wantRow := expected(account)
		got, gotRow := totals[account]
		if wantRow != gotRow {
			return verificationf(stage, "account %s aggregate present=%t, expected present=%t", account, gotRow, wantRow)
		}
		if got != want {
			return verificationf(stage, "account %s total %d, expected %d", account, got, want)
		}
	}
	return nil
}

// union returns the sorted distinct accounts of a and b.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
