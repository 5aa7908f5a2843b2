package reconciler

import (
	"sort"

	"github.com/goodnatureofminers/dailypoints/internal/evm"
	"github.com/goodnatureofminers/dailypoints/internal/model"
	"github.com/goodnatureofminers/dailypoints/pkg/safe"
)

// Input is the staged hand-off a run reconciles.
type Input struct {
	Snapshots model.Snapshots
	Records   []model.RawTxRecord
}

// plan is the decoded, cross-checked form of an Input.
type plan struct {
	// deltas holds one entry per snapshot account, ordered by account.
	deltas []model.AccountAggregate
	// entries holds one daily ledger row per record, in record order.
	entries []model.LedgerEntry
	points  map[string]int64
	total   int64
}

func (p plan) accounts() []string {
	out := make([]string, 0, len(p.deltas))
	for _, d := range p.deltas {
		out = append(out, d.Account)
	}
	return out
}

// buildPlan decodes every record and checks that the records and the snapshot
// describe the same per-account points.
func buildPlan(in Input) (plan, error) {
	var (
		entries = make([]model.LedgerEntry, 0, len(in.Records))
		sums    = make(map[string]int64)
		counts  = make(map[string]int64)
	)
	for i, rec := range in.Records {
		checkIn, err := evm.DecodeRecord(rec)
		if err != nil {
			return plan{}, malformedf("record %d: %v", i, err)
		}
		hash, err := evm.NormalizeTxHash(rec.Hash)
		if err != nil {
			return plan{}, malformedf("record %d: %v", i, err)
		}

		points := model.DailyContribution(checkIn.Streak)
		sum, err := safe.AddInt64(sums[checkIn.Account], points)
		if err != nil {
			return plan{}, malformedf("record %d: points of %s: %v", i, checkIn.Account, err)
		}
		sums[checkIn.Account] = sum
		counts[checkIn.Account]++

		entries = append(entries, model.LedgerEntry{
			Account:   checkIn.Account,
			Points:    points,
			Category:  model.CategoryDaily,
			TxHash:    hash,
			CreatedAt: rec.CreatedAt.UTC(),
		})
	}

	deltas := make([]model.AccountAggregate, 0, len(in.Snapshots))
	for key, snap := range in.Snapshots {
		if key != snap.Account {
			return plan{}, malformedf("snapshot key %q holds account %q", key, snap.Account)
		}
		if normalized, err := evm.NormalizeAddress(key); err != nil || normalized != key {
			return plan{}, malformedf("snapshot key %q is not a lowercased address", key)
		}
		if snap.Points < 0 {
			return plan{}, malformedf("snapshot %s has negative points %d", key, snap.Points)
		}
		if sums[key] != snap.Points {
			return plan{}, malformedf("snapshot %s has %d points, records sum to %d", key, snap.Points, sums[key])
		}
		if counts[key] != snap.EventCount {
			return plan{}, malformedf("snapshot %s counts %d events, found %d records", key, snap.EventCount, counts[key])
		}
		deltas = append(deltas, model.AccountAggregate{Account: key, TotalPoints: snap.Points})
	}
	for account := range sums {
		if _, ok := in.Snapshots[account]; !ok {
			return plan{}, malformedf("records of %s have no snapshot", account)
		}
	}
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Account < deltas[j].Account
	})

	total, err := safe.SumInt64(valuesOf(sums)...)
	if err != nil {
		return plan{}, malformedf("total points: %v", err)
	}

	return plan{deltas: deltas, entries: entries, points: sums, total: total}, nil
}

func valuesOf(m map[string]int64) []int64 {
	out := make([]int64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
