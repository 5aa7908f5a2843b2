// Package fold turns check-in events into per-account point snapshots.
package fold

import (
	"fmt"

	"github.com/goodnatureofminers/dailypoints/internal/evm"
	"github.com/goodnatureofminers/dailypoints/internal/model"
	"github.com/goodnatureofminers/dailypoints/pkg/safe"
)

// ErrMalformedEvent rejects a fold input.
var ErrMalformedEvent = evm.ErrMalformed

// Fold accumulates events into snapshots keyed by lowercased account.
// The result does not depend on event order. A malformed event rejects the whole input.
func Fold(events []model.Event) (model.Snapshots, error) {
	out := make(model.Snapshots)
	for i, raw := range events {
		ev, err := evm.ValidateEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		snap := out[ev.Account]
		snap.Account = ev.Account
		points, err := safe.AddInt64(snap.Points, model.DailyContribution(ev.StreakLength))
		if err != nil {
			return nil, fmt.Errorf("event %d account %s: %w", i, ev.Account, err)
		}
		snap.Points = points
		snap.EventCount++
		snap.MaxStreakSeen = max(snap.MaxStreakSeen, ev.StreakLength)
		out[ev.Account] = snap
	}
	return out, nil
}
