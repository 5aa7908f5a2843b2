package staging

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

type snapshotWire struct {
	Account       *string `json:"account"`
	Points        *int64  `json:"points"`
	MaxStreakSeen *int64  `json:"maxStreakSeen"`
	EventCount    *int64  `json:"eventCount"`
}

type rawRecordWire struct {
	Hash        *string    `json:"hash"`
	EventName   *string    `json:"eventName"`
	BlockNumber *uint64    `json:"blockNumber"`
	ArgsJSON    *string    `json:"argsJson"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func decodeSnapshots(wire map[string]snapshotWire) (model.Snapshots, error) {
	if wire == nil {
		return nil, fmt.Errorf("%w: snapshot document is null", ErrSchemaViolation)
	}

	out := make(model.Snapshots, len(wire))
	for key, w := range wire {
		switch {
		case w.Account == nil:
			return nil, violation(key, "missing account")
		case w.Points == nil:
			return nil, violation(key, "missing points")
		case w.MaxStreakSeen == nil:
			return nil, violation(key, "missing maxStreakSeen")
		case w.EventCount == nil:
			return nil, violation(key, "missing eventCount")
		}
		if key != strings.ToLower(key) {
			return nil, violation(key, "key is not lowercased")
		}
		if *w.Account != key {
			return nil, violation(key, fmt.Sprintf("account %q does not match key", *w.Account))
		}
		if *w.Points < 0 || *w.MaxStreakSeen < 0 || *w.EventCount < 0 {
			return nil, violation(key, "negative counter")
		}
		if *w.EventCount <= (1<<62)/model.StreakCap && *w.Points > *w.EventCount*model.StreakCap {
			return nil, violation(key, fmt.Sprintf("points %d exceed cap for %d events", *w.Points, *w.EventCount))
		}

		out[key] = model.AccountSnapshot{
			Account:       *w.Account,
			Points:        *w.Points,
			MaxStreakSeen: *w.MaxStreakSeen,
			EventCount:    *w.EventCount,
		}
	}
	return out, nil
}

func decodeRawRecords(wire []rawRecordWire) ([]model.RawTxRecord, error) {
	if wire == nil {
		return nil, fmt.Errorf("%w: raw record document is null", ErrSchemaViolation)
	}

	out := make([]model.RawTxRecord, 0, len(wire))
	for i, w := range wire {
		key := fmt.Sprintf("record %d", i)
		switch {
		case w.Hash == nil:
			return nil, violation(key, "missing hash")
		case w.EventName == nil:
			return nil, violation(key, "missing eventName")
		case w.BlockNumber == nil:
			return nil, violation(key, "missing blockNumber")
		case w.ArgsJSON == nil:
			return nil, violation(key, "missing argsJson")
		case w.CreatedAt == nil:
			return nil, violation(key, "missing createdAt")
		}
		out = append(out, model.RawTxRecord{
			Hash:        *w.Hash,
			EventName:   *w.EventName,
			BlockNumber: *w.BlockNumber,
			ArgsJSON:    *w.ArgsJSON,
			CreatedAt:   w.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func violation(where, what string) error {
	return fmt.Errorf("%w: %s: %s", ErrSchemaViolation, where, what)
}
