package reconciler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/evm"
	"github.com/goodnatureofminers/dailypoints/internal/model"
)

const (
	alice = "0x00000000000000000000000000000000000000a1"
	bob   = "0x00000000000000000000000000000000000000b2"
	carol = "0x00000000000000000000000000000000000000c3"
	dave  = "0x00000000000000000000000000000000000000d4"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func txHash(b byte) string {
	return "0x" + strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func record(t *testing.T, account string, streak int64, h byte, block uint64) model.RawTxRecord {
	t.Helper()

	args, err := evm.EncodeCheckInArgs(evm.CheckIn{Account: account, Streak: streak})
	if err != nil {
		t.Fatalf("encode args: %v", err)
	}
	return model.RawTxRecord{
		Hash:        txHash(h),
		EventName:   model.EventNameDailyCheckIn,
		BlockNumber: block,
		ArgsJSON:    args,
		CreatedAt:   baseTime.Add(time.Duration(block) * time.Minute),
	}
}

// inputOf builds the staged input the aggregator would produce for records.
func inputOf(t *testing.T, records ...model.RawTxRecord) Input {
	t.Helper()

	snaps := model.Snapshots{}
	for _, rec := range records {
		c, err := evm.DecodeRecord(rec)
		if err != nil {
			t.Fatalf("decode record: %v", err)
		}
		snap := snaps[c.Account]
		snap.Account = c.Account
		snap.Points += model.DailyContribution(c.Streak)
		snap.EventCount++
		snap.MaxStreakSeen = max(snap.MaxStreakSeen, c.Streak)
		snaps[c.Account] = snap
	}
	return Input{Snapshots: snaps, Records: records}
}

func daily(account string, points int64, h byte, block uint64) model.LedgerEntry {
	return model.LedgerEntry{
		Account:   account,
		Points:    points,
		Category:  model.CategoryDaily,
		TxHash:    txHash(h),
		CreatedAt: baseTime.Add(time.Duration(block) * time.Minute),
	}
}

func quest(account string, points int64) model.LedgerEntry {
	return model.LedgerEntry{
		Account:   account,
		Points:    points,
		Category:  "quest",
		CreatedAt: baseTime,
	}
}
