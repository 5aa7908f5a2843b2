// Package evm converts decoded EVM check-in logs into domain records.
package evm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goodnatureofminers/dailypoints/internal/model"
)

// ErrMalformed reports an event or record that violates the source contract.
var ErrMalformed = errors.New("malformed check-in")

// CheckIn holds the arguments of a DailyCheckIn log.
type CheckIn struct {
	Account string
	Streak  int64
}

type checkInArgs struct {
	User   *string      `json:"user"`
	Streak *json.Number `json:"streak"`
}

// NormalizeAddress validates a hex address and returns it lowercased with the 0x prefix.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: invalid address %q", ErrMalformed, addr)
	}
	return strings.ToLower(common.HexToAddress(addr).Hex()), nil
}

// NormalizeTxHash validates a 32-byte 0x-prefixed hash and returns it lowercased.
func NormalizeTxHash(hash string) (string, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(hash))
	if err != nil {
		return "", fmt.Errorf("%w: tx hash %q: %v", ErrMalformed, hash, err)
	}
	if len(raw) != common.HashLength {
		return "", fmt.Errorf("%w: tx hash %q has %d bytes", ErrMalformed, hash, len(raw))
	}
	return hexutil.Encode(raw), nil
}

// ValidateEvent checks the fields every folded event must carry.
func ValidateEvent(ev model.Event) (model.Event, error) {
	account, err := NormalizeAddress(ev.Account)
	if err != nil {
		return model.Event{}, err
	}
	hash, err := NormalizeTxHash(ev.TxHash)
	if err != nil {
		return model.Event{}, err
	}
	if ev.StreakLength < 0 {
		return model.Event{}, fmt.Errorf("%w: negative streak %d", ErrMalformed, ev.StreakLength)
	}
	if ev.Timestamp.IsZero() {
		return model.Event{}, fmt.Errorf("%w: tx %s missing timestamp", ErrMalformed, hash)
	}

	ev.Account = account
	ev.TxHash = hash
	ev.Timestamp = ev.Timestamp.UTC()
	return ev, nil
}

// EncodeCheckInArgs renders the args JSON stored on a raw record.
func EncodeCheckInArgs(c CheckIn) (string, error) {
	out, err := json.Marshal(struct {
		User   string `json:"user"`
		Streak int64  `json:"streak"`
	}{User: c.Account, Streak: c.Streak})
	if err != nil {
		return "", fmt.Errorf("marshal check-in args: %w", err)
	}
	return string(out), nil
}

// DecodeCheckInArgs parses args JSON. The streak may be a JSON number or a decimal string.
func DecodeCheckInArgs(argsJSON string) (CheckIn, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(argsJSON)))
	dec.UseNumber()

	var args checkInArgs
	if err := dec.Decode(&args); err != nil {
		return CheckIn{}, fmt.Errorf("%w: decode args: %v", ErrMalformed, err)
	}
	if args.User == nil {
		return CheckIn{}, fmt.Errorf("%w: args missing user", ErrMalformed)
	}
	if args.Streak == nil {
		return CheckIn{}, fmt.Errorf("%w: args missing streak", ErrMalformed)
	}

	account, err := NormalizeAddress(*args.User)
	if err != nil {
		return CheckIn{}, err
	}
	streak, err := strconv.ParseInt(args.Streak.String(), 10, 64)
	if err != nil {
		return CheckIn{}, fmt.Errorf("%w: streak %q: %v", ErrMalformed, args.Streak.String(), err)
	}
	if streak < 0 {
		return CheckIn{}, fmt.Errorf("%w: negative streak %d", ErrMalformed, streak)
	}

	return CheckIn{Account: account, Streak: streak}, nil
}

// RecordFromEvent builds the staged raw record of a validated event.
func RecordFromEvent(ev model.Event) (model.RawTxRecord, error) {
	ev, err := ValidateEvent(ev)
	if err != nil {
		return model.RawTxRecord{}, err
	}
	args, err := EncodeCheckInArgs(CheckIn{Account: ev.Account, Streak: ev.StreakLength})
	if err != nil {
		return model.RawTxRecord{}, err
	}
	return model.RawTxRecord{
		Hash:        ev.TxHash,
		EventName:   model.EventNameDailyCheckIn,
		BlockNumber: ev.BlockOrdinal,
		ArgsJSON:    args,
		CreatedAt:   ev.Timestamp,
	}, nil
}

// DecodeRecord validates a staged raw record and returns its check-in arguments.
func DecodeRecord(rec model.RawTxRecord) (CheckIn, error) {
	if rec.EventName != model.EventNameDailyCheckIn {
		return CheckIn{}, fmt.Errorf("%w: unexpected event %q in tx %s", ErrMalformed, rec.EventName, rec.Hash)
	}
	if _, err := NormalizeTxHash(rec.Hash); err != nil {
		return CheckIn{}, err
	}
	if rec.CreatedAt.IsZero() {
		return CheckIn{}, fmt.Errorf("%w: tx %s missing createdAt", ErrMalformed, rec.Hash)
	}
	c, err := DecodeCheckInArgs(rec.ArgsJSON)
	if err != nil {
		return CheckIn{}, fmt.Errorf("tx %s: %w", rec.Hash, err)
	}
	return c, nil
}
