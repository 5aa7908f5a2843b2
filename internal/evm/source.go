package evm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

const maxLineSize = 1 << 20

type eventLine struct {
	Account      *string    `json:"account"`
	StreakLength *int64     `json:"streakLength"`
	BlockOrdinal *uint64    `json:"blockOrdinal"`
	TxHash       *string    `json:"txHash"`
	Timestamp    *time.Time `json:"timestamp"`
}

// ReadEvents parses JSON-lines check-in events. Any malformed line rejects the whole input.
func ReadEvents(r io.Reader) ([]model.Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []model.Event
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		ev, err := parseEventLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

func parseEventLine(line []byte) (model.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var raw eventLine
	if err := dec.Decode(&raw); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case raw.Account == nil:
		return model.Event{}, fmt.Errorf("%w: missing account", ErrMalformed)
	case raw.StreakLength == nil:
		return model.Event{}, fmt.Errorf("%w: missing streakLength", ErrMalformed)
	case raw.BlockOrdinal == nil:
		return model.Event{}, fmt.Errorf("%w: missing blockOrdinal", ErrMalformed)
	case raw.TxHash == nil:
		return model.Event{}, fmt.Errorf("%w: missing txHash", ErrMalformed)
	case raw.Timestamp == nil:
		return model.Event{}, fmt.Errorf("%w: missing timestamp", ErrMalformed)
	}

	return ValidateEvent(model.Event{
		Account:      *raw.Account,
		StreakLength: *raw.StreakLength,
		BlockOrdinal: *raw.BlockOrdinal,
		TxHash:       *raw.TxHash,
		Timestamp:    *raw.Timestamp,
	})
}

// FileSource reads event shards written by the log reader.
type FileSource struct{}

// Load reads every event of one shard file.
func (FileSource) Load(ctx context.Context, path string) ([]model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	events, err := ReadEvents(f)
	if err != nil {
		return nil, fmt.Errorf("read events %s: %w", path, err)
	}
	return events, nil
}
