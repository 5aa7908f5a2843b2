// Package aggregator folds event shards into the staged snapshot and raw records.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/evm"
	"github.com/goodnatureofminers/dailypoints/internal/fold"
	"github.com/goodnatureofminers/dailypoints/internal/model"
	"github.com/goodnatureofminers/dailypoints/pkg/workerpool"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// ErrConflictingDuplicate reports two events for the same transaction and
// account that disagree on their content.
var ErrConflictingDuplicate = errors.New("conflicting duplicate event")

// Summary describes one aggregation.
type Summary struct {
	Shards      int
	Events      int
	Duplicates  int
	Accounts    int
	TotalPoints int64
}

type Service struct {
	source      EventSource
	writer      SnapshotWriter
	metrics     Metrics
	logger      *zap.Logger
	workerCount int
}

func NewService(source EventSource, writer SnapshotWriter, metrics Metrics, workerCount int, logger *zap.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("aggregator event source is required")
	}
	if writer == nil {
		return nil, errors.New("aggregator snapshot writer is required")
	}
	if metrics == nil {
		return nil, errors.New("aggregator metrics is required")
	}
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:      source,
		writer:      writer,
		metrics:     metrics,
		logger:      logger,
		workerCount: workerCount,
	}, nil
}

// Run loads every shard, folds the merged events and replaces both staged files.
func (s *Service) Run(ctx context.Context, paths []string) (Summary, error) {
	if len(paths) == 0 {
		return Summary{}, errors.New("at least one event shard is required")
	}

	loaded, err := s.load(ctx, paths)
	if err != nil {
		return Summary{}, err
	}

	var all []model.Event
	for i := range paths {
		events, _ := loaded.Load(i)
		all = append(all, events...)
	}

	events, dropped, err := dedupe(all)
	if err != nil {
		return Summary{}, err
	}
	if dropped > 0 {
		s.metrics.ObserveDuplicates(dropped)
		s.logger.Info("dropped duplicate events from overlapping shards", zap.Int("dropped", dropped))
	}
	sortEvents(events)

	started := time.Now()
	snaps, err := fold.Fold(events)
	s.metrics.ObserveFold(err, len(snaps), started)
	if err != nil {
		return Summary{}, fmt.Errorf("fold events: %w", err)
	}

	records := make([]model.RawTxRecord, 0, len(events))
	for _, ev := range events {
		rec, err := evm.RecordFromEvent(ev)
		if err != nil {
			return Summary{}, fmt.Errorf("build raw record: %w", err)
		}
		records = append(records, rec)
	}

	if err := s.writer.WriteSnapshots(ctx, snaps); err != nil {
		return Summary{}, fmt.Errorf("write snapshots: %w", err)
	}
	if err := s.writer.WriteRawRecords(ctx, records); err != nil {
		return Summary{}, fmt.Errorf("write raw records: %w", err)
	}

	summary := Summary{
		Shards:      len(paths),
		Events:      len(events),
		Duplicates:  dropped,
		Accounts:    len(snaps),
		TotalPoints: snaps.TotalPoints(),
	}
	s.logger.Info("aggregation done",
		zap.Int("shards", summary.Shards),
		zap.Int("events", summary.Events),
		zap.Int("accounts", summary.Accounts),
		zap.Int64("total_points", summary.TotalPoints),
	)
	return summary, nil
}

func (s *Service) load(ctx context.Context, paths []string) (*xsync.Map[int, []model.Event], error) {
	loaded := xsync.NewMap[int, []model.Event]()

	indexes := make([]int, len(paths))
	for i := range paths {
		indexes[i] = i
	}

	err := workerpool.Process(ctx, s.workerCount, indexes, func(ctx context.Context, i int) error {
		started := time.Now()
		events, err := s.source.Load(ctx, paths[i])
		s.metrics.ObserveLoad(err, len(events), started)
		if err != nil {
			return fmt.Errorf("load shard %s: %w", paths[i], err)
		}
		s.logger.Debug("shard loaded", zap.String("path", paths[i]), zap.Int("events", len(events)))
		loaded.Store(i, events)
		return nil
	}, func() {
		s.logger.Warn("shard loading canceled")
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

type eventKey struct {
	txHash  string
	account string
}

// dedupe validates events and drops exact repeats of a (tx hash, account) pair.
// Repeats that differ in any field are rejected.
func dedupe(events []model.Event) ([]model.Event, int, error) {
	seen := make(map[eventKey]model.Event, len(events))
	out := make([]model.Event, 0, len(events))
	dropped := 0

	for i, raw := range events {
		ev, err := evm.ValidateEvent(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("event %d: %w", i, err)
		}
		key := eventKey{txHash: ev.TxHash, account: ev.Account}
		prev, ok := seen[key]
		if !ok {
			seen[key] = ev
			out = append(out, ev)
			continue
		}
		if prev.StreakLength != ev.StreakLength || prev.BlockOrdinal != ev.BlockOrdinal || !prev.Timestamp.Equal(ev.Timestamp) {
			return nil, 0, fmt.Errorf("%w: tx %s account %s", ErrConflictingDuplicate, ev.TxHash, ev.Account)
		}
		dropped++
	}
	return out, dropped, nil
}

func sortEvents(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.BlockOrdinal != b.BlockOrdinal {
			return a.BlockOrdinal < b.BlockOrdinal
		}
		if a.TxHash != b.TxHash {
			return a.TxHash < b.TxHash
		}
		return a.Account < b.Account
	})
}
