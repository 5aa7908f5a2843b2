// Package reconciler replaces the daily category of the ledger with freshly
// folded contributions inside one verified store transaction.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goodnatureofminers/dailypoints/internal/clock"
	"github.com/goodnatureofminers/dailypoints/pkg/batcher"
	"go.uber.org/zap"
)

// Config tunes a Reconciler. Zero sizes and pacing fall back to the defaults.
type Config struct {
	BatchSize       int
	RecordBatchSize int
	Pacing          time.Duration
	// StrictRemoval fails the run when an account's total is below its daily
	// contribution instead of clamping the total at zero.
	StrictRemoval bool
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context) (Tx, error)

// Begin calls f.
func (f StoreFunc) Begin(ctx context.Context) (Tx, error) {
	return f(ctx)
}

type Reconciler struct {
	store    Store
	backups  BackupWriter
	metrics  Metrics
	logger   *zap.Logger
	sleep    func(context.Context, time.Duration) error
	now      func() time.Time
	newRunID func() string

	batchSize       int
	recordBatchSize int
	pacing          time.Duration
	strictRemoval   bool
}

func New(store Store, backups BackupWriter, metrics Metrics, cfg Config, logger *zap.Logger) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("reconciler store is required")
	}
	if backups == nil {
		return nil, errors.New("reconciler backup writer is required")
	}
	if metrics == nil {
		return nil, errors.New("reconciler metrics is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.RecordBatchSize == 0 {
		cfg.RecordBatchSize = defaultRecordBatchSize
	}
	if cfg.Pacing == 0 {
		cfg.Pacing = defaultPacing
	}
	if cfg.BatchSize < 0 || cfg.RecordBatchSize < 0 {
		return nil, fmt.Errorf("batch sizes must be positive, got %d and %d", cfg.BatchSize, cfg.RecordBatchSize)
	}
	if cfg.Pacing < 0 {
		return nil, fmt.Errorf("pacing must not be negative, got %s", cfg.Pacing)
	}

	return &Reconciler{
		store:           store,
		backups:         backups,
		metrics:         metrics,
		logger:          logger,
		sleep:           clock.SleepWithContext,
		now:             clock.UTCNow,
		newRunID:        uuid.NewString,
		batchSize:       cfg.BatchSize,
		recordBatchSize: cfg.RecordBatchSize,
		pacing:          cfg.Pacing,
		strictRemoval:   cfg.StrictRemoval,
	}, nil
}

// Run reconciles in against the store. The store either ends up with every
// change committed and verified, or exactly as it was before the run.
func (r *Reconciler) Run(ctx context.Context, in Input) Result {
	started := time.Now()
	res := Result{
		RunID:     r.newRunID(),
		StartedAt: r.now(),
	}
	logger := r.logger.With(zap.String("run_id", res.RunID))
	logger.Info("reconciliation started",
		zap.Int("snapshot_accounts", len(in.Snapshots)),
		zap.Int("records", len(in.Records)),
		zap.Bool("strict_removal", r.strictRemoval),
	)

	rn := &run{
		runID:    res.RunID,
		logger:   logger,
		metrics:  r.metrics,
		backups:  r.backups,
		now:      r.now,
		strict:   r.strictRemoval,
		pageSize: r.batchSize,
	}
	failedAt, err := r.execute(ctx, rn, in)

	res.FinishedAt = r.now()
	res.Stats = rn.stats
	if err != nil {
		res.Outcome = OutcomeRolledBack
		res.FailedAt = failedAt
		res.Reason = err
		logger.Error("reconciliation rolled back", zap.String("failed_at", string(failedAt)), zap.Error(err))
	} else {
		res.Outcome = OutcomeCommitted
		res.Entries = rn.plan.entries
		logger.Info("reconciliation committed",
			zap.Int("affected_accounts", rn.stats.AffectedAccounts),
			zap.Int64("purged_entries", rn.stats.PurgedEntries),
			zap.Int64("inserted_entries", rn.stats.InsertedEntries),
			zap.Int64("reapplied_points", rn.stats.ReappliedPoints),
			zap.Int("clamped_accounts", rn.stats.ClampedAccounts),
			zap.Duration("took", time.Since(started)),
		)
	}
	r.metrics.ObserveRun(string(res.Outcome), started)
	return res
}

func (r *Reconciler) execute(ctx context.Context, rn *run, in Input) (failedAt State, err error) {
	started := time.Now()
	tx, err := r.begin(ctx, rn, in)
	r.metrics.ObserveStage(string(StateStarted), err, started)
	if err != nil {
		return StateStarted, err
	}
	rn.tx = tx
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	stages := []struct {
		state State
		run   func(context.Context) error
	}{
		{StateBackupTaken, rn.takeBackup},
		{StateContributionsRemoved, rn.removeContributions},
		{StateRemovalVerified, rn.verifyRemoval},
		{StateCategoryPurged, rn.purgeCategory},
		{StateContributionsReapplied, rn.reapplyContributions},
		{StateReapplyVerified, rn.verifyReapply},
		{StateCommitted, rn.commit},
	}
	for _, stage := range stages {
		started := time.Now()
		err = stage.run(ctx)
		r.metrics.ObserveStage(string(stage.state), err, started)
		if err != nil {
			return stage.state, err
		}
		rn.logger.Info("stage done", zap.String("stage", string(stage.state)), zap.Duration("took", time.Since(started)))
	}
	return "", nil
}

// begin plans the run and opens its transaction. No store mutation happens
// before the plan is known to be consistent.
func (r *Reconciler) begin(ctx context.Context, rn *run, in Input) (Tx, error) {
	p, err := buildPlan(in)
	if err != nil {
		return nil, err
	}
	rn.plan = p
	rn.stats.SnapshotAccounts = len(p.deltas)

	rn.accounts, err = batcher.New(rn.logger.Named("accounts"), r.batchSize, r.pacing, r.sleep)
	if err != nil {
		return nil, fmt.Errorf("account batches: %w", err)
	}
	rn.records, err = batcher.New(rn.logger.Named("records"), r.recordBatchSize, r.pacing, r.sleep)
	if err != nil {
		return nil, fmt.Errorf("record batches: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}
