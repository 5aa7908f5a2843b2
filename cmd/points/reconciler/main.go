package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/audit"
	"github.com/goodnatureofminers/dailypoints/internal/lock"
	"github.com/goodnatureofminers/dailypoints/internal/metrics"
	"github.com/goodnatureofminers/dailypoints/internal/reconciler"
	"github.com/goodnatureofminers/dailypoints/internal/repository/clickhouse"
	"github.com/goodnatureofminers/dailypoints/internal/repository/sqlite"
	"github.com/goodnatureofminers/dailypoints/internal/staging"
	"github.com/jessevdk/go-flags"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type config struct {
	DatabasePath    string        `long:"database-path" env:"POINTS_DATABASE_PATH" description:"SQLite ledger database file" required:"true"`
	StagingDir      string        `long:"staging-dir" env:"POINTS_STAGING_DIR" description:"directory holding snapshot.json and raw_records.json" default:"staging"`
	BatchSize       int           `long:"batch-size" env:"POINTS_BATCH_SIZE" description:"accounts per aggregate batch" default:"250"`
	RecordBatchSize int           `long:"record-batch-size" env:"POINTS_RECORD_BATCH_SIZE" description:"ledger entries per insert batch" default:"250"`
	Pacing          time.Duration `long:"pacing" env:"POINTS_PACING" description:"pause after every full batch" default:"3s"`
	StrictRemoval   bool          `long:"strict-removal" env:"POINTS_STRICT_REMOVAL" description:"roll back instead of clamping totals that would go negative"`

	RedisAddr     string        `long:"redis-addr" env:"POINTS_REDIS_ADDR" description:"Redis address for the run lock, empty disables locking"`
	RedisPassword string        `long:"redis-password" env:"POINTS_REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int           `long:"redis-db" env:"POINTS_REDIS_DB" description:"Redis database number" default:"0"`
	LockKey       string        `long:"lock-key" env:"POINTS_LOCK_KEY" description:"Redis key of the run lock" default:"dailypoints:reconcile"`
	LockTTL       time.Duration `long:"lock-ttl" env:"POINTS_LOCK_TTL" description:"run lock expiry" default:"30m"`

	ClickhouseDSN  string `long:"clickhouse-dsn" env:"POINTS_CLICKHOUSE_DSN" description:"ClickHouse DSN for the audit export, empty disables it"`
	AuditRPS       int    `long:"audit-rps" env:"POINTS_AUDIT_RPS" description:"audit insert batches per second, 0 is unlimited" default:"10"`
	AuditBatchSize int    `long:"audit-batch-size" env:"POINTS_AUDIT_BATCH_SIZE" description:"ledger rows per audit insert" default:"1000"`

	PushgatewayURL string `long:"pushgateway-url" env:"POINTS_PUSHGATEWAY_URL" description:"Prometheus Pushgateway URL, empty disables pushing"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("points reconciler failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	defer pushMetrics(cfg.PushgatewayURL, logger)

	release, err := acquireLock(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			logger.Warn("failed to release run lock", zap.Error(err))
		}
	}()

	store, err := staging.New(cfg.StagingDir, metrics.NewStaging(), logger.Named("staging"))
	if err != nil {
		return fmt.Errorf("init staging store: %w", err)
	}
	snaps, err := store.ReadSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	records, err := store.ReadRawRecords(ctx)
	if err != nil {
		return fmt.Errorf("read raw records: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, cfg.DatabasePath, metrics.NewSQLiteRepository())
	if err != nil {
		return fmt.Errorf("init ledger repository: %w", err)
	}
	defer func() {
		_ = repo.Close()
	}()

	begin := reconciler.StoreFunc(func(ctx context.Context) (reconciler.Tx, error) {
		tx, err := repo.Begin(ctx)
		if err != nil {
			return nil, err
		}
		return tx, nil
	})

	rec, err := reconciler.New(begin, store, metrics.NewReconciler(), reconciler.Config{
		BatchSize:       cfg.BatchSize,
		RecordBatchSize: cfg.RecordBatchSize,
		Pacing:          cfg.Pacing,
		StrictRemoval:   cfg.StrictRemoval,
	}, logger.Named("reconciler"))
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}

	res := rec.Run(ctx, reconciler.Input{Snapshots: snaps, Records: records})
	exportAudit(ctx, cfg, res, logger)

	if !res.Committed() {
		return fmt.Errorf("run %s rolled back at %s: %w", res.RunID, res.FailedAt, res.Reason)
	}
	logger.Info("reconciliation committed",
		zap.String("run_id", res.RunID),
		zap.Int("affected_accounts", res.Stats.AffectedAccounts),
		zap.Int64("reapplied_points", res.Stats.ReappliedPoints),
		zap.Int64("inserted_entries", res.Stats.InsertedEntries),
		zap.Int("clamped_accounts", res.Stats.ClampedAccounts),
		zap.String("backup", res.Stats.BackupPath),
	)
	return nil
}

func acquireLock(ctx context.Context, cfg config, logger *zap.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if cfg.RedisAddr == "" {
		logger.Warn("redis address not set, running without a run lock")
		return noop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	l, err := lock.NewRedisLock(client, cfg.LockKey, cfg.LockTTL, metrics.NewLock(), logger.Named("lock"))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	release, err := l.Acquire(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return func(ctx context.Context) error {
		defer func() {
			_ = client.Close()
		}()
		return release(ctx)
	}, nil
}

// exportAudit is best-effort: the ledger outcome is already final.
func exportAudit(ctx context.Context, cfg config, res reconciler.Result, logger *zap.Logger) {
	if cfg.ClickhouseDSN == "" {
		return
	}

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		logger.Warn("audit export skipped", zap.Error(err))
		return
	}
	defer func() {
		_ = repo.Close()
	}()

	exporter, err := audit.NewExporter(repo, metrics.NewAudit(), cfg.AuditBatchSize, cfg.AuditRPS, logger.Named("audit"))
	if err != nil {
		logger.Warn("audit export skipped", zap.Error(err))
		return
	}
	if err := exporter.Export(ctx, res); err != nil {
		logger.Warn("audit export failed", zap.String("run_id", res.RunID), zap.Error(err))
	}
}

func pushMetrics(url string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, url, "dailypoints_reconciler"); err != nil {
		logger.Warn("failed to push metrics", zap.Error(err))
	}
}
