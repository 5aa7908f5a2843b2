package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/aggregator"
	"github.com/goodnatureofminers/dailypoints/internal/evm"
	"github.com/goodnatureofminers/dailypoints/internal/metrics"
	"github.com/goodnatureofminers/dailypoints/internal/staging"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Events         []string `long:"events" env:"POINTS_AGGREGATOR_EVENTS" env-delim:"," description:"JSONL event shard, repeatable" required:"true"`
	StagingDir     string   `long:"staging-dir" env:"POINTS_STAGING_DIR" description:"directory for snapshot.json and raw_records.json" default:"staging"`
	Workers        int      `long:"workers" env:"POINTS_AGGREGATOR_WORKERS" description:"concurrent shard loaders" default:"4"`
	PushgatewayURL string   `long:"pushgateway-url" env:"POINTS_PUSHGATEWAY_URL" description:"Prometheus Pushgateway URL, empty disables pushing"`
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
		logger.Fatal("points aggregator failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	defer pushMetrics(cfg.PushgatewayURL, logger)

	store, err := staging.New(cfg.StagingDir, metrics.NewStaging(), logger.Named("staging"))
	if err != nil {
		return fmt.Errorf("init staging store: %w", err)
	}

	svc, err := aggregator.NewService(evm.FileSource{}, store, metrics.NewAggregator(), cfg.Workers, logger.Named("aggregator"))
	if err != nil {
		return fmt.Errorf("init aggregator: %w", err)
	}

	summary, err := svc.Run(ctx, cfg.Events)
	if err != nil {
		return err
	}

	logger.Info("snapshot staged",
		zap.String("dir", store.Dir()),
		zap.Int("shards", summary.Shards),
		zap.Int("events", summary.Events),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("accounts", summary.Accounts),
		zap.Int64("total_points", summary.TotalPoints),
	)
	return nil
}

func pushMetrics(url string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, url, "dailypoints_aggregator"); err != nil {
		logger.Warn("failed to push metrics", zap.Error(err))
	}
}
