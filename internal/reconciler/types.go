package reconciler

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Tx interface {
		CategoryAccounts(ctx context.Context, category model.Category) ([]string, error)
		CountCategory(ctx context.Context, category model.Category) (int64, error)
		AccountStates(ctx context.Context, category model.Category, accounts []string) ([]model.AccountState, error)
		SubtractCategoryPoints(ctx context.Context, category model.Category, accounts []string) (int64, error)
		TotalPoints(ctx context.Context, accounts []string) (map[string]int64, error)
		DeleteCategory(ctx context.Context, category model.Category) (int64, error)
		AddPoints(ctx context.Context, deltas []model.AccountAggregate) (int64, error)
		InsertLedgerEntries(ctx context.Context, entries []model.LedgerEntry) (int64, error)
		Commit() error
		Rollback() error
	}
	Store interface {
		Begin(ctx context.Context) (Tx, error)
	}
	BackupWriter interface {
		WriteBackup(ctx context.Context, backup model.Backup) (string, error)
	}
	Metrics interface {
		ObserveStage(stage string, err error, started time.Time)
		ObserveBatch(stage string, size int, err error, started time.Time)
		ObserveRun(outcome string, started time.Time)
		ObserveClamped(accounts int, points int64)
	}
)
