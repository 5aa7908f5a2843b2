package aggregator

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	EventSource interface {
		Load(ctx context.Context, path string) ([]model.Event, error)
	}
	SnapshotWriter interface {
		WriteSnapshots(ctx context.Context, snaps model.Snapshots) error
		WriteRawRecords(ctx context.Context, records []model.RawTxRecord) error
	}
	Metrics interface {
		ObserveLoad(err error, events int, started time.Time)
		ObserveFold(err error, accounts int, started time.Time)
		ObserveDuplicates(dropped int)
	}
)
