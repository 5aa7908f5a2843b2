package audit

import (
	"context"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Repository interface {
		InsertRunReport(ctx context.Context, report model.RunReport) error
		InsertLedgerAudit(ctx context.Context, runID string, entries []model.LedgerEntry) error
	}
	Metrics interface {
		ObserveExport(table string, rows int, err error, started time.Time)
	}
)
