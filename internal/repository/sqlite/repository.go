// Package sqlite implements the transactional ledger store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/goodnatureofminers/dailypoints/migrations"
	_ "modernc.org/sqlite"
)

// Repository owns the SQLite handle of the ledger store.
type Repository struct {
	db      *sql.DB
	metrics Metrics
}

// NewRepository migrates the database at path to the latest schema and opens it.
func NewRepository(ctx context.Context, path string, metrics Metrics) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite database path is required")
	}
	if metrics == nil {
		return nil, errors.New("sqlite metrics is required")
	}
	path = filepath.Clean(path)

	if err := Migrate(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer, and BEGIN IMMEDIATE needs the same connection for the whole run
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &Repository{db: db, metrics: metrics}, nil
}

// Migrate applies every pending embedded migration to the database at path.
func Migrate(path string) error {
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+filepath.ToSlash(path))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Begin opens the write transaction a reconciliation run executes in.
func (r *Repository) Begin(ctx context.Context) (*Tx, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("begin", err, start)
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, metrics: r.metrics}, nil
}

func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func placeholders(n int, group string) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat(group+",", n), ",")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func stringArgs(values []string) []any {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
