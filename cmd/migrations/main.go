package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/goodnatureofminers/dailypoints/migrations"
	"github.com/jessevdk/go-flags"
	_ "modernc.org/sqlite"
)

type config struct {
	Driver        string `long:"driver" env:"MIGRATIONS_DRIVER" choice:"sqlite" choice:"clickhouse" default:"sqlite" description:"target store"`
	DatabaseURL   string `long:"database-url" env:"MIGRATIONS_DATABASE_URL" description:"migrate database URL (sqlite://ledger.db, clickhouse://host:9000/default)" required:"true"`
	MigrationsDir string `long:"migrations-dir" env:"MIGRATIONS_DIR" description:"path to migration files, empty uses the embedded set"`
}

func main() {
	cfg := config{}
	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		log.Fatalf("failed to parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMigrations(ctx, cfg); err != nil {
		log.Fatalf("migration run failed: %v", err)
	}
}

func runMigrations(ctx context.Context, cfg config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Printf("migration source close error: %v", srcErr)
		}
		if dbErr != nil {
			log.Printf("migration database close error: %v", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no migrations to apply")
			return nil
		}
		return err
	}

	log.Printf("%s migrations applied successfully", cfg.Driver)
	return nil
}

func newMigrator(cfg config) (*migrate.Migrate, error) {
	if cfg.Driver == "clickhouse" {
		cfg.DatabaseURL = withMultiStatement(cfg.DatabaseURL)
	}

	if cfg.MigrationsDir == "" {
		src, err := iofs.New(embedded(cfg.Driver), cfg.Driver)
		if err != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", err)
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init migrate: %w", err)
		}
		return m, nil
	}

	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat migrations dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(dir))
	m, err := migrate.New(sourceURL, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

func embedded(driver string) fs.FS {
	if driver == "clickhouse" {
		return migrations.ClickHouse
	}
	return migrations.SQLite
}

// the audit schema keeps several statements per file
func withMultiStatement(dsn string) string {
	if strings.Contains(dsn, "x-multi-statement=") {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + "x-multi-statement=true"
}
