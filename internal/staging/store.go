// Package staging persists the hand-off files between aggregation and reconciliation.
package staging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goodnatureofminers/dailypoints/internal/model"
	"go.uber.org/zap"
)

const (
	// SnapshotFile holds the folded per-account snapshots.
	SnapshotFile = "snapshot.json"
	// RawRecordsFile holds the ordered raw per-event records.
	RawRecordsFile = "raw_records.json"
	// BackupDir holds pre-run account state backups.
	BackupDir = "backups"
)

// ErrSchemaViolation reports a staged file that does not match its schema.
var ErrSchemaViolation = errors.New("staging schema violation")

// Store reads and writes staged files inside one directory.
type Store struct {
	dir     string
	metrics Metrics
	logger  *zap.Logger
}

// New constructs a Store rooted at dir. The directory is created on first write.
func New(dir string, metrics Metrics, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("staging dir is required")
	}
	if metrics == nil {
		return nil, errors.New("staging metrics is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, metrics: metrics, logger: logger}, nil
}

// Dir returns the staging directory.
func (s *Store) Dir() string {
	return s.dir
}

// WriteSnapshots replaces the staged snapshot file.
func (s *Store) WriteSnapshots(ctx context.Context, snaps model.Snapshots) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("write_snapshots", err, started)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if snaps == nil {
		snaps = model.Snapshots{}
	}
	if err = Write(filepath.Join(s.dir, SnapshotFile), snaps); err != nil {
		return err
	}
	s.logger.Debug("snapshots staged", zap.Int("accounts", len(snaps)))
	return nil
}

// ReadSnapshots loads and validates the staged snapshot file.
func (s *Store) ReadSnapshots(ctx context.Context) (snaps model.Snapshots, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("read_snapshots", err, started)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	var wire map[string]snapshotWire
	if err = Read(filepath.Join(s.dir, SnapshotFile), &wire); err != nil {
		return nil, err
	}
	return decodeSnapshots(wire)
}

// WriteRawRecords replaces the staged raw record file.
func (s *Store) WriteRawRecords(ctx context.Context, records []model.RawTxRecord) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("write_raw_records", err, started)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.RawTxRecord{}
	}
	if err = Write(filepath.Join(s.dir, RawRecordsFile), records); err != nil {
		return err
	}
	s.logger.Debug("raw records staged", zap.Int("records", len(records)))
	return nil
}

// ReadRawRecords loads and validates the staged raw record file.
func (s *Store) ReadRawRecords(ctx context.Context) (records []model.RawTxRecord, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("read_raw_records", err, started)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	var wire []rawRecordWire
	if err = Read(filepath.Join(s.dir, RawRecordsFile), &wire); err != nil {
		return nil, err
	}
	return decodeRawRecords(wire)
}

// WriteBackup stores a pre-run backup and returns its path.
func (s *Store) WriteBackup(ctx context.Context, backup model.Backup) (path string, err error) {
	started := time.Now()
	defer func() {
		s.metrics.Observe("write_backup", err, started)
	}()

	if err = ctx.Err(); err != nil {
		return "", err
	}
	if backup.RunID == "" {
		return "", errors.New("backup run id is required")
	}
	path = filepath.Join(s.dir, BackupDir, backup.RunID+".json")
	if err = Write(path, backup); err != nil {
		return "", err
	}
	return path, nil
}

// Write serializes v as indented JSON and atomically replaces path with it.
// Missing parent directories are created.
func Write(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Read decodes the JSON document at path into v. Unknown fields and trailing data are rejected.
func Read(path string, v any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSchemaViolation, filepath.Base(path), err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: trailing data", ErrSchemaViolation, filepath.Base(path))
	}
	return nil
}
