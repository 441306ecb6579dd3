package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/nebula/internal/core"
	_ "modernc.org/sqlite"
)

// DB represents the database with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New opens (or creates) the database and ensures the schema exists
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	db := &DB{
		write: write,
		read:  read,
		path:  dbPath,
	}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

// Close closes both database connections
func (db *DB) Close() error {
	return errors.Join(db.write.Close(), db.read.Close())
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
    mode TEXT PRIMARY KEY,
    captured_at INTEGER NOT NULL,
    record_count INTEGER NOT NULL,
    payload TEXT NOT NULL
);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SnapshotInfo summarizes a stored snapshot without decoding its records
type SnapshotInfo struct {
	Mode        core.Mode
	CapturedAt  time.Time
	RecordCount int
	PayloadSize int
}

// PutSnapshot replaces the snapshot for its mode in a single statement
func (db *DB) PutSnapshot(ctx context.Context, snap *core.Snapshot) error {
	payload, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	query := `
INSERT INTO snapshots (mode, captured_at, record_count, payload)
VALUES (?, ?, ?, ?)
ON CONFLICT(mode) DO UPDATE SET
    captured_at = excluded.captured_at,
    record_count = excluded.record_count,
    payload = excluded.payload
	`

	_, err = db.write.ExecContext(ctx, query,
		string(snap.Mode),
		snap.CapturedAt.UnixNano(),
		len(snap.Records),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}

// GetSnapshot returns the stored snapshot for mode; found is false when none exists
func (db *DB) GetSnapshot(ctx context.Context, mode core.Mode) (snap *core.Snapshot, found bool, err error) {
	var (
		capturedAt int64
		payload    string
	)

	err = db.read.QueryRowContext(ctx,
		"SELECT captured_at, payload FROM snapshots WHERE mode = ?", string(mode),
	).Scan(&capturedAt, &payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot: %w", err)
	}

	var records []core.PackageRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, false, fmt.Errorf("unmarshal records: %w", err)
	}

	return &core.Snapshot{
		Mode:       mode,
		CapturedAt: time.Unix(0, capturedAt).UTC(),
		Records:    records,
	}, true, nil
}

// DeleteSnapshot removes the snapshot for mode; a missing row is not an error
func (db *DB) DeleteSnapshot(ctx context.Context, mode core.Mode) error {
	if _, err := db.write.ExecContext(ctx, "DELETE FROM snapshots WHERE mode = ?", string(mode)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns a summary row per stored mode, ordered by mode
func (db *DB) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := db.read.QueryContext(ctx,
		"SELECT mode, captured_at, record_count, length(payload) FROM snapshots ORDER BY mode")
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			info       SnapshotInfo
			mode       string
			capturedAt int64
		)
		if err := rows.Scan(&mode, &capturedAt, &info.RecordCount, &info.PayloadSize); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.Mode = core.Mode(mode)
		info.CapturedAt = time.Unix(0, capturedAt).UTC()
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return infos, nil
}
