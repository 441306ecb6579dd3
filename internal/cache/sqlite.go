package cache

import (
	"context"
	"errors"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/db"
	"github.com/rs/zerolog"
)

// SQLiteStore keeps snapshots as rows in the cache database
type SQLiteStore struct {
	db     *db.DB
	logger *zerolog.Logger
}

// NewSQLiteStore wraps an open database
func NewSQLiteStore(d *db.DB, log *zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{db: d, logger: nopIfNil(log)}
}

// Load implements Store.Load
func (s *SQLiteStore) Load(ctx context.Context, mode core.Mode) (*core.Snapshot, bool, error) {
	if err := checkMode(mode); err != nil {
		return nil, false, err
	}
	return s.db.GetSnapshot(ctx, mode)
}

// Save implements Store.Save
func (s *SQLiteStore) Save(ctx context.Context, snap *core.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := checkMode(snap.Mode); err != nil {
		return err
	}
	if err := s.db.PutSnapshot(ctx, snap); err != nil {
		return err
	}
	s.logger.Debug().Str("mode", string(snap.Mode)).Int("records", snap.Len()).Msg("cache stored")
	return nil
}

// Invalidate implements Store.Invalidate
func (s *SQLiteStore) Invalidate(ctx context.Context, mode core.Mode) error {
	if err := checkMode(mode); err != nil {
		return err
	}
	return s.db.DeleteSnapshot(ctx, mode)
}

// Status implements Store.Status
func (s *SQLiteStore) Status(ctx context.Context) ([]Info, error) {
	rows, err := s.db.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	byMode := make(map[core.Mode]db.SnapshotInfo, len(rows))
	for _, row := range rows {
		byMode[row.Mode] = row
	}

	infos := make([]Info, 0, len(core.Modes))
	for _, mode := range core.Modes {
		info := Info{Mode: mode, Location: s.db.Path()}
		if row, ok := byMode[mode]; ok {
			info.Present = true
			info.CapturedAt = row.CapturedAt
			info.Records = row.RecordCount
			info.SizeBytes = int64(row.PayloadSize)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
