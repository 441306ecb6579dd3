// Package cache persists the last-known package snapshot per mode.
//
// Stores never expire entries on their own; staleness is decided by callers.
// Save replaces a mode's snapshot in one step, so a concurrent Load sees
// either the previous snapshot or the new one.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/db"
	"github.com/quantmind-br/nebula/internal/fsops"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrUnknownMode is returned when a snapshot carries a mode the store does not know
var ErrUnknownMode = errors.New("unknown cache mode")

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Store persists one snapshot per mode
type Store interface {
	// Load returns the snapshot for mode; found is false when none is stored
	Load(ctx context.Context, mode core.Mode) (snap *core.Snapshot, found bool, err error)

	// Save replaces the snapshot for snap.Mode
	Save(ctx context.Context, snap *core.Snapshot) error

	// Invalidate drops the snapshot for mode; dropping a missing one is not an error
	Invalidate(ctx context.Context, mode core.Mode) error

	// Status summarizes every mode, present or not
	Status(ctx context.Context) ([]Info, error)

	// Close releases backend resources
	Close() error
}

// Info describes the stored state of one mode
type Info struct {
	Mode       core.Mode
	Present    bool
	CapturedAt time.Time
	Records    int
	SizeBytes  int64
	Location   string
}

// InvalidateAll drops the snapshots of every mode, attempting each even when one fails
func InvalidateAll(ctx context.Context, s Store) error {
	var errs []error
	for _, mode := range core.Modes {
		if err := s.Invalidate(ctx, mode); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", mode, err))
		}
	}
	return errors.Join(errs...)
}

// Options selects and configures a backend
type Options struct {
	Backend string
	Dir     string   // file backend directory
	DBFile  string   // sqlite backend database
	Fs      afero.Fs // file backend filesystem; defaults to the OS filesystem
}

// Open builds the configured store
func Open(ctx context.Context, opts Options, log *zerolog.Logger) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		fs := opts.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, opts.Dir, log), nil
	case BackendSQLite:
		if err := fsops.EnsureDir(afero.NewOsFs(), filepath.Dir(opts.DBFile), 0o755); err != nil {
			return nil, err
		}
		d, err := db.New(ctx, opts.DBFile)
		if err != nil {
			return nil, fmt.Errorf("open cache database: %w", err)
		}
		return NewSQLiteStore(d, log), nil
	case BackendNone:
		return NullStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (expected %s, %s or %s)",
			opts.Backend, BackendFile, BackendSQLite, BackendNone)
	}
}

func checkMode(mode core.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return nil
}

func nopIfNil(log *zerolog.Logger) *zerolog.Logger {
	if log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return log
}
