package cache

import (
	"context"

	"github.com/quantmind-br/nebula/internal/core"
)

// NullStore never holds anything; every Load is a miss
type NullStore struct{}

// Load always misses
func (NullStore) Load(context.Context, core.Mode) (*core.Snapshot, bool, error) {
	return nil, false, nil
}

// Save discards the snapshot
func (NullStore) Save(context.Context, *core.Snapshot) error { return nil }

// Invalidate does nothing
func (NullStore) Invalidate(context.Context, core.Mode) error { return nil }

// Status reports every mode as absent
func (NullStore) Status(context.Context) ([]Info, error) {
	infos := make([]Info, 0, len(core.Modes))
	for _, mode := range core.Modes {
		infos = append(infos, Info{Mode: mode})
	}
	return infos, nil
}

// Close does nothing
func (NullStore) Close() error { return nil }
