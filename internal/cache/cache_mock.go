package cache

import (
	"context"
	"sync"

	"github.com/quantmind-br/nebula/internal/core"
)

// MockStore is an in-memory Store for testing. The Func fields override the
// default map-backed behavior when set.
type MockStore struct {
	LoadFunc       func(ctx context.Context, mode core.Mode) (*core.Snapshot, bool, error)
	SaveFunc       func(ctx context.Context, snap *core.Snapshot) error
	InvalidateFunc func(ctx context.Context, mode core.Mode) error

	mu          sync.Mutex
	snapshots   map[core.Mode]*core.Snapshot
	saves       int
	invalidated []core.Mode
}

// Load implements Store.Load
func (m *MockStore) Load(ctx context.Context, mode core.Mode) (*core.Snapshot, bool, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[mode]
	return snap, ok, nil
}

// Save implements Store.Save
func (m *MockStore) Save(ctx context.Context, snap *core.Snapshot) error {
	m.mu.Lock()
	m.saves++
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = make(map[core.Mode]*core.Snapshot)
	}
	m.snapshots[snap.Mode] = snap
	return nil
}

// Invalidate implements Store.Invalidate
func (m *MockStore) Invalidate(ctx context.Context, mode core.Mode) error {
	m.mu.Lock()
	m.invalidated = append(m.invalidated, mode)
	m.mu.Unlock()

	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, mode)
	return nil
}

// Status implements Store.Status
func (m *MockStore) Status(ctx context.Context) ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]Info, 0, len(core.Modes))
	for _, mode := range core.Modes {
		info := Info{Mode: mode, Location: "memory"}
		if snap, ok := m.snapshots[mode]; ok {
			info.Present = true
			info.CapturedAt = snap.CapturedAt
			info.Records = snap.Len()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Close implements Store.Close
func (m *MockStore) Close() error { return nil }

// Saves returns the number of Save calls
func (m *MockStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Invalidated returns the modes passed to Invalidate, in call order
func (m *MockStore) Invalidated() []core.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Mode(nil), m.invalidated...)
}
