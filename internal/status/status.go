// Package status tracks the lifecycle of mutations per package.
//
// An entry moves from pending to succeeded or failed and nowhere else. While
// a package is pending, a second operation on it is refused.
package status

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantmind-br/nebula/internal/core"
)

// ErrBusy is returned by Begin when the package already has a pending operation
var ErrBusy = errors.New("operation already in progress")

// State is the lifecycle position of an operation
type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Entry is the latest known operation for a package
type Entry struct {
	ID         string
	Package    string
	Operation  string
	State      State
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Tracker is a concurrency-safe status map keyed by package name
type Tracker struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Begin marks pkg pending for operation and returns the new operation ID
func (t *Tracker) Begin(pkg, operation string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[pkg]; ok && cur.State == StatePending {
		return "", fmt.Errorf("%w: %s %s (%s)", ErrBusy, cur.Operation, pkg, cur.ID)
	}

	id := uuid.NewString()
	t.entries[pkg] = Entry{
		ID:        id,
		Package:   pkg,
		Operation: operation,
		State:     StatePending,
		StartedAt: t.now(),
	}
	return id, nil
}

// Resolve records the final result of operation id. Resolving an unknown or
// already resolved operation is an error and changes nothing.
func (t *Tracker) Resolve(id string, res core.OperationResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for pkg, e := range t.entries {
		if e.ID != id {
			continue
		}
		if e.State != StatePending {
			return fmt.Errorf("operation %s already %s", id, e.State)
		}
		e.State = StateFailed
		if res.Success {
			e.State = StateSucceeded
		}
		e.Message = res.Message
		e.FinishedAt = t.now()
		t.entries[pkg] = e
		return nil
	}

	return fmt.Errorf("unknown operation %s", id)
}

// Get returns the latest entry for pkg
func (t *Tracker) Get(pkg string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[pkg]
	return e, ok
}
