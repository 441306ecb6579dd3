// Package transaction tracks undo steps for multi-step filesystem writes so a
// half-finished cache write never leaves stray files behind.
package transaction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// UndoFunc reverses one completed step
type UndoFunc func() error

type step struct {
	name string
	undo UndoFunc
}

// Manager holds undo steps in registration order
type Manager struct {
	mu     sync.Mutex
	steps  []step
	logger *zerolog.Logger
}

// NewManager creates an empty manager. A nil logger disables logging.
func NewManager(logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{logger: logger}
}

// Add registers the undo action for a step that just completed
func (m *Manager) Add(name string, undo UndoFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, undo: undo})
}

// Pending returns the number of registered steps
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// Rollback undoes every step, newest first, and empties the stack.
// All undo actions run even when some of them fail.
func (m *Manager) Rollback() error {
	m.mu.Lock()
	steps := m.steps
	m.steps = nil
	m.mu.Unlock()

	if len(steps) == 0 {
		return nil
	}

	m.logger.Debug().Int("steps", len(steps)).Msg("rolling back")

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if err := s.undo(); err != nil {
			m.logger.Warn().Err(err).Str("step", s.name).Msg("undo failed")
			errs = append(errs, fmt.Errorf("undo %s: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}

// Commit forgets every step
func (m *Manager) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = nil
}
