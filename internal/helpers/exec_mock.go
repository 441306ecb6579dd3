package helpers

import (
	"context"
	"strings"
	"sync"
)

// MockCommandRunner is a mock implementation of CommandRunner for testing
type MockCommandRunner struct {
	CommandExistsFunc  func(name string) bool
	RequireCommandFunc func(name string) error
	ExecuteFunc        func(ctx context.Context, name string, args ...string) (*CommandResult, error)

	mu    sync.Mutex
	calls []string
}

// CommandExists implements CommandRunner.CommandExists
func (m *MockCommandRunner) CommandExists(name string) bool {
	if m.CommandExistsFunc != nil {
		return m.CommandExistsFunc(name)
	}
	return false
}

// RequireCommand implements CommandRunner.RequireCommand
func (m *MockCommandRunner) RequireCommand(name string) error {
	if m.RequireCommandFunc != nil {
		return m.RequireCommandFunc(name)
	}
	return nil
}

// Execute implements CommandRunner.Execute and records the invocation
func (m *MockCommandRunner) Execute(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, name, args...)
	}
	return &CommandResult{}, nil
}

// Calls returns every recorded Execute invocation as "name arg1 arg2"
func (m *MockCommandRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the number of Execute invocations
func (m *MockCommandRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded invocations
func (m *MockCommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
