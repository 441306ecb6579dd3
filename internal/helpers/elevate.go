package helpers

import (
	"context"
	"fmt"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/unix"
)

// ElevatedRunner runs commands through a privilege escalation prefix such as
// "pkexec" or "sudo -n". The prefix is skipped when already running as root.
type ElevatedRunner struct {
	inner  CommandRunner
	prefix []string
}

// euid is swapped in tests
var euid = unix.Geteuid

// NewElevatedRunner creates an ElevatedRunner from a shell-style prefix string
func NewElevatedRunner(inner CommandRunner, prefix string) (*ElevatedRunner, error) {
	words, err := shellquote.Split(prefix)
	if err != nil {
		return nil, fmt.Errorf("parse privilege command %q: %w", prefix, err)
	}

	if euid() == 0 {
		words = nil
	}

	return &ElevatedRunner{inner: inner, prefix: words}, nil
}

// Prefix returns the argv prepended to every command
func (r *ElevatedRunner) Prefix() []string {
	return append([]string(nil), r.prefix...)
}

// CommandExists checks the wrapped command, not the escalation helper
func (r *ElevatedRunner) CommandExists(name string) bool {
	return r.inner.CommandExists(name)
}

// RequireCommand ensures both the escalation helper and the command exist
func (r *ElevatedRunner) RequireCommand(name string) error {
	if len(r.prefix) > 0 {
		if err := r.inner.RequireCommand(r.prefix[0]); err != nil {
			return err
		}
	}
	return r.inner.RequireCommand(name)
}

// Execute runs name with args behind the escalation prefix
func (r *ElevatedRunner) Execute(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	if len(r.prefix) == 0 {
		return r.inner.Execute(ctx, name, args...)
	}

	argv := make([]string, 0, len(r.prefix)+len(args))
	argv = append(argv, r.prefix[1:]...)
	argv = append(argv, name)
	argv = append(argv, args...)

	return r.inner.Execute(ctx, r.prefix[0], argv...)
}
