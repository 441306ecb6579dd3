package core

import (
	"fmt"
	"strings"
)

// UninstallMode selects the removal strategy
type UninstallMode string

const (
	// UninstallSafe uses the dependency-aware removal command
	UninstallSafe UninstallMode = "safe"
	// UninstallForce removes without dependency checks. Destructive.
	UninstallForce UninstallMode = "force"
)

// ParseUninstallMode converts user input into an UninstallMode
func ParseUninstallMode(s string) (UninstallMode, error) {
	switch UninstallMode(strings.ToLower(strings.TrimSpace(s))) {
	case UninstallSafe, "":
		return UninstallSafe, nil
	case UninstallForce:
		return UninstallForce, nil
	default:
		return "", fmt.Errorf("unknown uninstall mode %q (expected %q or %q)", s, UninstallSafe, UninstallForce)
	}
}

// UninstallOptions contains options for package removal
type UninstallOptions struct {
	Mode           UninstallMode // safe or force
	CleanupOrphans bool          // Remove dependencies no longer required (safe mode only)
	DryRun         bool          // Preview without changing the system
}

// Normalized returns a copy with force-mode restrictions applied
func (o UninstallOptions) Normalized() UninstallOptions {
	if o.Mode == "" {
		o.Mode = UninstallSafe
	}
	if o.Mode == UninstallForce {
		o.CleanupOrphans = false
	}
	return o
}
