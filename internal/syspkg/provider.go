package syspkg

import (
	"strings"

	"github.com/quantmind-br/nebula/internal/core"
)

// Command is an external invocation: program name plus arguments
type Command struct {
	Name string
	Args []string
}

// String renders the command for logs and messages
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Provider defines the command vocabulary of a system package manager.
// Providers only build commands; running them is the caller's job.
type Provider interface {
	// Name returns the provider name (e.g., "dnf")
	Name() string

	// ListInstalled lists every installed package, one identifier per line
	ListInstalled() Command

	// ListUserInstalled lists packages installed on explicit user request
	ListUserInstalled() Command

	// Deplist resolves dependencies of several packages in one invocation
	Deplist(subjects []string) Command

	// Update upgrades a single package
	Update(pkgName string) Command

	// Remove removes a package; the result may be a preview when opts.DryRun is set
	Remove(pkgName string, opts core.UninstallOptions) Command

	// IsPreviewAborted reports whether a dry-run exit status and output mean
	// "preview shown, nothing applied" rather than a failure
	IsPreviewAborted(res PreviewOutput) bool
}

// PreviewOutput is the subset of a command result used to judge dry runs
type PreviewOutput struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
