package dnf

import (
	"strings"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/syspkg"
)

const ProviderName = "dnf"

// previewAbortedMarker is printed by dnf when --assumeno declines the transaction
const previewAbortedMarker = "Operation aborted"

// Options configures binaries and output format
type Options struct {
	Binary      string // dnf executable
	RPMBinary   string // rpm executable, used for force removal
	QueryFormat string // optional --queryformat for repoquery listings
}

// Provider builds dnf and rpm command lines
type Provider struct {
	opts Options
}

// NewProvider creates a new dnf provider
func NewProvider(opts Options) *Provider {
	if opts.Binary == "" {
		opts.Binary = "dnf"
	}
	if opts.RPMBinary == "" {
		opts.RPMBinary = "rpm"
	}
	return &Provider{opts: opts}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return ProviderName
}

// ListInstalled lists every installed package
func (p *Provider) ListInstalled() syspkg.Command {
	return p.repoquery("--installed")
}

// ListUserInstalled lists packages the user asked for explicitly
func (p *Provider) ListUserInstalled() syspkg.Command {
	return p.repoquery("--userinstalled")
}

func (p *Provider) repoquery(selector string) syspkg.Command {
	args := []string{"repoquery", selector, "--quiet", "--latest-limit=1"}
	if p.opts.QueryFormat != "" {
		args = append(args, "--queryformat", p.opts.QueryFormat)
	}
	return syspkg.Command{Name: p.opts.Binary, Args: args}
}

// Deplist resolves the dependencies of every subject in one invocation
func (p *Provider) Deplist(subjects []string) syspkg.Command {
	args := make([]string, 0, len(subjects)+2)
	args = append(args, "deplist", "--quiet")
	args = append(args, subjects...)
	return syspkg.Command{Name: p.opts.Binary, Args: args}
}

// Update upgrades one package
func (p *Provider) Update(pkgName string) syspkg.Command {
	return syspkg.Command{Name: p.opts.Binary, Args: []string{"upgrade", "-y", pkgName}}
}

// Remove builds the removal command. Safe mode goes through dnf and honors
// orphan cleanup; force mode uses rpm without dependency checks.
func (p *Provider) Remove(pkgName string, opts core.UninstallOptions) syspkg.Command {
	opts = opts.Normalized()

	if opts.Mode == core.UninstallForce {
		args := []string{"-e", "--nodeps"}
		if opts.DryRun {
			args = append(args, "--test")
		}
		return syspkg.Command{Name: p.opts.RPMBinary, Args: append(args, pkgName)}
	}

	confirm := "-y"
	if opts.DryRun {
		confirm = "--assumeno"
	}

	cleanup := "False"
	if opts.CleanupOrphans {
		cleanup = "True"
	}

	return syspkg.Command{
		Name: p.opts.Binary,
		Args: []string{"remove", confirm, "--setopt=clean_requirements_on_remove=" + cleanup, pkgName},
	}
}

// IsPreviewAborted reports whether a non-zero dry run only declined the transaction
func (p *Provider) IsPreviewAborted(res syspkg.PreviewOutput) bool {
	if res.ExitCode == 0 {
		return true
	}
	if res.ExitCode != 1 {
		return false
	}
	return strings.Contains(res.Stdout, previewAbortedMarker) || strings.Contains(res.Stderr, previewAbortedMarker)
}

// Ensure Provider implements syspkg.Provider.
var _ syspkg.Provider = (*Provider)(nil)
