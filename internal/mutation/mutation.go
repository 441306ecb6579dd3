// Package mutation runs update and removal commands through the privileged
// runner. Every call ends in a core.OperationResult; no error escapes.
package mutation

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/security"
	"github.com/quantmind-br/nebula/internal/status"
	"github.com/quantmind-br/nebula/internal/syspkg"
	"github.com/rs/zerolog"
)

// Operation names recorded in the status tracker
const (
	OpUpdate    = "update"
	OpUninstall = "uninstall"
)

// Service implements the mutation operations
type Service struct {
	provider syspkg.Provider
	runner   helpers.CommandRunner
	store    cache.Store
	tracker  *status.Tracker
	logger   *zerolog.Logger
}

// NewService creates a mutation service. runner is expected to elevate.
func NewService(provider syspkg.Provider, runner helpers.CommandRunner, store cache.Store, tracker *status.Tracker, log *zerolog.Logger) *Service {
	if store == nil {
		store = cache.NullStore{}
	}
	if tracker == nil {
		tracker = status.NewTracker()
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Service{
		provider: provider,
		runner:   runner,
		store:    store,
		tracker:  tracker,
		logger:   log,
	}
}

// Tracker exposes the per-package status map
func (s *Service) Tracker() *status.Tracker {
	return s.tracker
}

// Update upgrades one package
func (s *Service) Update(ctx context.Context, pkgName string) core.OperationResult {
	return s.run(ctx, OpUpdate, pkgName, false, func() syspkg.Command {
		return s.provider.Update(pkgName)
	})
}

// Uninstall removes one package. In dry-run mode the preview variant runs
// and its output is returned as details; nothing is changed.
func (s *Service) Uninstall(ctx context.Context, pkgName string, opts core.UninstallOptions) core.OperationResult {
	opts = opts.Normalized()
	if opts.Mode == core.UninstallForce && !opts.DryRun {
		s.logger.Warn().Str("package", pkgName).Msg("forced removal skips dependency checks")
	}
	return s.run(ctx, OpUninstall, pkgName, opts.DryRun, func() syspkg.Command {
		return s.provider.Remove(pkgName, opts)
	})
}

func (s *Service) run(ctx context.Context, op, pkgName string, dryRun bool, build func() syspkg.Command) (result core.OperationResult) {
	if err := security.ValidatePackageName(pkgName); err != nil {
		return core.Failed("Invalid package name", err.Error())
	}

	id, err := s.tracker.Begin(pkgName, op)
	if err != nil {
		return core.Failed(fmt.Sprintf("Cannot %s %s", op, pkgName), err.Error())
	}
	defer func() {
		if rerr := s.tracker.Resolve(id, result); rerr != nil {
			s.logger.Warn().Err(rerr).Str("operation", id).Msg("status not recorded")
		}
	}()

	cmd := build()
	log := s.logger.With().
		Str("operation", op).
		Str("package", pkgName).
		Bool("dry_run", dryRun).
		Str("command", cmd.String()).
		Logger()
	log.Info().Msg("running mutation")

	res, err := s.runner.Execute(ctx, cmd.Name, cmd.Args...)
	if err != nil {
		log.Error().Err(err).Msg("mutation could not run")
		return core.Failed(fmt.Sprintf("Failed to %s %s", op, pkgName), err.Error())
	}
	if res == nil {
		return core.Failed(fmt.Sprintf("Failed to %s %s", op, pkgName), "command produced no result")
	}

	if dryRun {
		return s.preview(log, op, pkgName, res)
	}

	if !res.Success() {
		log.Warn().Int("exit_code", res.ExitCode).Msg("mutation failed")
		return core.Failed(
			fmt.Sprintf("Failed to %s %s (exit status %d)", op, pkgName, res.ExitCode),
			diagnostics(res),
		)
	}

	if err := cache.InvalidateAll(ctx, s.store); err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
	}

	log.Info().Msg("mutation succeeded")
	return core.Succeeded(successMessage(op, pkgName), combined(res))
}

func (s *Service) preview(log zerolog.Logger, op, pkgName string, res *helpers.CommandResult) core.OperationResult {
	out := syspkg.PreviewOutput{ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr}
	if s.provider.IsPreviewAborted(out) {
		log.Info().Msg("dry run completed")
		return core.Succeeded(fmt.Sprintf("Dry run: %s %s (no changes made)", op, pkgName), combined(res))
	}

	log.Warn().Int("exit_code", res.ExitCode).Msg("dry run failed")
	return core.Failed(
		fmt.Sprintf("Dry run of %s %s failed (exit status %d)", op, pkgName, res.ExitCode),
		diagnostics(res),
	)
}

func successMessage(op, pkgName string) string {
	switch op {
	case OpUpdate:
		return fmt.Sprintf("Updated %s", pkgName)
	case OpUninstall:
		return fmt.Sprintf("Removed %s", pkgName)
	}
	return fmt.Sprintf("%s %s done", op, pkgName)
}

// diagnostics prefers stderr and falls back to stdout
func diagnostics(res *helpers.CommandResult) string {
	if s := strings.TrimSpace(res.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(res.Stdout)
}

func combined(res *helpers.CommandResult) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{res.Stdout, res.Stderr} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
