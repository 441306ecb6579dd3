package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Prompts are swapped in tests
var (
	confirmDangerous = ui.ConfirmDangerousAction
	selectPackage    = ui.SelectPackage
)

// NewUninstallCmd creates the uninstall command
func NewUninstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		mode           string
		cleanupOrphans bool
		dryRun         bool
		yes            bool
	)

	cmd := &cobra.Command{
		Use:   "uninstall [package]",
		Short: "Remove a package",
		Long: `Remove one package. Run without arguments to pick from the
user-installed packages.

Modes:
  safe   dnf remove, dependency-aware (default)
  force  rpm -e --nodeps, skips dependency checks and may break other packages

--cleanup-orphans also removes dependencies nothing else needs (safe mode only).
--dry-run previews the transaction without changing anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			uninstallMode, err := core.ParseUninstallMode(mode)
			if err != nil {
				ui.PrintError(errOut, "%v", err)
				return err
			}
			opts := core.UninstallOptions{
				Mode:           uninstallMode,
				CleanupOrphans: cleanupOrphans,
				DryRun:         dryRun,
			}
			if opts.Mode == core.UninstallForce && cleanupOrphans {
				ui.PrintWarning(errOut, "--cleanup-orphans is ignored in force mode")
			}

			svc, err := openServices(ctx, cfg, log, nil)
			if err != nil {
				ui.PrintError(errOut, "failed to open cache: %v", err)
				return fmt.Errorf("open services: %w", err)
			}
			defer svc.Close(log)

			var pkgName string
			if len(args) == 1 {
				pkgName = args[0]
			} else {
				pkgName, err = pickPackage(ctx, svc, out)
				if errors.Is(err, ui.ErrCancelled) {
					ui.PrintWarning(out, "Selection cancelled. No packages were removed.")
					return nil
				}
				if err != nil {
					printQueryError(errOut, "load packages", err)
					return err
				}
			}

			if opts.Mode == core.UninstallForce && !opts.DryRun && !yes {
				confirmed, err := confirmDangerous(out, "force-remove", pkgName)
				if err != nil && !errors.Is(err, ui.ErrCancelled) {
					return err
				}
				if !confirmed {
					ui.PrintWarning(out, "Uninstall cancelled. No packages were removed.")
					return nil
				}
			}

			log.Info().
				Str("package", pkgName).
				Str("mode", string(opts.Mode)).
				Bool("dry_run", opts.DryRun).
				Msg("starting uninstall")

			res := svc.mutation.Uninstall(ctx, pkgName, opts)
			ui.PrintResult(out, res)

			if !res.Success {
				return errors.New(res.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(core.UninstallSafe), "removal mode: safe or force")
	cmd.Flags().BoolVar(&cleanupOrphans, "cleanup-orphans", false, "also remove dependencies no longer required (safe mode)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "preview the removal without changing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the force-mode confirmation")

	return cmd
}

// pickPackage lets the user choose among the user-installed packages
func pickPackage(ctx context.Context, svc *services, out io.Writer) (string, error) {
	res, err := svc.query.ListUserInstalled(ctx, false)
	if err != nil {
		return "", err
	}

	names := res.Snapshot.Names()
	if len(names) == 0 {
		return "", fmt.Errorf("no user-installed packages found")
	}

	ui.PrintInfo(out, "Found %d user-installed packages, type to search", len(names))
	return selectPackage("Select package to remove", names)
}
