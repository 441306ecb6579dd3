package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/paths"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/quantmind-br/nebula/internal/watcher"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Invalidate the cache when the package database changes",
		Long: `Watch the rpm database directory and drop both cached package lists
after every change made outside nebula, such as a manual dnf install.

With --warm the lists are fetched again right away. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := openServices(ctx, cfg, log, nil)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open cache: %v", err)
				return fmt.Errorf("open services: %w", err)
			}
			defer svc.Close(log)

			dir := paths.NewResolver(cfg).RPMDBDir()
			onChange := func(ctx context.Context) error {
				if err := cache.InvalidateAll(ctx, svc.store); err != nil {
					return err
				}
				if !warm {
					return nil
				}
				_, errAll := svc.query.ListAll(ctx, true)
				_, errUser := svc.query.ListUserInstalled(ctx, true)
				return errors.Join(errAll, errUser)
			}

			w := watcher.New(dir, cfg.Watch.Debounce, onChange, log)

			ui.PrintInfo(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)", dir)
			if err := w.Run(ctx, nil); err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "%v", err)
				return err
			}

			ui.PrintInfo(cmd.OutOrStdout(), "Stopped after %d change(s)", w.Fired())
			return nil
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", false, "refetch both package lists after each change")

	return cmd
}
