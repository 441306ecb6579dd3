package cmd

import (
	"errors"
	"fmt"

	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the update command
func NewUpdateCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <package>",
		Short: "Update a package",
		Long:  `Upgrade one package with dnf. Runs behind the configured privilege command.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := openServices(ctx, cfg, log, nil)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open cache: %v", err)
				return fmt.Errorf("open services: %w", err)
			}
			defer svc.Close(log)

			ui.PrintInfo(cmd.OutOrStdout(), "Updating %s...", args[0])
			res := svc.mutation.Update(ctx, args[0])
			ui.PrintResult(cmd.OutOrStdout(), res)

			if !res.Success {
				return errors.New(res.Message)
			}
			return nil
		},
	}

	return cmd
}
