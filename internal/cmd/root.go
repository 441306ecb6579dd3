package cmd

import (
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/logging"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "nebula",
		Short: "Browse and manage dnf packages",
		Long: `nebula lists installed and user-installed dnf packages with their
dependencies, caches the results, and updates or removes packages.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				loaded, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				*cfg = *loaded
				// commands hold this pointer, so swap the logger in place
				*log = *logging.NewLogger(logging.Config{
					Level:   cfg.Logging.Level,
					LogFile: cfg.Paths.LogFile,
					NoColor: cfg.Logging.Color == "never",
					Console: cmd.ErrOrStderr(),
				})
				log.Debug().Str("file", configFile).Msg("configuration reloaded")
			}
			ui.InitColors(cfg.Logging.Color)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/nebula/config.toml)")

	// Add subcommands
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewUserCmd(cfg, log))
	cmd.AddCommand(NewUpdateCmd(cfg, log))
	cmd.AddCommand(NewUninstallCmd(cfg, log))
	cmd.AddCommand(NewCacheCmd(cfg, log))
	cmd.AddCommand(NewWatchCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
