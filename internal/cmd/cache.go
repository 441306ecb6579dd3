package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group
func NewCacheCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached package lists",
	}

	cmd.AddCommand(newCacheStatusCmd(cfg, log))
	cmd.AddCommand(newCacheClearCmd(cfg, log))

	return cmd
}

type cacheStatusEntry struct {
	Mode       core.Mode  `json:"mode"`
	Present    bool       `json:"present"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	Records    int        `json:"records"`
	SizeBytes  int64      `json:"size_bytes"`
	Location   string     `json:"location"`
}

func newCacheStatusCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is cached for each mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open cache: %v", err)
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			infos, err := store.Status(cmd.Context())
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to read cache status: %v", err)
				return fmt.Errorf("cache status: %w", err)
			}

			if jsonOutput {
				entries := make([]cacheStatusEntry, 0, len(infos))
				for _, info := range infos {
					entry := cacheStatusEntry{
						Mode:      info.Mode,
						Present:   info.Present,
						Records:   info.Records,
						SizeBytes: info.SizeBytes,
						Location:  info.Location,
					}
					if info.Present {
						captured := info.CapturedAt
						entry.CapturedAt = &captured
					}
					entries = append(entries, entry)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			ui.PrintHeader(cmd.OutOrStdout(), "Cache ("+backendName(cfg)+")")
			printCacheTable(cmd, infos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func printCacheTable(cmd *cobra.Command, infos []cache.Info) {
	header := []string{"Mode", "Captured", "Records", "Size", "Location"}
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, info := range infos {
		if !info.Present {
			table.Append(string(info.Mode), "not cached", "-", "-", info.Location)
			continue
		}
		table.Append(
			string(info.Mode),
			humanize.Time(info.CapturedAt),
			humanize.Comma(int64(info.Records)),
			sizeLabel(info.SizeBytes),
			info.Location,
		)
	}

	table.Render()
}

func sizeLabel(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func backendName(cfg *config.Config) string {
	if cfg.Cache.Backend == "" {
		return cache.BackendFile
	}
	return cfg.Cache.Backend
}

func newCacheClearCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached package lists",
		Long:  `Drop the cached list of one mode (flat or annotated), or of both when --mode is omitted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, cfg, log)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open cache: %v", err)
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			if mode == "" {
				if err := cache.InvalidateAll(ctx, store); err != nil {
					ui.PrintError(cmd.ErrOrStderr(), "failed to clear cache: %v", err)
					return err
				}
				ui.PrintSuccess(cmd.OutOrStdout(), "Cleared all %d cached modes", len(core.Modes))
				return nil
			}

			m, err := core.ParseMode(mode)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "%v", err)
				return err
			}
			if err := store.Invalidate(ctx, m); err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to clear %s cache: %v", m, err)
				return err
			}

			log.Info().Str("mode", string(m)).Msg("cache cleared")
			ui.PrintSuccess(cmd.OutOrStdout(), "Cleared %s cache", m)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "mode to clear: flat or annotated (default both)")

	return cmd
}
