package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		refresh    bool
		jsonOutput bool
		quiet      bool
		filter     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all installed packages",
		Long: `List every installed package by name.

The cached list is shown when available; --refresh queries dnf again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			svc, err := openServices(ctx, cfg, log, nil)
			if err != nil {
				ui.PrintError(errOut, "failed to open cache: %v", err)
				return fmt.Errorf("open services: %w", err)
			}
			defer svc.Close(log)

			res, err := svc.query.ListAll(ctx, refresh)
			if err != nil {
				printQueryError(errOut, "list installed packages", err)
				return err
			}

			records := filterRecords(res.Snapshot.Records, filter)

			switch {
			case jsonOutput:
				return writeJSON(out, res, records)
			case quiet:
				writeNames(out, records)
				return nil
			}

			if len(records) == 0 {
				if filter != "" {
					ui.PrintWarning(out, "No packages found matching %q", filter)
				} else {
					ui.PrintInfo(out, "No packages installed")
				}
				return nil
			}

			printSummary(out, "Installed Packages", res, len(records), filter)
			printFlatTable(cmd, records)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "bypass the cache and query dnf")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print names only, one per line")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter on package name")

	return cmd
}

func printFlatTable(cmd *cobra.Command, records []core.PackageRecord) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"#", "Name"}),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for i, rec := range records {
		table.Append(strconv.Itoa(i+1), rec.Name)
	}

	table.Render()
}
