package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/query"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewUserCmd creates the user command
func NewUserCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		refresh    bool
		jsonOutput bool
		quiet      bool
		showDeps   bool
		filter     string
		category   string
	)

	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"userinstalled"},
		Short:   "List user-installed packages with dependencies",
		Long: `List the packages installed on explicit request, each with its
dependencies and a category.

Dependencies are resolved with batched dnf deplist calls, at most
fetch.concurrency at a time. When some of those calls fail the result is
shown but not cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			var progress query.Progress
			if !jsonOutput && !quiet {
				progress = ui.NewChunkProgress(errOut, "Resolving dependencies")
			}

			svc, err := openServices(ctx, cfg, log, progress)
			if err != nil {
				ui.PrintError(errOut, "failed to open cache: %v", err)
				return fmt.Errorf("open services: %w", err)
			}
			defer svc.Close(log)

			res, err := svc.query.ListUserInstalled(ctx, refresh)
			if err != nil {
				printQueryError(errOut, "list user-installed packages", err)
				return err
			}

			if res.Partial() {
				ui.PrintWarning(errOut, "%d of %d dependency queries failed; dependencies are incomplete and the result was not cached",
					res.Failures, res.Chunks)
			}

			records, err := filterCategory(filterRecords(res.Snapshot.Records, filter), category)
			if err != nil {
				ui.PrintError(errOut, "%v", err)
				return err
			}

			switch {
			case jsonOutput:
				return writeJSON(out, res, records)
			case quiet:
				writeNames(out, records)
				return nil
			}

			if len(records) == 0 {
				if filter != "" || category != "" {
					ui.PrintWarning(out, "No packages found matching filters")
				} else {
					ui.PrintInfo(out, "No user-installed packages")
				}
				return nil
			}

			printSummary(out, "User-Installed Packages", res, len(records), filter)
			printAnnotatedTable(cmd, records, showDeps)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "bypass the cache and query dnf")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print names only, one per line")
	cmd.Flags().BoolVarP(&showDeps, "deps", "d", false, "list dependency names instead of counts")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy filter on package name")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show packages in this category")

	return cmd
}

func filterCategory(records []core.PackageRecord, category string) ([]core.PackageRecord, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return records, nil
	}
	if !knownCategory(core.Category(category)) {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	filtered := make([]core.PackageRecord, 0, len(records))
	for _, rec := range records {
		if rec.Category == core.Category(category) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func knownCategory(c core.Category) bool {
	switch c {
	case core.CategorySystem, core.CategoryLibrary, core.CategoryDevelopment,
		core.CategoryDesktop, core.CategoryInternet, core.CategoryMultimedia,
		core.CategoryFonts, core.CategoryLanguage, core.CategoryDocumentation,
		core.CategoryOther:
		return true
	}
	return false
}

func printAnnotatedTable(cmd *cobra.Command, records []core.PackageRecord, showDeps bool) {
	header := []string{"Name", "Category", "Dependencies"}
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, rec := range records {
		deps := strconv.Itoa(len(rec.Dependencies))
		if showDeps {
			deps = strings.Join(rec.DependencyNames(), ", ")
			if deps == "" {
				deps = "-"
			}
		}
		table.Append(rec.Name, ui.ColorizeCategory(rec.Category), deps)
	}

	table.Render()
}
