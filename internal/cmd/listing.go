package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/query"
	"github.com/quantmind-br/nebula/internal/ui"
)

// listOutput is the --json shape of list and user
type listOutput struct {
	Mode       core.Mode            `json:"mode"`
	CapturedAt time.Time            `json:"captured_at"`
	FromCache  bool                 `json:"from_cache"`
	Partial    bool                 `json:"partial"`
	Total      int                  `json:"total"`
	Packages   []core.PackageRecord `json:"packages"`
}

// filterRecords keeps records whose name fuzzy-matches filter, preserving order
func filterRecords(records []core.PackageRecord, filter string) []core.PackageRecord {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return records
	}

	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}

	matched := make(map[string]struct{})
	for _, name := range fuzzy.FindNormalizedFold(filter, names) {
		matched[name] = struct{}{}
	}

	filtered := make([]core.PackageRecord, 0, len(matched))
	for _, rec := range records {
		if _, ok := matched[rec.Name]; ok {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func writeJSON(w io.Writer, res *query.Result, records []core.PackageRecord) error {
	out := listOutput{
		Mode:       res.Snapshot.Mode,
		CapturedAt: res.Snapshot.CapturedAt,
		FromCache:  res.FromCache,
		Partial:    res.Partial(),
		Total:      res.Snapshot.Len(),
		Packages:   records,
	}
	if out.Packages == nil {
		out.Packages = []core.PackageRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeNames(w io.Writer, records []core.PackageRecord) {
	for _, rec := range records {
		fmt.Fprintln(w, rec.Name)
	}
}

// printSummary prints the header line above a package table
func printSummary(w io.Writer, title string, res *query.Result, shown int, filter string) {
	ui.PrintHeader(w, title)

	fmt.Fprintf(w, "Total: %s packages", humanize.Comma(int64(res.Snapshot.Len())))
	if filter != "" {
		fmt.Fprintf(w, " (showing %s matching %q)", humanize.Comma(int64(shown)), filter)
	}
	fmt.Fprintln(w)

	if res.FromCache {
		ui.Muted.Fprintf(w, "cached %s, use --refresh to fetch live\n", humanize.Time(res.Snapshot.CapturedAt))
	} else {
		ui.Muted.Fprintln(w, "fetched live")
	}
	fmt.Fprintln(w)
}

// printQueryError reports a failed query and the raw diagnostic output of the tool
func printQueryError(w io.Writer, what string, err error) {
	ui.PrintError(w, "failed to %s: %v", what, err)
	ui.PrintDetails(w, query.Details(err))
}
