package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/quantmind-br/nebula/internal/cache"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/quantmind-br/nebula/internal/fsops"
	"github.com/quantmind-br/nebula/internal/helpers"
	"github.com/quantmind-br/nebula/internal/paths"
	"github.com/quantmind-br/nebula/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// doctorFs is replaced in tests
var doctorFs afero.Fs = afero.NewOsFs()

var errMissingDir = errors.New("does not exist (run with --fix to create)")

// diagnosis collects the outcome of every check
type diagnosis struct {
	out      io.Writer
	issues   []string
	warnings []string
}

func (d *diagnosis) ok(format string, args ...interface{}) {
	ui.PrintSuccess(d.out, format, args...)
}

func (d *diagnosis) issue(summary, format string, args ...interface{}) {
	ui.PrintError(d.out, format, args...)
	d.issues = append(d.issues, summary)
}

func (d *diagnosis) warn(summary, format string, args ...interface{}) {
	ui.PrintWarning(d.out, format, args...)
	d.warnings = append(d.warnings, summary)
}

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, privileges and cache health",
		Long: `Check that dnf and rpm are installed, that the privilege command is
available, and that the cache location is usable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := &diagnosis{out: cmd.OutOrStdout()}
			runner := newCommandRunner()
			resolver := paths.NewResolver(cfg)

			ui.PrintHeader(d.out, "System Diagnostics")

			// 1. Package tools
			ui.PrintHeader(d.out, "Package Tools")
			tools := dnfOptions(cfg)
			for _, tool := range []struct{ name, purpose string }{
				{tools.Binary, "queries, updates and safe removal"},
				{tools.RPMBinary, "force removal"},
			} {
				if runner.CommandExists(tool.name) {
					d.ok("%s: found", tool.name)
				} else {
					d.issue(fmt.Sprintf("Missing %s (%s)", tool.name, tool.purpose), "%s: NOT FOUND", tool.name)
				}
			}

			// 2. Privilege escalation
			ui.PrintHeader(d.out, "Privileges")
			checkPrivilege(d, runner, cfg.Privilege.Command)

			// 3. Cache
			ui.PrintHeader(d.out, "Cache")
			checkCache(cmd, d, cfg, log, resolver, fix)

			// 4. Configuration and logging
			ui.PrintHeader(d.out, "Configuration")
			if configFile := resolver.ConfigFile(); fsops.Exists(doctorFs, configFile) {
				d.ok("Config file: %s", configFile)
			} else {
				d.ok("Config file: %s (not present, defaults in use)", configFile)
			}
			logDir := filepath.Dir(resolver.LogFile())
			if err := checkDir(logDir, fix); err != nil {
				d.warn("Log directory not writable", "Log directory %s: %v", logDir, err)
			} else {
				d.ok("Log directory: %s", logDir)
			}

			// Summary
			ui.PrintHeader(d.out, "Summary")
			if len(d.issues) == 0 {
				ui.PrintSuccess(d.out, "All critical checks passed!")
			} else {
				ui.PrintError(d.out, "Found %d issue(s):", len(d.issues))
				for _, issue := range d.issues {
					fmt.Fprintf(d.out, "  %s %s\n", ui.Bullet, issue)
				}
			}
			if len(d.warnings) > 0 {
				ui.PrintWarning(d.out, "Found %d warning(s):", len(d.warnings))
				for _, w := range d.warnings {
					fmt.Fprintf(d.out, "  %s %s\n", ui.Bullet, w)
				}
			}

			log.Debug().Int("issues", len(d.issues)).Int("warnings", len(d.warnings)).Msg("diagnostics finished")

			if len(d.issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(d.issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "create missing directories")

	return cmd
}

func checkPrivilege(d *diagnosis, runner helpers.CommandRunner, command string) {
	elevated, err := helpers.NewElevatedRunner(runner, command)
	if err != nil {
		d.issue("Invalid privilege.command", "privilege command: %v", err)
		return
	}

	prefix := elevated.Prefix()
	if len(prefix) == 0 {
		d.ok("No privilege prefix needed")
		return
	}
	if runner.CommandExists(prefix[0]) {
		d.ok("%s: found", prefix[0])
		return
	}
	d.issue(fmt.Sprintf("Missing privilege command %s (updates and removals will fail)", prefix[0]),
		"%s: NOT FOUND", prefix[0])
}

func checkCache(cmd *cobra.Command, d *diagnosis, cfg *config.Config, log *zerolog.Logger, resolver *paths.Resolver, fix bool) {
	backend := backendName(cfg)

	switch backend {
	case cache.BackendNone:
		d.warn("Cache disabled", "Cache backend is %q; every list queries dnf", backend)
		return
	case cache.BackendFile:
		dir := resolver.CacheDir()
		err := checkDir(dir, fix)
		switch {
		case errors.Is(err, errMissingDir):
			d.warn("Cache directory missing", "Cache directory %s %v", dir, err)
			return
		case err != nil:
			d.issue("Cache directory not writable", "Cache directory %s: %v", dir, err)
			return
		}
		d.ok("Cache directory: %s", dir)
	case cache.BackendSQLite:
		dir := filepath.Dir(resolver.DBFile())
		if err := checkDir(dir, fix); err != nil && !errors.Is(err, errMissingDir) {
			d.issue("Cache database directory not writable", "Database directory %s: %v", dir, err)
			return
		}
		d.ok("Cache database: %s", resolver.DBFile())
	}

	store, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		d.issue("Cannot open cache", "Cache: NOT ACCESSIBLE (%v)", err)
		return
	}
	defer store.Close()

	infos, err := store.Status(cmd.Context())
	if err != nil {
		d.issue("Cannot read cache", "Cache: unreadable (%v)", err)
		return
	}
	for _, info := range infos {
		if info.Present {
			d.ok("%s: %d packages cached", info.Mode, info.Records)
		} else {
			ui.PrintInfo(d.out, "%s: not cached", info.Mode)
		}
	}
}

// checkDir verifies dir is a writable directory, creating it when fix is set
func checkDir(dir string, fix bool) error {
	if !fsops.Exists(doctorFs, dir) {
		if !fix {
			return errMissingDir
		}
		if err := fsops.EnsureDir(doctorFs, dir, 0o755); err != nil {
			return err
		}
	}
	if !fsops.IsDir(doctorFs, dir) {
		return fmt.Errorf("not a directory")
	}
	return fsops.CheckWritable(doctorFs, dir)
}
