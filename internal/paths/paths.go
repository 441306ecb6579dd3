package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/quantmind-br/nebula/internal/config"
)

const appName = "nebula"

// Resolver centralizes nebula's file locations. Configured values win;
// empty ones fall back to the XDG base directories.
type Resolver struct {
	cfg *config.Config
}

// NewResolver creates a Resolver over cfg, which may be nil
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

func (r *Resolver) paths() config.PathsConfig {
	if r.cfg == nil {
		return config.PathsConfig{}
	}
	return r.cfg.Paths
}

// DataDir returns the persistent data directory
func (r *Resolver) DataDir() string {
	if dir := r.paths().DataDir; dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// CacheDir returns the directory holding snapshot files
func (r *Resolver) CacheDir() string {
	if dir := r.paths().CacheDir; dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, appName)
}

// DBFile returns the sqlite cache database path
func (r *Resolver) DBFile() string {
	if file := r.paths().DBFile; file != "" {
		return file
	}
	return filepath.Join(r.DataDir(), "cache.db")
}

// LogFile returns the rotating log file path
func (r *Resolver) LogFile() string {
	if file := r.paths().LogFile; file != "" {
		return file
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// ConfigFile returns where the user config file is expected
func (r *Resolver) ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// RPMDBDir returns the directory watched for package database changes
func (r *Resolver) RPMDBDir() string {
	if r.cfg != nil && r.cfg.Watch.RPMDBDir != "" {
		return r.cfg.Watch.RPMDBDir
	}
	return "/var/lib/rpm"
}
