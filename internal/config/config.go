package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/quantmind-br/nebula/internal/security"
	"github.com/spf13/viper"
)

const appName = "nebula"

// Config represents the application configuration
type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	DNF       DNFConfig       `mapstructure:"dnf"`
	Privilege PrivilegeConfig `mapstructure:"privilege"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	CacheDir string `mapstructure:"cache_dir"`
	DBFile   string `mapstructure:"db_file"`
	LogFile  string `mapstructure:"log_file"`
}

// CacheConfig selects the snapshot store
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

// FetchConfig bounds external queries
type FetchConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	MaxChunkBytes int           `mapstructure:"max_chunk_bytes"`
}

// DNFConfig names the package tools
type DNFConfig struct {
	Binary      string `mapstructure:"binary"`
	RPMBinary   string `mapstructure:"rpm_binary"`
	QueryFormat string `mapstructure:"query_format"`
}

// PrivilegeConfig holds the elevation prefix for mutations
type PrivilegeConfig struct {
	Command string `mapstructure:"command"`
}

// WatchConfig configures the rpmdb watcher
type WatchConfig struct {
	RPMDBDir string        `mapstructure:"rpmdb_dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from the default locations and the environment
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the default locations when
// path is empty. A missing default file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(expandPath(path))
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Environment variable overrides
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.CacheDir = expandPath(cfg.Paths.CacheDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Watch.RPMDBDir = expandPath(cfg.Watch.RPMDBDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Fetch.ChunkSize < 1 {
		return fmt.Errorf("fetch.chunk_size must be at least 1, got %d", c.Fetch.ChunkSize)
	}

	switch c.Cache.Backend {
	case "file", "sqlite", "none":
	default:
		return fmt.Errorf("cache.backend must be file, sqlite or none, got %q", c.Cache.Backend)
	}

	for key, value := range map[string]string{
		"dnf.binary":        c.DNF.Binary,
		"dnf.rpm_binary":    c.DNF.RPMBinary,
		"privilege.command": c.Privilege.Command,
	} {
		if err := security.ValidateCommandArg(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(xdg.DataHome, appName)

	v.SetDefault("paths.data_dir", dataDir)
	v.SetDefault("paths.cache_dir", filepath.Join(xdg.CacheHome, appName))
	v.SetDefault("paths.db_file", filepath.Join(dataDir, "cache.db"))
	v.SetDefault("paths.log_file", filepath.Join(xdg.StateHome, appName, appName+".log"))

	v.SetDefault("cache.backend", "file")

	v.SetDefault("fetch.concurrency", 5)
	v.SetDefault("fetch.timeout", "2m")
	v.SetDefault("fetch.chunk_size", 200)
	v.SetDefault("fetch.max_chunk_bytes", 64*1024)

	v.SetDefault("dnf.binary", "dnf")
	v.SetDefault("dnf.rpm_binary", "rpm")
	v.SetDefault("dnf.query_format", "")

	v.SetDefault("privilege.command", "pkexec")

	v.SetDefault("watch.rpmdb_dir", "/var/lib/rpm")
	v.SetDefault("watch.debounce", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
