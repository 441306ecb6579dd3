package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, 5, cfg.Fetch.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.Timeout)
	assert.Equal(t, 200, cfg.Fetch.ChunkSize)
	assert.Equal(t, 65536, cfg.Fetch.MaxChunkBytes)
	assert.Equal(t, "dnf", cfg.DNF.Binary)
	assert.Equal(t, "rpm", cfg.DNF.RPMBinary)
	assert.Empty(t, cfg.DNF.QueryFormat)
	assert.Equal(t, "pkexec", cfg.Privilege.Command)
	assert.Equal(t, "/var/lib/rpm", cfg.Watch.RPMDBDir)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "nebula", filepath.Base(cfg.Paths.CacheDir))
	assert.Equal(t, "cache.db", filepath.Base(cfg.Paths.DBFile))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[cache]
backend = "sqlite"

[fetch]
concurrency = 2
timeout = "30s"
chunk_size = 50

[dnf]
binary = "dnf5"
query_format = "%{name}\n"

[paths]
cache_dir = "~/custom-cache"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 50, cfg.Fetch.ChunkSize)
	assert.Equal(t, "dnf5", cfg.DNF.Binary)
	assert.Equal(t, "%{name}\n", cfg.DNF.QueryFormat)
	assert.Equal(t, filepath.Join(home, "custom-cache"), cfg.Paths.CacheDir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEBULA_FETCH_CONCURRENCY", "3")
	t.Setenv("NEBULA_PRIVILEGE_COMMAND", "sudo -n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
	assert.Equal(t, "sudo -n", cfg.Privilege.Command)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Cache:     CacheConfig{Backend: "file"},
			Fetch:     FetchConfig{Concurrency: 5, Timeout: time.Minute, ChunkSize: 10},
			DNF:       DNFConfig{Binary: "dnf", RPMBinary: "rpm"},
			Privilege: PrivilegeConfig{Command: "pkexec"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "fetch.concurrency"},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "fetch.timeout"},
		{"zero chunk", func(c *Config) { c.Fetch.ChunkSize = 0 }, "fetch.chunk_size"},
		{"bad backend", func(c *Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"shell in privilege", func(c *Config) { c.Privilege.Command = "sudo; id" }, "privilege.command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	t.Setenv("NEBULA_TEST_DIR", "/srv/cache")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty path", "", ""},
		{"absolute path", "/var/lib/rpm", "/var/lib/rpm"},
		{"home expansion", "~/test", filepath.Join(homeDir, "test")},
		{"env expansion", "$NEBULA_TEST_DIR/nebula", "/srv/cache/nebula"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPath(tt.input))
		})
	}
}
