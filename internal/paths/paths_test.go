package paths

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/quantmind-br/nebula/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResolver_Defaults(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, filepath.Join(xdg.DataHome, "nebula"), r.DataDir())
	assert.Equal(t, filepath.Join(xdg.CacheHome, "nebula"), r.CacheDir())
	assert.Equal(t, filepath.Join(xdg.DataHome, "nebula", "cache.db"), r.DBFile())
	assert.Equal(t, filepath.Join(xdg.StateHome, "nebula", "nebula.log"), r.LogFile())
	assert.Equal(t, filepath.Join(xdg.ConfigHome, "nebula", "config.toml"), r.ConfigFile())
	assert.Equal(t, "/var/lib/rpm", r.RPMDBDir())
}

func TestResolver_Configured(t *testing.T) {
	cfg := &config.Config{
		Paths: config.PathsConfig{
			DataDir:  "/data",
			CacheDir: "/cache",
			LogFile:  "/logs/n.log",
		},
		Watch: config.WatchConfig{RPMDBDir: "/usr/lib/sysimage/rpm"},
	}
	r := NewResolver(cfg)

	assert.Equal(t, "/data", r.DataDir())
	assert.Equal(t, "/cache", r.CacheDir())
	assert.Equal(t, "/data/cache.db", r.DBFile(), "db file follows the data dir")
	assert.Equal(t, "/logs/n.log", r.LogFile())
	assert.Equal(t, "/usr/lib/sysimage/rpm", r.RPMDBDir())
}
