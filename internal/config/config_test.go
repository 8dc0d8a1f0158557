package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, "node", cfg.Runtime)
	assert.Equal(t, 300, cfg.LogBuffer)
	assert.Equal(t, "Mira", cfg.Admin.Username)
	assert.Equal(t, "Nika", cfg.Admin.Password)
	assert.Equal(t, filepath.Join(".", "bots"), cfg.BotsDir)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.toml")
	body := `
listen = ":8080"
data_dir = "/var/lib/nexus"
runtime = "/usr/bin/node"
log_buffer = 500
history_dsn = "sqlite:///var/lib/nexus/history.db"

[admin]
username = "root"
password = "toor"

[log]
file = "/var/log/nexus.log"
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "/var/lib/nexus", cfg.DataDir)
	assert.Equal(t, "/usr/bin/node", cfg.Runtime)
	assert.Equal(t, 500, cfg.LogBuffer)
	assert.Equal(t, "sqlite:///var/lib/nexus/history.db", cfg.HistoryDSN)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, "toor", cfg.Admin.Password)
	assert.Equal(t, "/var/log/nexus.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	// bots_dir falls back under data_dir when unset
	assert.Equal(t, filepath.Join("/var/lib/nexus", "bots"), cfg.BotsDir)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen = \":9000\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "node", cfg.Runtime)
	assert.Equal(t, 300, cfg.LogBuffer)
}

func TestExplicitBotsDirRespected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexus.toml")
	require.NoError(t, os.WriteFile(path, []byte("bots_dir = \"/srv/bots\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/bots", cfg.BotsDir)
}

func TestMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("NEXUS_LISTEN", ":7777")
	t.Setenv("NEXUS_RUNTIME", "bun")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Listen)
	assert.Equal(t, "bun", cfg.Runtime)
}
