//go:build !windows

package nexus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/workspace"
)

func newApp(t *testing.T) *App {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.BotsDir = filepath.Join(cfg.DataDir, "bots")
	cfg.Runtime = "/bin/sh"
	cfg.HistoryDSN = "sqlite://" + filepath.Join(cfg.DataDir, "history.db")

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestAppAssembly(t *testing.T) {
	app := newApp(t)

	// bootstrap admin exists and can authenticate
	id, token, err := app.Auth.Authenticate("Mira", "Nika")
	require.NoError(t, err)
	assert.Equal(t, registry.RoleAdmin, id.Role)
	assert.NotEmpty(t, token)

	assert.NotNil(t, app.Router(func() {}))
}

func TestAppBotRoundTrip(t *testing.T) {
	app := newApp(t)

	bot, err := app.Registry.CreateBot("Mira", registry.RoleAdmin, "demo", "generic", "", "", "")
	require.NoError(t, err)
	require.NoError(t, app.Workspace.Provision(bot.ID, bot.Type))
	require.NoError(t, app.Workspace.WriteFile(bot.ID, workspace.StartupFile, []byte("echo ok\n")))

	require.NoError(t, app.Supervisor.Start(bot.ID))
	app.Supervisor.KillAll()
}

func TestLegacyLayoutMigratedOnAssembly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.BotsDir = filepath.Join(cfg.DataDir, "bots")

	// first app creates a bot, then we fake the old single-file layout
	app, err := New(cfg)
	require.NoError(t, err)
	bot, err := app.Registry.CreateBot("Mira", registry.RoleAdmin, "old", "generic", "", "", "")
	require.NoError(t, err)
	require.NoError(t, app.Close())
	require.NoError(t, app.Workspace.Destroy(bot.ID))

	legacy := filepath.Join(cfg.BotsDir, bot.ID+".js")
	require.NoError(t, os.WriteFile(legacy, []byte("// legacy body"), 0o640))

	app2, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app2.Close() })

	data, err := app2.Workspace.ReadFile(bot.ID, workspace.StartupFile)
	require.NoError(t, err)
	assert.Equal(t, "// legacy body", string(data))
}
