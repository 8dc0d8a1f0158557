//go:build !windows

package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscloud/nexus/internal/auth"
	"github.com/nexuscloud/nexus/internal/logbuf"
	"github.com/nexuscloud/nexus/internal/registry"
	"github.com/nexuscloud/nexus/internal/server"
	"github.com/nexuscloud/nexus/internal/supervisor"
	"github.com/nexuscloud/nexus/internal/terminal"
	"github.com/nexuscloud/nexus/internal/workspace"
)

// startPanel runs a real panel handler on an httptest server.
func startPanel(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	reg, err := registry.Load(dir, "Mira", "Nika")
	require.NoError(t, err)
	require.NoError(t, reg.CreateAccount("bob", "pw", registry.RoleUser))
	ws, err := workspace.New(filepath.Join(dir, "bots"))
	require.NoError(t, err)
	buf := logbuf.New(100)
	sup := supervisor.New(reg, ws, buf, "/bin/sh")
	t.Cleanup(sup.KillAll)

	r := server.NewRouter(reg, auth.NewService(reg), sup, ws, terminal.New(dir), buf, func() {})
	ts := httptest.NewServer(r.Handler())
	t.Cleanup(ts.Close)

	return New(Config{BaseURL: ts.URL})
}

func TestLoginAndReachability(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	assert.True(t, c.IsReachable(ctx))

	_, err := c.Login(ctx, "Mira", "wrong")
	assert.ErrorIs(t, err, ErrAPIError)

	id, err := c.Login(ctx, "Mira", "Nika")
	require.NoError(t, err)
	assert.Equal(t, "Mira", id.Username)
	assert.Equal(t, "admin", id.Role)
}

func TestBotLifecycle(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "Mira", "Nika")
	require.NoError(t, err)

	id, err := c.CreateBot(ctx, CreateBotRequest{Name: "mybot", Type: "generic"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	bots, err := c.ListBots(ctx)
	require.NoError(t, err)
	require.Contains(t, bots, id)
	assert.Equal(t, "mybot", bots[id].Name)

	// replace the startup file with a long-running script and drive it
	require.NoError(t, c.WriteFile(ctx, id, workspace.StartupFile, []byte("sleep 60\n")))
	require.NoError(t, c.StartBot(ctx, id))
	assert.ErrorIs(t, c.StartBot(ctx, id), ErrAPIError)
	require.NoError(t, c.StopBot(ctx, id))
	require.NoError(t, c.StopBot(ctx, id))

	require.NoError(t, c.DeleteBot(ctx, id))
	bots, err = c.ListBots(ctx)
	require.NoError(t, err)
	assert.NotContains(t, bots, id)
}

func TestFileRoundTrip(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "Mira", "Nika")
	require.NoError(t, err)
	id, err := c.CreateBot(ctx, CreateBotRequest{Name: "files", Type: "discord"})
	require.NoError(t, err)

	require.NoError(t, c.WriteFile(ctx, id, "notes.txt", []byte("hello")))
	files, err := c.ListFiles(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, files, "notes.txt")

	data, err := c.ReadFile(ctx, id, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, c.DeleteFile(ctx, id, "notes.txt"))
}

func TestLogsAndTerminal(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "Mira", "Nika")
	require.NoError(t, err)

	out, err := c.Terminal(ctx, "echo via-client")
	require.NoError(t, err)
	assert.Contains(t, out, "via-client")

	logs, err := c.Logs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, logs)
}

func TestTerminalDenialForUser(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	_, err = c.Terminal(ctx, "ls")
	assert.ErrorIs(t, err, ErrAPIError)
}

func TestUserManagement(t *testing.T) {
	c := startPanel(t)
	ctx := context.Background()
	_, err := c.Login(ctx, "Mira", "Nika")
	require.NoError(t, err)

	require.NoError(t, c.CreateUser(ctx, CreateUserRequest{Username: "carol", Password: "pw2"}))
	assert.ErrorIs(t, c.CreateUser(ctx, CreateUserRequest{Username: "carol", Password: "x"}), ErrAPIError)

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, "carol")

	require.NoError(t, c.DeleteUser(ctx, "carol"))
	assert.ErrorIs(t, c.DeleteUser(ctx, "Mira"), ErrAPIError)
}

func TestUnauthenticatedCallsFail(t *testing.T) {
	c := startPanel(t)
	_, err := c.ListBots(context.Background())
	assert.Error(t, err)
}
