package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscloud/nexus/internal/registry"
)

func TestUserDeniedOutsideAllowedPrefix(t *testing.T) {
	e := New(t.TempDir())
	for _, cmd := range []string{
		"ls",
		"rm -rf /",
		"npminstall left-pad",
		"NPM install left-pad",
		"echo npm install",
	} {
		out, err := e.Run(registry.RoleUser, cmd)
		assert.ErrorIs(t, err, ErrPermissionDenied, "command %q", cmd)
		assert.Empty(t, out)
	}
}

func TestUserDeniedChainedCommands(t *testing.T) {
	e := New(t.TempDir())
	for _, cmd := range []string{
		"npm install left-pad && rm -rf /",
		"npm install left-pad; whoami",
		"npm install left-pad | tee /etc/passwd",
	} {
		_, err := e.Run(registry.RoleUser, cmd)
		assert.ErrorIs(t, err, ErrPermissionDenied, "command %q", cmd)
	}
}

func TestUserAllowedPrefixExecutes(t *testing.T) {
	e := New(t.TempDir())
	// leading whitespace is trimmed before the prefix check
	out, err := e.Run(registry.RoleUser, "  npm install left-pad")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestAdminUnrestricted(t *testing.T) {
	e := New(t.TempDir())
	out, err := e.Run(registry.RoleAdmin, "echo hello; echo world")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}

func TestSilentSuccessReportsDone(t *testing.T) {
	e := New(t.TempDir())
	out, err := e.Run(registry.RoleAdmin, "true")
	require.NoError(t, err)
	assert.Equal(t, "Done.", out)
}

func TestFailureOutputReturnedNotErrored(t *testing.T) {
	e := New(t.TempDir())
	out, err := e.Run(registry.RoleAdmin, "ls /definitely/not/here")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	out, err := e.Run(registry.RoleAdmin, "pwd")
	require.NoError(t, err)
	assert.Contains(t, out, dir)
}
