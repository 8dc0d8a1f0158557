package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscloud/nexus/internal/registry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "bots"))
	require.NoError(t, err)
	return s
}

func TestWriteListRead(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("100", "config.json", []byte(`{"a":1}`)))
	require.NoError(t, s.WriteFile("100", "index.js", []byte("// hi")))

	names, err := s.ListFiles("100")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"config.json", "index.js"}, names)

	data, err := s.ReadFile("100", "config.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestReadMissingFileReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	data, err := s.ReadFile("100", "nope.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestHiddenFilesExcludedFromListing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("100", "visible.js", nil))
	dir := filepath.Join(s.Root(), "100")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET"), 0o600))

	names, err := s.ListFiles("100")
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.js"}, names)
}

func TestTraversalConfinedToBotDir(t *testing.T) {
	s := newTestStore(t)
	outside := filepath.Join(filepath.Dir(s.Root()), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("untouched"), 0o600))

	// a traversal name resolves to its base component inside the sandbox
	require.NoError(t, s.WriteFile("100", "../../victim.txt", []byte("pwned")))
	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(data))

	got, err := s.ReadFile("100", "../../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, string(got), "root:")

	inside, err := os.ReadFile(filepath.Join(s.Root(), "100", "victim.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pwned", string(inside))
}

func TestUnsafeNamesRejected(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", ".", "..", "   ", "a/.."} {
		assert.Error(t, s.WriteFile("100", name, nil), "name %q", name)
	}
}

func TestBotIDSquashedToBase(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("../escape", "f.txt", []byte("x")))
	_, err := os.Stat(filepath.Join(s.Root(), "escape", "f.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(s.Root()), "escape"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("100", "gone.txt", []byte("x")))
	require.NoError(t, s.DeleteFile("100", "gone.txt"))
	assert.Error(t, s.DeleteFile("100", "gone.txt"))
}

func TestProvisionWritesTemplate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision("55", registry.TypeDiscord))

	data, err := s.ReadFile("55", StartupFile)
	require.NoError(t, err)
	assert.Equal(t, Template(registry.TypeDiscord), string(data))
	assert.NotEmpty(t, Template(registry.TypeTelegram))
	assert.NotEmpty(t, Template(registry.TypeGeneric))
}

func TestDestroyIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision("55", registry.TypeGeneric))
	require.NoError(t, s.Destroy("55"))
	_, err := os.Stat(filepath.Join(s.Root(), "55"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Destroy("55"))
}

func TestMigrateLegacySingleFile(t *testing.T) {
	s := newTestStore(t)
	legacy := filepath.Join(s.Root(), "42.js")
	require.NoError(t, os.WriteFile(legacy, []byte("// old layout"), 0o640))

	s.MigrateLegacy([]string{"42"})

	_, err := os.Stat(legacy)
	assert.True(t, os.IsNotExist(err))
	data, err := s.ReadFile("42", StartupFile)
	require.NoError(t, err)
	assert.Equal(t, "// old layout", string(data))
}

func TestMigrateRecreatesMissingFolder(t *testing.T) {
	s := newTestStore(t)
	s.MigrateLegacy([]string{"77"})
	data, err := s.ReadFile("77", StartupFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recreated")
}

func TestMigrateLeavesExistingFolderAlone(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteFile("9", StartupFile, []byte("mine")))
	s.MigrateLegacy([]string{"9"})
	data, err := s.ReadFile("9", StartupFile)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}
