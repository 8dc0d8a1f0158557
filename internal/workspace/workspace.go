package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexuscloud/nexus/internal/registry"
)

// StartupFile is the conventional entry point inside every bot directory.
const StartupFile = "index.js"

// Names beginning with the hidden marker are excluded from listings.
const hiddenPrefix = "."

var errUnsafeName = errors.New("unsafe file name")

// Store maps bot identifiers to isolated directories under a single root.
// Every file operation resolves through confine; nothing in this package
// touches a path outside root/<botID>.
type Store struct {
	root string
}

// New creates the store, making the root directory if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the workspace root directory.
func (s *Store) Root() string { return s.root }

// ConfinedPath is a filesystem path proven to lie inside a bot's directory.
// It can only be produced by confine.
type ConfinedPath struct {
	path string
}

func (p ConfinedPath) String() string { return p.path }

// confine reduces name to its base component, rejects hidden traversal
// leftovers, and joins it under the bot directory. This is the single
// sandbox-resolution point for every file entry.
func (s *Store) confine(botID, name string) (ConfinedPath, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return ConfinedPath{}, errUnsafeName
	}
	return ConfinedPath{path: filepath.Join(s.dir(botID), base)}, nil
}

func (s *Store) dir(botID string) string {
	// IDs are registry-issued, but squash separators anyway
	return filepath.Join(s.root, filepath.Base(botID))
}

// ensureDir lazily creates the bot directory; first access after migration
// must not error on a missing folder.
func (s *Store) ensureDir(botID string) (string, error) {
	dir := s.dir(botID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}

// ListFiles returns the visible file names directly under the bot directory.
func (s *Store) ListFiles(botID string) ([]string, error) {
	dir, err := s.ensureDir(botID)
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), hiddenPrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadFile returns the file contents, or empty content when the file does
// not exist.
func (s *Store) ReadFile(botID, name string) ([]byte, error) {
	if _, err := s.ensureDir(botID); err != nil {
		return nil, err
	}
	cp, err := s.confine(botID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(cp.String())
	if os.IsNotExist(err) {
		return []byte{}, nil
	}
	return data, err
}

// WriteFile creates or overwrites the named file.
func (s *Store) WriteFile(botID, name string, content []byte) error {
	if _, err := s.ensureDir(botID); err != nil {
		return err
	}
	cp, err := s.confine(botID, name)
	if err != nil {
		return err
	}
	return os.WriteFile(cp.String(), content, 0o640)
}

// DeleteFile removes the named file.
func (s *Store) DeleteFile(botID, name string) error {
	cp, err := s.confine(botID, name)
	if err != nil {
		return err
	}
	return os.Remove(cp.String())
}

// StartupPath returns the absolute path of the bot's startup file.
func (s *Store) StartupPath(botID string) string {
	return filepath.Join(s.dir(botID), StartupFile)
}

// Provision creates the bot directory and writes the type's default startup
// body as the initial file.
func (s *Store) Provision(botID string, t registry.BotType) error {
	if _, err := s.ensureDir(botID); err != nil {
		return err
	}
	return os.WriteFile(s.StartupPath(botID), []byte(Template(t)), 0o640)
}

// Destroy removes the bot directory recursively. RemoveAll treats a missing
// directory as success, so deleting a record with no workspace cannot fail.
func (s *Store) Destroy(botID string) error {
	return os.RemoveAll(s.dir(botID))
}
