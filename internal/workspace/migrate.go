package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
)

// MigrateLegacy moves old single-file bot layouts (root/<id>.js) into the
// per-bot folder structure (root/<id>/index.js). Bots whose folder is
// missing entirely get a recreated placeholder startup file. Runs once at
// startup for all known bot ids.
func (s *Store) MigrateLegacy(ids []string) {
	for _, id := range ids {
		oldPath := filepath.Join(s.root, filepath.Base(id)+".js")
		dir := s.dir(id)
		newPath := filepath.Join(dir, StartupFile)

		if _, err := os.Stat(oldPath); err == nil {
			slog.Info("migrating bot to folder structure", "bot", id)
			if err := os.MkdirAll(dir, 0o750); err != nil {
				slog.Error("migration mkdir failed", "bot", id, "error", err)
				continue
			}
			if err := os.Rename(oldPath, newPath); err != nil {
				slog.Error("migration rename failed", "bot", id, "error", err)
			}
			continue
		}

		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				slog.Error("migration mkdir failed", "bot", id, "error", err)
				continue
			}
			_ = os.WriteFile(newPath, []byte("// Bot file missing, recreated.\n"), 0o640)
		}
	}
}
