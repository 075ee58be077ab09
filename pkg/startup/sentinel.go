// Package startup manages the one-shot hooks under
// /etc/container/first-startup and the sentinels that keep them from
// running twice. A hook re-runs only when its content changes, so
// rebuilding an image with an updated hook gets a fresh execution.
package startup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
)

// Sentinels tracks which hook contents have already been executed.
// Each sentinel file is named after the hook and holds the content
// checksum it ran with.
type Sentinels struct {
	dir string
}

// NewSentinels creates a sentinel store rooted at dir.
func NewSentinels(dir string) *Sentinels {
	return &Sentinels{dir: dir}
}

func (s *Sentinels) path(name string) string {
	return filepath.Join(s.dir, name)
}

// NeedsRun reports whether a hook with the given content checksum has
// yet to run. A missing or stale sentinel both mean "run it".
func (s *Sentinels) NeedsRun(name, checksum string) bool {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(data)) != checksum
}

// Record marks a hook content as executed.
func (s *Sentinels) Record(name, checksum string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", s.dir)
	}
	if err := os.WriteFile(s.path(name), []byte(checksum+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write sentinel for %s", name)
	}
	return nil
}

// Clear removes the sentinel for a hook, forcing the next run.
func (s *Sentinels) Clear(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to clear sentinel for %s", name)
	}
	return nil
}
