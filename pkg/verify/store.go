package verify

import (
	"os"
	"path/filepath"
	"sync"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/outfit-dev/outfit/pkg/errors"
)

// Store persists trust-on-first-use checksums as a TOML map of
// artifact name to hex SHA-256. A hash recorded by one build is
// treated as pinned by the next.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Lookup returns the recorded hash for an artifact, or "".
func (s *Store) Lookup(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded, err := s.load()
	if err != nil {
		return ""
	}
	return recorded[name]
}

// Record persists the hash for an artifact.
func (s *Store) Record(name, sha256Hex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded, err := s.load()
	if err != nil {
		return err
	}
	recorded[name] = sha256Hex

	data, err := gotoml.Marshal(recorded)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode checksum state")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(s.path))
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", s.path)
	}
	return nil
}

func (s *Store) load() (map[string]string, error) {
	recorded := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return recorded, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", s.path)
	}

	if err := gotoml.Unmarshal(data, &recorded); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "corrupt checksum state in %s", s.path)
	}
	return recorded, nil
}
