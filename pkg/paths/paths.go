// Package paths provides centralized path handling for outfit.
// All installation output is resolved against a root prefix so the
// whole layout can be redirected for tests or staged image builds.
// When running unprivileged against the real root, state and cache
// fall back to XDG locations.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/outfit-dev/outfit/pkg/errors"
)

// Environment variable names
const (
	// EnvPrefix overrides the root prefix for all generated paths
	EnvPrefix = "OUTFIT_PREFIX"

	// EnvStateDir overrides the state directory
	EnvStateDir = "OUTFIT_STATE_DIR"

	// EnvCacheDir overrides the download cache directory
	EnvCacheDir = "OUTFIT_CACHE_DIR"
)

// Fixed layout pieces. These mirror the container conventions the tool
// provisions into and are not user-configurable.
const (
	// BashrcDirName is where per-feature shell fragments live
	BashrcDirName = "etc/bashrc.d"

	// FirstStartupDirName is where one-shot container startup hooks live
	FirstStartupDirName = "etc/container/first-startup"

	// ConfigDirName is where build configuration lives
	ConfigDirName = "etc/container/config"

	// EnabledFeaturesFile lists the features to provision
	EnabledFeaturesFile = "enabled-features.conf"

	// ConfigFile is the main outfit configuration file
	ConfigFile = "outfit.toml"

	// BinDirName is where verification wrappers and tool symlinks go
	BinDirName = "usr/local/bin"

	// OptDirName is the install root for extracted SDKs
	OptDirName = "usr/local"

	// KeyringDirName is where apt signing keys are written
	KeyringDirName = "usr/share/keyrings"

	// AptSourcesDirName is where deb822 source files are written
	AptSourcesDirName = "etc/apt/sources.list.d"

	// SentinelDirName holds run-once markers under the state dir
	SentinelDirName = "sentinels"

	// MarkerDirName holds auth-watcher markers under the state dir
	MarkerDirName = "markers"

	// ChecksumStateFile records trust-on-first-use checksums
	ChecksumStateFile = "checksums.toml"

	// SummaryLogFile is the feature summary log
	SummaryLogFile = "container-features.log"
)

// Paths provides centralized path management for outfit
type Paths interface {
	Root() string
	BashrcDir() string
	FirstStartupDir() string
	ConfigDir() string
	EnabledFeaturesPath() string
	ConfigFilePath() string
	StateDir() string
	SentinelDir() string
	MarkerDir() string
	ChecksumStatePath() string
	CacheDir() string
	BinDir() string
	OptDir() string
	KeyringDir() string
	AptSourcesDir() string
	SummaryLogPath() string
	FragmentPath(index int, feature string) string
	HookPath(index int, name string) string
	VerifyScriptPath(feature string) string
}

type paths struct {
	root     string
	stateDir string
	cacheDir string
	logDir   string
}

// New creates a new Paths instance rooted at the given prefix.
// An empty prefix means "/", honoring OUTFIT_PREFIX when set.
func New(prefix string) (Paths, error) {
	if prefix == "" {
		prefix = os.Getenv(EnvPrefix)
	}
	if prefix == "" {
		prefix = "/"
	}

	absRoot, err := filepath.Abs(prefix)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve prefix %s", prefix)
	}

	p := &paths{root: absRoot}

	// Writable locations. Root builds own /var; unprivileged runs against
	// the real root fall back to XDG so dry-runs and tests work.
	systemLayout := absRoot != "/" || os.Geteuid() == 0
	if systemLayout {
		p.stateDir = filepath.Join(absRoot, "var", "lib", "outfit")
		p.cacheDir = filepath.Join(absRoot, "var", "cache", "outfit")
		p.logDir = filepath.Join(absRoot, "var", "log")
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, "outfit")
		p.cacheDir = filepath.Join(xdg.CacheHome, "outfit")
		p.logDir = filepath.Join(xdg.StateHome, "outfit")
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = dir
	}
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		p.cacheDir = dir
	}

	return p, nil
}

func (p *paths) Root() string            { return p.root }
func (p *paths) BashrcDir() string       { return filepath.Join(p.root, BashrcDirName) }
func (p *paths) FirstStartupDir() string { return filepath.Join(p.root, FirstStartupDirName) }
func (p *paths) ConfigDir() string       { return filepath.Join(p.root, ConfigDirName) }
func (p *paths) StateDir() string        { return p.stateDir }
func (p *paths) SentinelDir() string     { return filepath.Join(p.stateDir, SentinelDirName) }
func (p *paths) MarkerDir() string       { return filepath.Join(p.stateDir, MarkerDirName) }
func (p *paths) CacheDir() string        { return p.cacheDir }
func (p *paths) BinDir() string          { return filepath.Join(p.root, BinDirName) }
func (p *paths) OptDir() string          { return filepath.Join(p.root, OptDirName) }
func (p *paths) KeyringDir() string      { return filepath.Join(p.root, KeyringDirName) }
func (p *paths) AptSourcesDir() string   { return filepath.Join(p.root, AptSourcesDirName) }

func (p *paths) EnabledFeaturesPath() string {
	return filepath.Join(p.ConfigDir(), EnabledFeaturesFile)
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.ConfigDir(), ConfigFile)
}

func (p *paths) ChecksumStatePath() string {
	return filepath.Join(p.stateDir, ChecksumStateFile)
}

func (p *paths) SummaryLogPath() string {
	return filepath.Join(p.logDir, SummaryLogFile)
}

// FragmentPath returns the bashrc.d fragment path for a feature,
// e.g. /etc/bashrc.d/60-golang.sh.
func (p *paths) FragmentPath(index int, feature string) string {
	return filepath.Join(p.BashrcDir(), fmt.Sprintf("%02d-%s.sh", index, feature))
}

// HookPath returns the first-startup hook path for a feature step,
// e.g. /etc/container/first-startup/30-claudecode-plugins.sh.
func (p *paths) HookPath(index int, name string) string {
	return filepath.Join(p.FirstStartupDir(), fmt.Sprintf("%02d-%s.sh", index, name))
}

// VerifyScriptPath returns the test-<feature> wrapper path.
func (p *paths) VerifyScriptPath(feature string) string {
	return filepath.Join(p.BinDir(), "test-"+feature)
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
