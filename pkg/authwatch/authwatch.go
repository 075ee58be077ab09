// Package authwatch waits for a credential file to appear and then
// runs a follow-up action once. Tools like 1Password and Claude Code
// only become usable after the user signs in inside the running
// container, so post-install steps that need credentials are deferred
// to a watcher instead of failing during provisioning.
package authwatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/retry"
)

// Config controls a single watch.
type Config struct {
	// CredentialPath is the file whose appearance signals a login.
	CredentialPath string

	// MarkerPath, when non-empty, makes the watch idempotent: if the
	// marker exists the action already ran, and it is written after a
	// successful run.
	MarkerPath string

	// Timeout bounds the wait for the credential file.
	Timeout time.Duration

	// PollInterval backs up fsnotify with periodic stats, covering
	// filesystems where inotify events are unreliable.
	PollInterval time.Duration

	// TransientError marks action failures worth retrying, matched as
	// a substring of the error. Credential files are often written
	// before the session is fully established.
	TransientError string

	// Retry is the policy for transient action failures.
	Retry retry.Config
}

// DefaultConfig returns the watch policy used by the CLI.
func DefaultConfig(credentialPath string) Config {
	return Config{
		CredentialPath: credentialPath,
		Timeout:        10 * time.Minute,
		PollInterval:   2 * time.Second,
		Retry:          retry.DefaultConfig(),
	}
}

// Watch waits for the credential file and runs action once. Returns
// nil immediately when the marker says the action already ran.
func Watch(ctx context.Context, cfg Config, action func(context.Context) error) error {
	logger := logging.GetLogger("authwatch")

	if cfg.MarkerPath != "" {
		if _, err := os.Stat(cfg.MarkerPath); err == nil {
			logger.Debug().Str("marker", cfg.MarkerPath).Msg("Already completed, skipping watch")
			return nil
		}
	}

	if err := await(ctx, cfg); err != nil {
		return err
	}
	logger.Info().Str("path", cfg.CredentialPath).Msg("Credentials detected")

	retryCfg := cfg.Retry
	if cfg.TransientError != "" {
		retryCfg.Retryable = func(err error) bool {
			return strings.Contains(err.Error(), cfg.TransientError)
		}
	}
	if err := retry.Do(ctx, retryCfg, "post-auth action", func() error { return action(ctx) }); err != nil {
		return err
	}

	if cfg.MarkerPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.MarkerPath), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(cfg.MarkerPath))
		}
		if err := os.WriteFile(cfg.MarkerPath, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write marker %s", cfg.MarkerPath)
		}
	}
	return nil
}

// await blocks until the credential file exists, combining fsnotify on
// the parent directory with a polling fallback.
func await(ctx context.Context, cfg Config) error {
	if _, err := os.Stat(cfg.CredentialPath); err == nil {
		return nil
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() { _ = watcher.Close() }()
		// The parent may not exist yet either; fall back to polling
		// alone in that case.
		if err := watcher.Add(filepath.Dir(cfg.CredentialPath)); err == nil {
			events = watcher.Events
		}
	}

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return errors.Newf(errors.ErrTimeout, "timed out waiting for %s", cfg.CredentialPath)
			}
			return ctx.Err()
		case ev := <-events:
			if ev.Name == cfg.CredentialPath && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				return nil
			}
		case <-ticker.C:
			if _, err := os.Stat(cfg.CredentialPath); err == nil {
				return nil
			}
		}
	}
}
