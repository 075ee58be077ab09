package authwatch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/outfit-dev/outfit/pkg/authwatch"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) authwatch.Config {
	return authwatch.Config{
		CredentialPath: filepath.Join(dir, ".credentials.json"),
		MarkerPath:     filepath.Join(dir, "markers", "done"),
		Timeout:        5 * time.Second,
		PollInterval:   10 * time.Millisecond,
		Retry:          retry.Config{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func TestWatchRunsWhenCredentialsAppear(t *testing.T) {
	cfg := testConfig(t.TempDir())

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(cfg.CredentialPath, []byte("{}"), 0600)
	}()

	var ran atomic.Bool
	err := authwatch.Watch(context.Background(), cfg, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran.Load())

	// The marker records completion.
	_, err = os.Stat(cfg.MarkerPath)
	assert.NoError(t, err)
}

func TestWatchSkipsWhenMarkerExists(t *testing.T) {
	cfg := testConfig(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.MarkerPath), 0755))
	require.NoError(t, os.WriteFile(cfg.MarkerPath, []byte("done\n"), 0644))

	err := authwatch.Watch(context.Background(), cfg, func(context.Context) error {
		t.Fatal("action must not run")
		return nil
	})
	require.NoError(t, err)
}

func TestWatchRetriesTransientFailures(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TransientError = "not logged in"
	require.NoError(t, os.WriteFile(cfg.CredentialPath, []byte("{}"), 0600))

	var calls atomic.Int32
	err := authwatch.Watch(context.Background(), cfg, func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New(errors.ErrCommandRun, "claude: not logged in")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWatchDoesNotRetryPermanentFailures(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TransientError = "not logged in"
	require.NoError(t, os.WriteFile(cfg.CredentialPath, []byte("{}"), 0600))

	var calls atomic.Int32
	err := authwatch.Watch(context.Background(), cfg, func(context.Context) error {
		calls.Add(1)
		return errors.New(errors.ErrCommandRun, "plugin manifest is invalid")
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Failed runs leave no marker.
	_, statErr := os.Stat(cfg.MarkerPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWatchTimesOut(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Timeout = 50 * time.Millisecond

	err := authwatch.Watch(context.Background(), cfg, func(context.Context) error {
		t.Fatal("action must not run")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTimeout))
}
