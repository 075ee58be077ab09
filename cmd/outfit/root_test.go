package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfit-dev/outfit/pkg/errors"
)

// runCommand executes the root command with args and returns captured
// output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// captureStdout captures os.Stdout during fn, for commands that print
// directly instead of through cobra's writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func testPrefix(t *testing.T) string {
	t.Helper()
	prefix := t.TempDir()
	t.Setenv("OUTFIT_PREFIX", prefix)
	t.Setenv("OUTFIT_STATE_DIR", filepath.Join(prefix, "var", "lib", "outfit"))
	t.Setenv("OUTFIT_CACHE_DIR", filepath.Join(prefix, "var", "cache", "outfit"))
	return prefix
}

func TestVersionCommand(t *testing.T) {
	output := captureStdout(t, func() {
		_, err := runCommand(t, "version")
		require.NoError(t, err)
	})
	assert.Contains(t, output, "outfit version")
	assert.Contains(t, output, "commit:")
}

func TestCompletionBash(t *testing.T) {
	output, err := runCommand(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, output, "outfit")
}

func TestListShowsAllFeatures(t *testing.T) {
	testPrefix(t)

	output, err := runCommand(t, "list")
	require.NoError(t, err)

	assert.Contains(t, output, "FEATURE")
	for _, name := range []string{"golang", "java", "kotlin", "python", "rlang", "ruby", "android", "awscli", "onepassword", "claudecode"} {
		assert.Contains(t, output, name)
	}
	assert.NotContains(t, output, "yes")
}

func TestListMarksEnabledFeatures(t *testing.T) {
	prefix := testPrefix(t)
	confDir := filepath.Join(prefix, "etc", "container", "config")
	require.NoError(t, os.MkdirAll(confDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(confDir, "enabled-features.conf"),
		[]byte("golang=true\nruby=false\n"), 0644))

	output, err := runCommand(t, "list")
	require.NoError(t, err)

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "golang") {
			assert.Contains(t, line, "yes")
		}
		if strings.Contains(line, "ruby") {
			assert.Contains(t, line, "no")
		}
	}
}

func TestSnippetBash(t *testing.T) {
	testPrefix(t)

	output, err := runCommand(t, "snippet")
	require.NoError(t, err)
	assert.Contains(t, output, "etc/bashrc.d/*.sh")
	assert.Contains(t, output, `source "$f"`)
}

func TestSnippetZsh(t *testing.T) {
	testPrefix(t)

	output, err := runCommand(t, "snippet", "zsh")
	require.NoError(t, err)
	assert.Contains(t, output, `source "$f"`)
}

func TestSnippetUnsupportedShell(t *testing.T) {
	testPrefix(t)

	_, err := runCommand(t, "snippet", "fish")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestExplainGolang(t *testing.T) {
	output, err := runCommand(t, "explain", "golang")
	require.NoError(t, err)
	assert.Contains(t, output, "Go toolchain")
	assert.Contains(t, output, "test-golang")
}

func TestExplainUnknownFeature(t *testing.T) {
	_, err := runCommand(t, "explain", "no-such-feature")
	require.Error(t, err)
}

func TestWatchAuthRejectsUnwatchedFeature(t *testing.T) {
	testPrefix(t)

	_, err := runCommand(t, "watch-auth", "golang")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestInstallUnknownFeature(t *testing.T) {
	testPrefix(t)

	_, err := runCommand(t, "install", "no-such-feature")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFeatureNotFound))
}

func TestInstallDryRunTouchesNothing(t *testing.T) {
	prefix := testPrefix(t)

	_, err := runCommand(t, "install", "--dry-run", "golang")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(prefix, "usr", "local", "go"))
	assert.True(t, os.IsNotExist(statErr))

	_, statErr = os.Stat(filepath.Join(prefix, "var", "log", "container-features.log"))
	assert.True(t, os.IsNotExist(statErr))

	// Reset the persistent flag for later tests.
	rootCmd.PersistentFlags().Set("dry-run", "false")
	dryRun = false
}

func TestInstallNothingEnabled(t *testing.T) {
	testPrefix(t)

	_, err := runCommand(t, "install")
	require.NoError(t, err)
}
