package awscli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/features"
	_ "github.com/outfit-dev/outfit/pkg/features/awscli"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T, arch string) features.Context {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	return features.Context{Config: cfg, Paths: p, Platform: platform.Platform{Arch: arch}}
}

func TestPlanUsesUnameArchNaming(t *testing.T) {
	f, err := features.Get("awscli")
	require.NoError(t, err)

	ops, err := f.Plan(testCtx(t, "amd64"))
	require.NoError(t, err)

	var download, check *operations.Operation
	for i := range ops {
		switch ops[i].Type {
		case operations.Download:
			download = &ops[i]
		case operations.VerifyArtifact:
			check = &ops[i]
		}
	}
	require.NotNil(t, download)
	assert.Equal(t, "https://awscli.amazonaws.com/awscli-exe-linux-x86_64-2.22.0.zip", download.URL)

	require.NotNil(t, check)
	assert.Equal(t, download.URL+".sig", check.Expectation.SignatureURL)
}

func TestPlanFailsClosedOnUnknownArch(t *testing.T) {
	f, err := features.Get("awscli")
	require.NoError(t, err)

	_, err = f.Plan(testCtx(t, "mips64"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchUnsupported))
}

func TestPlanLoadsConfiguredSigningKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "aws-cli.asc")
	require.NoError(t, os.WriteFile(keyPath, []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----\n"), 0644))
	t.Setenv("OUTFIT_AWSCLI__KEY_FILE", keyPath)

	f, err := features.Get("awscli")
	require.NoError(t, err)

	ops, err := f.Plan(testCtx(t, "arm64"))
	require.NoError(t, err)

	for _, op := range ops {
		if op.Type == operations.VerifyArtifact {
			assert.NotEmpty(t, op.Expectation.Keyring)
		}
	}
}

func TestPlanRunsVendorInstaller(t *testing.T) {
	f, err := features.Get("awscli")
	require.NoError(t, err)

	ctx := testCtx(t, "amd64")
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var installer *operations.Operation
	for i := range ops {
		if ops[i].Type == operations.RunCommand {
			installer = &ops[i]
		}
	}
	require.NotNil(t, installer)
	assert.Contains(t, installer.Command, "aws/install")
	assert.Contains(t, installer.Args, "--bin-dir")
	assert.NotEmpty(t, installer.Sentinel)
}
