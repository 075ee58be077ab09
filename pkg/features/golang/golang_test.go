package golang_test

import (
	"strings"
	"testing"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/features"
	_ "github.com/outfit-dev/outfit/pkg/features/golang"
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

func opsOfType(ops []operations.Operation, typ operations.Type) []operations.Operation {
	var out []operations.Operation
	for _, op := range ops {
		if op.Type == typ {
			out = append(out, op)
		}
	}
	return out
}

func TestPlanDownloadsVersionedTarball(t *testing.T) {
	f, err := features.Get("golang")
	require.NoError(t, err)

	ctx := testCtx(t, "arm64")
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	downloads := opsOfType(ops, operations.Download)
	require.Len(t, downloads, 1)
	assert.Equal(t, "https://go.dev/dl/go1.23.4.linux-arm64.tar.gz", downloads[0].URL)

	checks := opsOfType(ops, operations.VerifyArtifact)
	require.Len(t, checks, 1)
	assert.Equal(t, downloads[0].URL+".sha256", checks[0].Expectation.PublishedURL)
	// The default version carries a pinned hash.
	assert.NotEmpty(t, checks[0].Expectation.Pinned)
}

func TestPlanHonorsConfiguredVersion(t *testing.T) {
	t.Setenv("GO_VERSION", "1.22.1")

	f, err := features.Get("golang")
	require.NoError(t, err)

	ops, err := f.Plan(testCtx(t, "amd64"))
	require.NoError(t, err)

	downloads := opsOfType(ops, operations.Download)
	require.Len(t, downloads, 1)
	assert.Contains(t, downloads[0].URL, "go1.22.1.linux-amd64.tar.gz")
}

func TestPlanFailsClosedOnUnknownArch(t *testing.T) {
	f, err := features.Get("golang")
	require.NoError(t, err)

	_, err = f.Plan(testCtx(t, "riscv64"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchUnsupported))
}

func TestPlanWritesFragmentAndVerifyScript(t *testing.T) {
	f, err := features.Get("golang")
	require.NoError(t, err)

	ctx := testCtx(t, "amd64")
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var fragment, script *operations.Operation
	for i := range ops {
		switch ops[i].Target {
		case ctx.Paths.FragmentPath(60, "golang"):
			fragment = &ops[i]
		case ctx.Paths.VerifyScriptPath("golang"):
			script = &ops[i]
		}
	}
	require.NotNil(t, fragment)
	assert.Contains(t, string(fragment.Content), "GOPATH")
	assert.Contains(t, string(fragment.Content), "go/bin")

	require.NotNil(t, script)
	assert.Equal(t, uint32(0755), script.FileMode())
	assert.Contains(t, string(script.Content), "go version")
	assert.True(t, strings.HasPrefix(string(script.Content), "#!/bin/bash\n"))
}
