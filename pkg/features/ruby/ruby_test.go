package ruby_test

import (
	"testing"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/features"
	_ "github.com/outfit-dev/outfit/pkg/features/ruby"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T) features.Context {
	t.Helper()
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	return features.Context{Config: cfg, Paths: p, Platform: platform.Platform{Arch: "amd64"}}
}

func TestPlanInstallsDefaultPackages(t *testing.T) {
	f, err := features.Get("ruby")
	require.NoError(t, err)

	ops, err := f.Plan(testCtx(t))
	require.NoError(t, err)

	var install *operations.Operation
	for i := range ops {
		if ops[i].Type == operations.AptInstall {
			install = &ops[i]
		}
	}
	require.NotNil(t, install)
	assert.Contains(t, install.Packages, "ruby-full")
	assert.Contains(t, install.Packages, "build-essential")
}

func TestPlanFragmentSetsGemHome(t *testing.T) {
	f, err := features.Get("ruby")
	require.NoError(t, err)

	ctx := testCtx(t)
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var frag *operations.Operation
	for i := range ops {
		if ops[i].Target == ctx.Paths.FragmentPath(50, "ruby") {
			frag = &ops[i]
		}
	}
	require.NotNil(t, frag)
	content := string(frag.Content)
	assert.Contains(t, content, `export GEM_HOME="$HOME/.gem"`)
	assert.Contains(t, content, "$GEM_HOME/bin")
}

func TestPlanWritesVerifyWrapper(t *testing.T) {
	f, err := features.Get("ruby")
	require.NoError(t, err)

	ctx := testCtx(t)
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var wrapper *operations.Operation
	for i := range ops {
		if ops[i].Target == ctx.Paths.VerifyScriptPath("ruby") {
			wrapper = &ops[i]
		}
	}
	require.NotNil(t, wrapper)
	assert.Contains(t, string(wrapper.Content), "ruby --version")
	assert.Equal(t, uint32(0755), wrapper.FileMode())
}
