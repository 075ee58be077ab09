package rlang_test

import (
	"testing"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/features"
	_ "github.com/outfit-dev/outfit/pkg/features/rlang"
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

func TestPlanAddsCRANRepository(t *testing.T) {
	f, err := features.Get("rlang")
	require.NoError(t, err)

	ctx := testCtx(t)
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var source *operations.Operation
	for i := range ops {
		if ops[i].Type == operations.WriteFile && ops[i].Target == ctx.Paths.AptSourcesDir()+"/cran.sources" {
			source = &ops[i]
		}
	}
	require.NotNil(t, source)
	rendered := string(source.Content)
	assert.Contains(t, rendered, "URIs: https://cloud.r-project.org/bin/linux/debian")
	assert.Contains(t, rendered, "Suites: bookworm-cran40/")
}

func TestPlanInstallsRBaseAndUserLibrary(t *testing.T) {
	f, err := features.Get("rlang")
	require.NoError(t, err)

	ctx := testCtx(t)
	ops, err := f.Plan(ctx)
	require.NoError(t, err)

	var install, fragment, hook *operations.Operation
	for i := range ops {
		op := &ops[i]
		switch {
		case op.Type == operations.AptInstall:
			install = op
		case op.Target == ctx.Paths.FragmentPath(45, "rlang"):
			fragment = op
		case op.Target == ctx.Paths.HookPath(25, "rlang-libdir"):
			hook = op
		}
	}
	require.NotNil(t, install)
	assert.Contains(t, install.Packages, "r-base")

	require.NotNil(t, fragment)
	assert.Contains(t, string(fragment.Content), "R_LIBS_USER")

	require.NotNil(t, hook)
	assert.Contains(t, string(hook.Content), `mkdir -p "$HOME/R/library"`)
}
