// Package rlang installs R from the CRAN apt repository.
package rlang

import (
	"github.com/outfit-dev/outfit/pkg/apt"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/startup"
)

const (
	fragmentIndex = 45
	hookIndex     = 25
)

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "rlang" }
func (feature) Description() string { return "R environment from CRAN" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("rlang")
}

// cranSource is the CRAN apt repository for Debian bookworm, signed by
// Johannes Ranke's key.
func cranSource(ctx features.Context) apt.Source {
	return apt.Source{
		Name:      "cran",
		URIs:      "https://cloud.r-project.org/bin/linux/debian",
		Suites:    ctx.Config.String("rlang.suite", "bookworm-cran40/"),
		KeyURL:    "https://cloud.r-project.org/bin/linux/debian/jranke_cran.asc",
		KeySHA256: ctx.Config.String("rlang.key_sha256", ""),
	}
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	packages := ctx.Config.Strings("rlang.packages")

	ops := features.AptSourceOps(ctx, "rlang", cranSource(ctx))
	ops = append(ops, operations.Apt("rlang", packages...))

	frag := shellfrag.New("rlang").
		Export("R_LIBS_USER", "$HOME/R/library")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "rlang", frag)...)

	hook := startup.Script(`mkdir -p "$HOME/R/library"`)
	ops = append(ops,
		operations.MkDir("rlang", ctx.Paths.FirstStartupDir()),
		operations.Script("rlang", ctx.Paths.HookPath(hookIndex, "rlang-libdir"), hook),
	)

	ops = append(ops, features.VerifyScriptOps(ctx, "rlang", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "R --version" }

func (feature) Doc() string {
	return `# R

Installs r-base from the CRAN apt repository, which tracks current R
releases far closer than the distribution.

- Packages: ` + "`rlang.packages`" + `; repository suite: ` + "`rlang.suite`" + `.
- User library lives at ~/R/library (R_LIBS_USER), created at first
  startup.
- Verify with ` + "`test-rlang`" + `.
`
}
