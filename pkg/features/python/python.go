// Package python installs the distribution Python stack via apt.
package python

import (
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/startup"
)

const (
	fragmentIndex = 40
	hookIndex     = 20
)

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "python" }
func (feature) Description() string { return "Python 3 with venv and pip" }

func (feature) Version(ctx features.Context) string {
	// Version follows the distribution; there is nothing to pin.
	return ""
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	packages := ctx.Config.Strings("python.packages")

	ops := []operations.Operation{
		operations.Apt("python", packages...),
	}

	frag := shellfrag.New("python").
		PathPrepend("$HOME/.local/bin")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "python", frag)...)

	// pip upgrades belong to the user scope, so they wait for first
	// startup rather than running as root at build time.
	hook := startup.Script("python3 -m pip install --user --upgrade pip")
	ops = append(ops,
		operations.MkDir("python", ctx.Paths.FirstStartupDir()),
		operations.Script("python", ctx.Paths.HookPath(hookIndex, "python-pip"), hook),
	)

	ops = append(ops, features.VerifyScriptOps(ctx, "python", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "python3 --version" }

func (feature) Doc() string {
	return `# Python

Installs Python 3, venv and pip from the distribution repositories.
User-level pip installs land in ~/.local/bin, which is on PATH.

- Packages: ` + "`python.packages`" + ` in outfit.toml.
- Verify with ` + "`test-python`" + `.
`
}
