// Package ruby installs the distribution Ruby stack via apt.
package ruby

import (
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
)

const fragmentIndex = 50

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "ruby" }
func (feature) Description() string { return "Ruby with build dependencies" }

func (feature) Version(ctx features.Context) string {
	return ""
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	packages := ctx.Config.Strings("ruby.packages")

	ops := []operations.Operation{
		operations.Apt("ruby", packages...),
	}

	// Gems install into the user's home, keeping the system gem tree
	// pristine.
	frag := shellfrag.New("ruby").
		Export("GEM_HOME", "$HOME/.gem").
		PathPrepend("$GEM_HOME/bin")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "ruby", frag)...)
	ops = append(ops, features.VerifyScriptOps(ctx, "ruby", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "ruby --version" }

func (feature) Doc() string {
	return `# Ruby

Installs ruby-full plus the build dependencies native gems need.
GEM_HOME points at ~/.gem so gem installs never require root.

- Packages: ` + "`ruby.packages`" + ` in outfit.toml.
- Verify with ` + "`test-ruby`" + `.
`
}
