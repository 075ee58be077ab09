// Package onepassword installs the 1Password CLI from the vendor apt
// repository and defers account bootstrap to an auth watcher.
package onepassword

import (
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/apt"
	"github.com/outfit-dev/outfit/pkg/authwatch"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/startup"
)

const (
	fragmentIndex = 75
	hookIndex     = 10
)

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "onepassword" }
func (feature) Description() string { return "1Password CLI (op)" }

func (feature) Version(ctx features.Context) string {
	return ""
}

// vendorSource is 1Password's stable apt repository, keyed per dpkg
// architecture, signed by key AC2D62742012EA22.
func vendorSource(ctx features.Context) apt.Source {
	return apt.Source{
		Name:          "1password",
		URIs:          "https://downloads.1password.com/linux/debian/" + ctx.Platform.Arch,
		Suites:        "stable",
		Components:    "main",
		Architectures: ctx.Platform.Arch,
		KeyURL:        "https://downloads.1password.com/linux/keys/1password.asc",
		KeySHA256:     ctx.Config.String("onepassword.key_sha256", ""),
	}
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	ops := features.AptSourceOps(ctx, "onepassword", vendorSource(ctx))
	ops = append(ops, operations.Apt("onepassword", "1password-cli"))

	frag := shellfrag.New("onepassword").
		Raw(`command -v op >/dev/null && eval "$(op completion bash)" 2>/dev/null || true`)
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "onepassword", frag)...)

	// Sign-in can only happen inside the running container, so first
	// startup hands off to the auth watcher.
	hook := startup.Script("nohup outfit watch-auth onepassword >/dev/null 2>&1 &")
	ops = append(ops,
		operations.MkDir("onepassword", ctx.Paths.FirstStartupDir()),
		operations.Script("onepassword", ctx.Paths.HookPath(hookIndex, "onepassword-auth"), hook),
	)

	ops = append(ops, features.VerifyScriptOps(ctx, "onepassword", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "op --version" }

// AuthWatch waits for the op CLI config to appear after first sign-in.
func (feature) AuthWatch(ctx features.Context) authwatch.Config {
	cfg := authwatch.DefaultConfig(paths.ExpandHome("~/.config/op/config"))
	cfg.MarkerPath = filepath.Join(ctx.Paths.MarkerDir(), "onepassword-auth")
	return cfg
}

// PostAuth confirms the session works once credentials exist.
func (feature) PostAuth(ctx features.Context) (string, []string) {
	return "op", []string{"account", "list"}
}

func (feature) Doc() string {
	return `# 1Password CLI

Installs the op CLI from 1Password's apt repository (deb822 source,
pinned signing key). Account sign-in happens in the running container;
a watcher waits for ~/.config/op/config and then validates the session.

- Verify with ` + "`test-onepassword`" + `.
`
}
