// Package golang installs the Go toolchain from go.dev release
// tarballs.
package golang

import (
	"fmt"
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/verify"
)

const fragmentIndex = 60

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "golang" }
func (feature) Description() string { return "Go toolchain" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("golang")
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	arch, err := ctx.Platform.Resolve(platform.GoArch)
	if err != nil {
		return nil, err
	}

	version := f.Version(ctx)
	artifact := fmt.Sprintf("go%s.linux-%s.tar.gz", version, arch)
	url := "https://go.dev/dl/" + artifact
	goRoot := filepath.Join(ctx.Paths.OptDir(), "go")

	ops := []operations.Operation{
		operations.Fetch("golang", url, artifact),
		// go.dev publishes a bare digest next to every tarball.
		operations.Check("golang", artifact, verify.Expectation{
			Pinned:       verify.PinnedFor(artifact),
			PublishedURL: url + ".sha256",
		}),
		// The tarball contains a single go/ directory.
		operations.Unpack("golang", artifact, ctx.Paths.OptDir(), 0),
		operations.MkDir("golang", ctx.Paths.BinDir()),
		operations.Symlink("golang", filepath.Join(ctx.Paths.BinDir(), "go"), filepath.Join(goRoot, "bin", "go")),
		operations.Symlink("golang", filepath.Join(ctx.Paths.BinDir(), "gofmt"), filepath.Join(goRoot, "bin", "gofmt")),
	}

	frag := shellfrag.New("golang").
		Export("GOPATH", "$HOME/go").
		PathPrepend(filepath.Join(goRoot, "bin")).
		PathPrepend("$GOPATH/bin")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "golang", frag)...)
	ops = append(ops, features.VerifyScriptOps(ctx, "golang", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "go version" }

func (feature) Doc() string {
	return `# Go

Installs the Go toolchain from the official go.dev release tarballs
into /usr/local/go, with ` + "`go`" + ` and ` + "`gofmt`" + ` linked onto PATH.

- Version: ` + "`golang.version`" + ` in outfit.toml, or ` + "`GO_VERSION`" + `.
- GOPATH defaults to ` + "`$HOME/go`" + `; its bin dir is on PATH.
- Verify with ` + "`test-golang`" + `.
`
}
