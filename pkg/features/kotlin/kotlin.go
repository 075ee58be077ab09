// Package kotlin installs the Kotlin command line compiler from
// JetBrains' GitHub releases.
package kotlin

import (
	"fmt"
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/verify"
)

const fragmentIndex = 56

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "kotlin" }
func (feature) Description() string { return "Kotlin compiler (requires java)" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("kotlin")
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	version := f.Version(ctx)
	artifact := fmt.Sprintf("kotlin-compiler-%s.zip", version)
	url := fmt.Sprintf("https://github.com/JetBrains/kotlin/releases/download/v%s/%s", version, artifact)
	kotlinHome := filepath.Join(ctx.Paths.OptDir(), "kotlinc")

	ops := []operations.Operation{
		operations.Fetch("kotlin", url, artifact),
		operations.Check("kotlin", artifact, verify.Expectation{
			Pinned:       verify.PinnedFor(artifact),
			PublishedURL: url + ".sha256",
		}),
		// The zip contains a single kotlinc/ directory.
		operations.Unpack("kotlin", artifact, ctx.Paths.OptDir(), 0),
		operations.MkDir("kotlin", ctx.Paths.BinDir()),
		operations.Symlink("kotlin", filepath.Join(ctx.Paths.BinDir(), "kotlinc"), filepath.Join(kotlinHome, "bin", "kotlinc")),
		operations.Symlink("kotlin", filepath.Join(ctx.Paths.BinDir(), "kotlin"), filepath.Join(kotlinHome, "bin", "kotlin")),
	}

	frag := shellfrag.New("kotlin").
		Export("KOTLIN_HOME", kotlinHome).
		PathPrepend(filepath.Join(kotlinHome, "bin"))
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "kotlin", frag)...)
	ops = append(ops, features.VerifyScriptOps(ctx, "kotlin", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "kotlinc -version" }

func (feature) Doc() string {
	return `# Kotlin

Installs the Kotlin command line compiler into /usr/local/kotlinc.
The compiler runs on the JVM, so enable the java feature alongside it.

- Version: ` + "`kotlin.version`" + ` or ` + "`KOTLIN_VERSION`" + `.
- Verify with ` + "`test-kotlin`" + `.
`
}
