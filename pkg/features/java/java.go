// Package java installs an Eclipse Temurin JDK from the Adoptium
// release archives.
package java

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/verify"
)

const fragmentIndex = 55

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "java" }
func (feature) Description() string { return "Eclipse Temurin JDK" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("java")
}

// releaseNaming derives Adoptium's tag and file naming from a Temurin
// version like "21.0.5+11": the release tag keeps the plus (escaped in
// URLs), the file name replaces it with an underscore.
func releaseNaming(version string) (major, tag, fileVersion string) {
	major = strings.SplitN(version, ".", 2)[0]
	if i := strings.IndexAny(major, "+-"); i >= 0 {
		major = major[:i]
	}
	tag = "jdk-" + strings.ReplaceAll(version, "+", "%2B")
	fileVersion = strings.ReplaceAll(version, "+", "_")
	return major, tag, fileVersion
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	arch, err := ctx.Platform.Resolve(platform.TemurinArch)
	if err != nil {
		return nil, err
	}

	version := f.Version(ctx)
	major, tag, fileVersion := releaseNaming(version)
	artifact := fmt.Sprintf("OpenJDK%sU-jdk_%s_linux_hotspot_%s.tar.gz", major, arch, fileVersion)
	url := fmt.Sprintf("https://github.com/adoptium/temurin%s-binaries/releases/download/%s/%s",
		major, tag, artifact)
	javaHome := filepath.Join(ctx.Paths.OptDir(), "java", version)

	ops := []operations.Operation{
		operations.Fetch("java", url, artifact),
		// Adoptium publishes <artifact>.sha256.txt in sha256sum format.
		operations.Check("java", artifact, verify.Expectation{
			Pinned:       verify.PinnedFor(artifact),
			PublishedURL: url + ".sha256.txt",
		}),
		operations.MkDir("java", javaHome),
		// The tarball wraps everything in jdk-<version>/.
		operations.Unpack("java", artifact, javaHome, 1),
		operations.MkDir("java", ctx.Paths.BinDir()),
		operations.Symlink("java", filepath.Join(ctx.Paths.BinDir(), "java"), filepath.Join(javaHome, "bin", "java")),
		operations.Symlink("java", filepath.Join(ctx.Paths.BinDir(), "javac"), filepath.Join(javaHome, "bin", "javac")),
	}

	frag := shellfrag.New("java").
		Export("JAVA_HOME", javaHome).
		PathPrepend(filepath.Join(javaHome, "bin"))
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "java", frag)...)
	ops = append(ops, features.VerifyScriptOps(ctx, "java", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "java -version" }

func (feature) Doc() string {
	return `# Java

Installs an Eclipse Temurin JDK under /usr/local/java/<version> with
JAVA_HOME exported and ` + "`java`" + `/` + "`javac`" + ` linked onto PATH.

- Version: ` + "`java.version`" + ` (Temurin form, e.g. 21.0.5+11) or ` + "`JAVA_VERSION`" + `.
- Verify with ` + "`test-java`" + `.
`
}
