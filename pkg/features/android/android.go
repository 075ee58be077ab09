// Package android installs the Android SDK command line tools and the
// configured platform API levels.
package android

import (
	"fmt"
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/startup"
	"github.com/outfit-dev/outfit/pkg/verify"
)

const (
	fragmentIndex = 65
	hookIndex     = 40

	repositoryIndexURL = "https://dl.google.com/android/repository/repository2-1.xml"
)

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "android" }
func (feature) Description() string { return "Android SDK command line tools" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.String("android.cmdline_tools", "")
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	// Google only ships x86_64 Linux SDK tooling; the zip itself is
	// architecture-neutral Java, so no arch table applies here.
	rev := f.Version(ctx)
	artifact := fmt.Sprintf("commandlinetools-linux-%s_latest.zip", rev)
	url := "https://dl.google.com/android/repository/" + artifact

	sdkRoot := filepath.Join(ctx.Paths.OptDir(), "android-sdk")
	toolsDir := filepath.Join(sdkRoot, "cmdline-tools")
	sdkmanager := filepath.Join(toolsDir, "latest", "bin", "sdkmanager")

	ops := []operations.Operation{
		operations.Fetch("android", url, artifact),
		operations.Check("android", artifact, verify.Expectation{
			Pinned:          verify.PinnedFor(artifact),
			PublishedURL:    repositoryIndexURL,
			PublishedParser: ChecksumFromIndex,
		}),
		operations.MkDir("android", toolsDir),
		// The zip unpacks to cmdline-tools/; sdkmanager expects that
		// directory to be named by channel, conventionally "latest".
		operations.Unpack("android", artifact, toolsDir, 0),
		operations.RunOnce("android", "android-cmdline-tools-layout",
			"mv", filepath.Join(toolsDir, "cmdline-tools"), filepath.Join(toolsDir, "latest")),
	}

	for _, level := range ctx.Config.Strings("android.api_levels") {
		pkg := fmt.Sprintf("platforms;android-%s", level)
		ops = append(ops, operations.RunOnce("android", "android-platform-"+level,
			sdkmanager, fmt.Sprintf("--sdk_root=%s", sdkRoot), pkg, "platform-tools"))
	}

	frag := shellfrag.New("android").
		Export("ANDROID_HOME", sdkRoot).
		Export("ANDROID_SDK_ROOT", sdkRoot).
		PathPrepend(filepath.Join(toolsDir, "latest", "bin")).
		PathPrepend(filepath.Join(sdkRoot, "platform-tools"))
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "android", frag)...)

	// License acceptance is interactive-ish and belongs to first
	// startup, not the image build.
	hook := startup.Script(fmt.Sprintf("yes | %s --sdk_root=%s --licenses", sdkmanager, sdkRoot))
	ops = append(ops,
		operations.MkDir("android", ctx.Paths.FirstStartupDir()),
		operations.Script("android", ctx.Paths.HookPath(hookIndex, "android-licenses"), hook),
	)

	ops = append(ops, features.VerifyScriptOps(ctx, "android", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "sdkmanager --version" }

func (feature) Doc() string {
	return `# Android SDK

Installs the Android command line tools under /usr/local/android-sdk
and the platform packages for the configured API levels. SDK licenses
are accepted by a first-startup hook.

- Tools revision: ` + "`android.cmdline_tools`" + `; API levels:
  ` + "`android.api_levels`" + ` or ` + "`ANDROID_API_LEVELS`" + `.
- Verify with ` + "`test-android`" + `.
`
}
