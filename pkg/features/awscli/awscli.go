// Package awscli installs AWS CLI v2 from the vendor installer zip.
package awscli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/verify"
)

const fragmentIndex = 70

type feature struct{}

func init() {
	features.Register(feature{})
}

func (feature) Name() string        { return "awscli" }
func (feature) Description() string { return "AWS CLI v2" }

func (feature) Version(ctx features.Context) string {
	return ctx.Config.Version("awscli")
}

// signingKey loads the AWS CLI public key when the image provides one.
// AWS publishes the key in its documentation rather than at a stable
// URL, so images that want the signature tier drop the armored key at
// awscli.key_file.
func signingKey(ctx features.Context) []byte {
	path := ctx.Config.String("awscli.key_file", "")
	if path == "" {
		return nil
	}
	key, err := os.ReadFile(path)
	if err != nil {
		logger := logging.GetLogger("awscli")
		logger.Warn().Err(err).Str("path", path).
			Msg("Signing key unreadable, falling back to checksum tiers")
		return nil
	}
	return key
}

func (f feature) Plan(ctx features.Context) ([]operations.Operation, error) {
	arch, err := ctx.Platform.Resolve(platform.UnameArch)
	if err != nil {
		return nil, err
	}

	version := f.Version(ctx)
	artifact := fmt.Sprintf("awscli-exe-linux-%s-%s.zip", arch, version)
	url := "https://awscli.amazonaws.com/" + artifact
	stage := filepath.Join(ctx.Paths.CacheDir(), "awscli-stage")
	installer := filepath.Join(stage, "aws", "install")

	ops := []operations.Operation{
		operations.Fetch("awscli", url, artifact),
		operations.Check("awscli", artifact, verify.Expectation{
			SignatureURL: url + ".sig",
			Keyring:      signingKey(ctx),
			Pinned:       verify.PinnedFor(artifact),
		}),
		operations.Unpack("awscli", artifact, stage, 0),
		operations.RunOnce("awscli", "awscli-install-"+version,
			installer,
			"--bin-dir", ctx.Paths.BinDir(),
			"--install-dir", filepath.Join(ctx.Paths.OptDir(), "aws-cli"),
			"--update"),
	}

	frag := shellfrag.New("awscli").
		Raw("complete -C aws_completer aws 2>/dev/null || true")
	ops = append(ops, features.FragmentOps(ctx, fragmentIndex, "awscli", frag)...)
	ops = append(ops, features.VerifyScriptOps(ctx, "awscli", f.VerifyCommand())...)
	return ops, nil
}

func (feature) VerifyCommand() string { return "aws --version" }

func (feature) Doc() string {
	return `# AWS CLI

Installs AWS CLI v2 using the vendor installer, with the detached GPG
signature checked when a signing key is configured.

- Version: ` + "`awscli.version`" + ` or ` + "`AWS_CLI_VERSION`" + `.
- Optional signature verification: point ` + "`awscli.key_file`" + ` at the
  armored AWS CLI public key.
- Verify with ` + "`test-awscli`" + `.
`
}
