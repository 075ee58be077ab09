package features

import (
	"fmt"

	"github.com/outfit-dev/outfit/pkg/apt"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/shellfrag"
	"github.com/outfit-dev/outfit/pkg/verify"
)

// FragmentOps writes a feature's bashrc.d fragment, creating the
// directory first.
func FragmentOps(ctx Context, index int, feature string, frag *shellfrag.Fragment) []operations.Operation {
	return []operations.Operation{
		operations.MkDir(feature, ctx.Paths.BashrcDir()),
		operations.File(feature, ctx.Paths.FragmentPath(index, feature), frag.Render(), 0644),
	}
}

// AptSourceOps installs a third-party apt repository: the signing key
// is downloaded, checked against its pin, written to the keyring dir,
// and the deb822 source file references it.
func AptSourceOps(ctx Context, feature string, src apt.Source) []operations.Operation {
	keyArtifact := src.Name + ".asc"
	return []operations.Operation{
		operations.Fetch(feature, src.KeyURL, keyArtifact),
		operations.Check(feature, keyArtifact, verify.Expectation{Pinned: src.KeySHA256}),
		operations.Place(feature, keyArtifact, src.KeyringPath(ctx.Paths), 0644),
		operations.MkDir(feature, ctx.Paths.AptSourcesDir()),
		operations.File(feature, src.SourcePath(ctx.Paths), src.Deb822(ctx.Paths), 0644),
	}
}

// VerifyScriptOps writes the test-<feature> wrapper that proves an
// install works, for image tests and for users.
func VerifyScriptOps(ctx Context, feature, command string) []operations.Operation {
	content := fmt.Sprintf("#!/bin/bash\nset -euo pipefail\n%s\n", command)
	return []operations.Operation{
		operations.MkDir(feature, ctx.Paths.BinDir()),
		operations.Script(feature, ctx.Paths.VerifyScriptPath(feature), []byte(content)),
	}
}
