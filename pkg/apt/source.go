package apt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/outfit-dev/outfit/pkg/paths"
)

// Source describes a third-party apt repository in deb822 form, the
// format apt reads from *.sources files. The signing key is fetched
// from the vendor and checked against its pinned hash before apt ever
// sees it.
type Source struct {
	// Name is the basename for both the .sources file and the keyring.
	Name string

	// URIs is the repository URL.
	URIs string

	// Suites and Components per the repository's instructions.
	Suites     string
	Components string

	// Architectures restricts the source, e.g. "amd64 arm64".
	// Empty means unrestricted.
	Architectures string

	// KeyURL is where the vendor publishes the armored signing key.
	// KeySHA256 pins it; an empty pin falls back to trust-on-first-use.
	KeyURL    string
	KeySHA256 string
}

// SourcePath returns where the deb822 file belongs.
func (s Source) SourcePath(p paths.Paths) string {
	return filepath.Join(p.AptSourcesDir(), s.Name+".sources")
}

// KeyringPath returns where the signing key belongs.
func (s Source) KeyringPath(p paths.Paths) string {
	return filepath.Join(p.KeyringDir(), s.Name+".asc")
}

// Deb822 renders the source stanza. Signed-By points at the keyring
// path the key will be written to.
func (s Source) Deb822(p paths.Paths) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Types: deb\n")
	fmt.Fprintf(&b, "URIs: %s\n", s.URIs)
	fmt.Fprintf(&b, "Suites: %s\n", s.Suites)
	if s.Components != "" {
		fmt.Fprintf(&b, "Components: %s\n", s.Components)
	}
	if s.Architectures != "" {
		fmt.Fprintf(&b, "Architectures: %s\n", s.Architectures)
	}
	fmt.Fprintf(&b, "Signed-By: %s\n", s.KeyringPath(p))
	return []byte(b.String())
}
