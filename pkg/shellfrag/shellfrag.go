// Package shellfrag renders the /etc/bashrc.d fragments that expose a
// provisioned tool to interactive shells. Fragments are plain POSIX
// shell, rendered deterministically so re-provisioning an image never
// churns file content.
package shellfrag

import (
	"fmt"
	"strings"
)

// Fragment accumulates shell lines for a single feature.
type Fragment struct {
	feature string
	lines   []string
}

// New starts a fragment for a feature.
func New(feature string) *Fragment {
	return &Fragment{feature: feature}
}

// Export appends an environment variable export. The value is left
// unquoted expansion-capable, so "$HOME/go" works as expected.
func (f *Fragment) Export(name, value string) *Fragment {
	f.lines = append(f.lines, fmt.Sprintf("export %s=\"%s\"", name, value))
	return f
}

// PathPrepend puts a directory at the front of PATH, guarded so
// sourcing the fragment twice does not duplicate the entry.
func (f *Fragment) PathPrepend(dir string) *Fragment {
	f.lines = append(f.lines,
		"case \":$PATH:\" in",
		fmt.Sprintf("    *\":%s:\"*) ;;", dir),
		fmt.Sprintf("    *) export PATH=\"%s:$PATH\" ;;", dir),
		"esac")
	return f
}

// Alias appends a shell alias.
func (f *Fragment) Alias(name, command string) *Fragment {
	f.lines = append(f.lines, fmt.Sprintf("alias %s='%s'", name, command))
	return f
}

// Raw appends verbatim shell lines.
func (f *Fragment) Raw(lines ...string) *Fragment {
	f.lines = append(f.lines, lines...)
	return f
}

// Render produces the fragment file content.
func (f *Fragment) Render() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s environment\n", f.feature)
	for _, line := range f.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
