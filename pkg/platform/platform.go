// Package platform detects the build architecture and maps it to the
// naming conventions each vendor uses for release artifacts.
package platform

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// Platform describes the target architecture in dpkg terms.
type Platform struct {
	// Arch is the dpkg architecture string (amd64, arm64, ...).
	Arch string
}

// Detect determines the dpkg architecture, preferring dpkg itself and
// falling back to the Go runtime when dpkg is unavailable.
func Detect(ctx context.Context, r runner.Runner) (Platform, error) {
	logger := logging.GetLogger("platform")

	if _, err := r.LookPath("dpkg"); err == nil {
		out, err := r.Output(ctx, "dpkg", "--print-architecture")
		if err != nil {
			return Platform{}, errors.Wrap(err, errors.ErrArchDetect, "dpkg --print-architecture failed")
		}
		arch := strings.TrimSpace(out)
		if arch == "" {
			return Platform{}, errors.New(errors.ErrArchDetect, "dpkg reported an empty architecture")
		}
		logger.Debug().Str("arch", arch).Msg("Architecture detected via dpkg")
		return Platform{Arch: arch}, nil
	}

	logger.Debug().Str("arch", runtime.GOARCH).Msg("dpkg unavailable, using runtime architecture")
	return Platform{Arch: runtime.GOARCH}, nil
}

// ArchTable maps dpkg architecture strings to a vendor's naming.
type ArchTable map[string]string

// Common vendor tables. Each feature picks the table matching how its
// vendor names release artifacts.
var (
	// GoArch: go.dev uses dpkg-style names directly.
	GoArch = ArchTable{"amd64": "amd64", "arm64": "arm64"}

	// TemurinArch: Adoptium uses x64/aarch64.
	TemurinArch = ArchTable{"amd64": "x64", "arm64": "aarch64"}

	// UnameArch: vendors keying off uname -m (AWS CLI, 1Password).
	UnameArch = ArchTable{"amd64": "x86_64", "arm64": "aarch64"}
)

// Resolve maps the platform architecture through a vendor table,
// failing closed when the architecture has no mapping.
func (p Platform) Resolve(table ArchTable) (string, error) {
	mapped, ok := table[p.Arch]
	if !ok {
		return "", errors.Newf(errors.ErrArchUnsupported,
			"architecture %s has no mapping (supported: %s)", p.Arch, supported(table)).
			WithDetail("arch", p.Arch)
	}
	return mapped, nil
}

func supported(table ArchTable) string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
