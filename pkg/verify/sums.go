package verify

import (
	"path/filepath"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
)

const sha256HexLen = 64

// ParseSums extracts the SHA-256 digest for artifactName from a
// vendor checksum file. Two formats are accepted: a bare hex digest
// (go.dev style .sha256 files) and sha256sum listings of
// "<digest>  <filename>" lines.
func ParseSums(data []byte, artifactName string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New(errors.ErrChecksumMissing, "checksum file is empty")
	}

	if isHexDigest(text) {
		return strings.ToLower(text), nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		digest := fields[0]
		if !isHexDigest(digest) {
			continue
		}
		// sha256sum marks binary mode with a leading '*'
		candidate := strings.TrimPrefix(fields[len(fields)-1], "*")
		if filepath.Base(candidate) == artifactName {
			return strings.ToLower(digest), nil
		}
	}

	return "", errors.Newf(errors.ErrChecksumMissing, "checksum for %s not found", artifactName)
}

func isHexDigest(value string) bool {
	if len(value) != sha256HexLen {
		return false
	}
	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
