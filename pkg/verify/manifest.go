package verify

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/outfit-dev/outfit/pkg/logging"
)

//go:embed pins.yaml
var pinsManifest []byte

var (
	pinsOnce sync.Once
	pins     map[string]string
)

// PinnedFor returns the embedded pinned hash for an artifact name, or
// "" when the manifest has no entry. Pins cover the default versions
// shipped in the embedded config; overriding a version in config falls
// back to the published or trust-on-first-use tiers.
func PinnedFor(artifact string) string {
	pinsOnce.Do(func() {
		pins = make(map[string]string)
		if err := yaml.Unmarshal(pinsManifest, &pins); err != nil {
			logger := logging.GetLogger("verify")
			logger.Warn().Err(err).Msg("Pinned checksum manifest is invalid")
		}
	})
	return pins[artifact]
}
