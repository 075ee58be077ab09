// Package features defines the Feature interface and the registry
// that feature packages register themselves into. Each feature plans
// a list of operations; it never touches the filesystem directly.
package features

import (
	"github.com/outfit-dev/outfit/pkg/authwatch"
	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/outfit-dev/outfit/pkg/registry"
)

// Context carries everything a feature needs to plan.
type Context struct {
	Config   *config.Config
	Paths    paths.Paths
	Platform platform.Platform
}

// Feature is a provisionable tool.
type Feature interface {
	// Name is the feature key used in config and on the command line.
	Name() string

	// Description is a one-line summary for listings.
	Description() string

	// Version reports the version that would be installed, or "" when
	// the feature has no meaningful version (apt metapackages).
	Version(ctx Context) string

	// Plan produces the ordered operations that install the feature.
	Plan(ctx Context) ([]operations.Operation, error)

	// VerifyCommand returns the command line the generated
	// test-<feature> wrapper runs to prove the install works.
	VerifyCommand() string
}

// Documented is implemented by features that carry long-form usage
// notes for the explain command.
type Documented interface {
	Doc() string
}

// AuthWatched is implemented by features with a post-login step that
// cannot run until the user signs in inside the running container.
type AuthWatched interface {
	// AuthWatch describes the credential file to await and the watch
	// policy.
	AuthWatch(ctx Context) authwatch.Config

	// PostAuth is the command to run once credentials appear.
	PostAuth(ctx Context) (command string, args []string)
}

// Registry holds all registered features in registration order, which
// is also install order.
var Registry = registry.New[Feature]()

// Register adds a feature, panicking on duplicates. Called from
// feature package init functions.
func Register(f Feature) {
	registry.MustRegister(Registry, f.Name(), f)
}

// Get returns a registered feature.
func Get(name string) (Feature, error) {
	return Registry.Get(name)
}

// Names returns all feature names in install order.
func Names() []string {
	return Registry.List()
}
