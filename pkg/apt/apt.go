// Package apt wraps apt-get for package installation inside the image
// build. All invocations are noninteractive and retried, since mirror
// hiccups are the most common transient failure during provisioning.
package apt

import (
	"context"
	"fmt"
	"sync"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/retry"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// Client runs apt-get through a Runner.
type Client struct {
	runner runner.Runner
	retry  retry.Config

	mu      sync.Mutex
	updated bool
}

// NewClient creates an apt Client with the default retry policy.
func NewClient(r runner.Runner) *Client {
	return &Client{runner: r, retry: retry.DefaultConfig()}
}

// WithRetry overrides the retry policy. Used by tests.
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}

func (c *Client) run(ctx context.Context, operation string, args ...string) error {
	return retry.Do(ctx, c.retry, operation, func() error {
		res, err := c.runner.RunWith(ctx, runner.Opts{
			Name: "apt-get",
			Args: args,
			Env:  map[string]string{"DEBIAN_FRONTEND": "noninteractive"},
		})
		if err != nil {
			return errors.Wrapf(err, errors.ErrAptInstall, "apt-get %s failed: %s", args[0], res.Stderr)
		}
		return nil
	})
}

// Update refreshes the package index. Repeated calls on the same
// Client are coalesced into a single apt-get update.
func (c *Client) Update(ctx context.Context) error {
	c.mu.Lock()
	if c.updated {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	logger := logging.GetLogger("apt")
	logger.Debug().Msg("Refreshing apt package index")

	if err := c.run(ctx, "apt-get update", "update"); err != nil {
		return err
	}

	c.mu.Lock()
	c.updated = true
	c.mu.Unlock()
	return nil
}

// InvalidateIndex forces the next Update to run again, used after a
// new apt source is written.
func (c *Client) InvalidateIndex() {
	c.mu.Lock()
	c.updated = false
	c.mu.Unlock()
}

// Install updates the index if needed and installs the packages
// without recommends. Packages dpkg already reports installed are
// skipped, so re-provisioning an image is a no-op.
func (c *Client) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	logger := logging.GetLogger("apt")

	missing := make([]string, 0, len(packages))
	for _, pkg := range packages {
		if c.Installed(ctx, pkg) {
			logger.Debug().Str("package", pkg).Msg("Package already installed, skipping")
			continue
		}
		missing = append(missing, pkg)
	}
	if len(missing) == 0 {
		return nil
	}

	if err := c.Update(ctx); err != nil {
		return err
	}

	logger.Info().Strs("packages", missing).Msg("Installing apt packages")

	args := append([]string{"install", "-y", "--no-install-recommends"}, missing...)
	return c.run(ctx, fmt.Sprintf("apt-get install %d packages", len(missing)), args...)
}

// Installed reports whether a package is already in the installed
// state according to dpkg-query.
func (c *Client) Installed(ctx context.Context, pkg string) bool {
	out, err := c.runner.Output(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		return false
	}
	return out == "install ok installed"
}
