package startup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/fetch"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/runner"
)

// Header is prepended to every generated first-startup hook.
const Header = "#!/bin/bash\nset -euo pipefail\n\n"

// Script renders a hook body with the standard header.
func Script(body string) []byte {
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return []byte(Header + body)
}

// HookResult reports the outcome of one hook.
type HookResult struct {
	Name    string
	Skipped bool
	Err     error
}

// Run executes the first-startup hooks in lexical order, skipping any
// whose content already ran. Hooks keep running after a failure; the
// first error is returned once all have been attempted.
func Run(ctx context.Context, p paths.Paths, r runner.Runner, sentinels *Sentinels) ([]HookResult, error) {
	logger := logging.GetLogger("startup")

	entries, err := os.ReadDir(p.FirstStartupDir())
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("dir", p.FirstStartupDir()).Msg("No first-startup hooks")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", p.FirstStartupDir())
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sh") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var results []HookResult
	var firstErr error
	for _, name := range names {
		res := runHook(ctx, p, r, sentinels, name)
		results = append(results, res)
		if res.Err != nil && firstErr == nil {
			firstErr = res.Err
		}
	}
	return results, firstErr
}

func runHook(ctx context.Context, p paths.Paths, r runner.Runner, sentinels *Sentinels, name string) HookResult {
	logger := logging.GetLogger("startup")
	path := filepath.Join(p.FirstStartupDir(), name)

	data, err := os.ReadFile(path)
	if err != nil {
		return HookResult{Name: name, Err: errors.Wrapf(err, errors.ErrFileAccess, "failed to read hook %s", name)}
	}
	checksum := fetch.HashBytes(data)

	if !sentinels.NeedsRun(name, checksum) {
		logger.Debug().Str("hook", name).Msg("Hook already ran, skipping")
		return HookResult{Name: name, Skipped: true}
	}

	logger.Info().Str("hook", name).Msg("Running first-startup hook")
	if err := r.Run(ctx, "bash", path); err != nil {
		return HookResult{Name: name, Err: errors.Wrapf(err, errors.ErrHookRun, "hook %s failed", name)}
	}
	if err := sentinels.Record(name, checksum); err != nil {
		return HookResult{Name: name, Err: err}
	}
	return HookResult{Name: name}
}

// String summarizes the result for log lines.
func (h HookResult) String() string {
	switch {
	case h.Err != nil:
		return fmt.Sprintf("%s: failed: %v", h.Name, h.Err)
	case h.Skipped:
		return h.Name + ": skipped"
	default:
		return h.Name + ": ok"
	}
}
