// Package executor carries out planned operations against the image.
// Plain filesystem steps are batched through synthfs pipelines;
// downloads, verification, apt and commands are dispatched directly.
package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/outfit-dev/outfit/pkg/apt"
	"github.com/outfit-dev/outfit/pkg/archive"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/fetch"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/operations"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/runner"
	"github.com/outfit-dev/outfit/pkg/startup"
	"github.com/outfit-dev/outfit/pkg/verify"
)

// Executor runs operation plans.
type Executor struct {
	logger    zerolog.Logger
	paths     paths.Paths
	runner    runner.Runner
	fetcher   *fetch.Fetcher
	verifier  *verify.Verifier
	apt       *apt.Client
	sentinels *startup.Sentinels
	fs        synthfs.FileSystem
	dryRun    bool
	force     bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithDryRun makes Execute log the plan instead of acting on it.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) { e.dryRun = dryRun }
}

// WithForce re-runs sentinel-guarded commands and replaces existing
// symlinks.
func WithForce(force bool) Option {
	return func(e *Executor) { e.force = force }
}

// New creates an Executor over the real root filesystem.
func New(p paths.Paths, r runner.Runner, fetcher *fetch.Fetcher, verifier *verify.Verifier, aptClient *apt.Client, opts ...Option) *Executor {
	e := &Executor{
		logger:    logging.GetLogger("executor"),
		paths:     p,
		runner:    r,
		fetcher:   fetcher,
		verifier:  verifier,
		apt:       aptClient,
		sentinels: startup.NewSentinels(p.SentinelDir()),
		fs:        filesystem.NewOSFileSystem("/"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report collects per-operation outcomes for one feature run.
type Report struct {
	Feature string
	Results []OpResult

	// Verified maps artifact names to the tier they verified at.
	Verified map[string]verify.Tier
}

// OpResult is one executed (or skipped) operation.
type OpResult struct {
	Op      operations.Operation
	Skipped bool
	Err     error
}

// Failed reports whether any operation errored.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Execute runs a feature's plan in order. Filesystem operations are
// accumulated and flushed as a synthfs pipeline whenever a non-fs
// operation needs to run, so extraction output and generated files
// land in a consistent order. Execution stops at the first error.
func (e *Executor) Execute(ctx context.Context, feature string, ops []operations.Operation) (*Report, error) {
	report := &Report{Feature: feature, Verified: make(map[string]verify.Tier)}

	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return report, err
		}
	}

	if e.dryRun {
		for _, op := range ops {
			e.logger.Info().Str("feature", feature).Msgf("Would %s", op.String())
			report.Results = append(report.Results, OpResult{Op: op, Skipped: true})
		}
		return report, nil
	}

	// artifacts maps names assigned by download steps to local paths.
	artifacts := make(map[string]string)

	// pins lets a download reuse the cache when the plan's verify step
	// carries a pinned hash for the same artifact.
	pins := make(map[string]string)
	for _, op := range ops {
		if op.Type == operations.VerifyArtifact && op.Expectation != nil {
			pins[op.Target] = op.Expectation.Pinned
		}
	}

	var pending []operations.Operation

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := e.runPipeline(ctx, pending); err != nil {
			return err
		}
		for _, op := range pending {
			report.Results = append(report.Results, OpResult{Op: op})
			// A new apt source makes the package index stale.
			if op.Type == operations.WriteFile && filepath.Dir(op.Target) == e.paths.AptSourcesDir() {
				e.apt.InvalidateIndex()
			}
		}
		pending = nil
		return nil
	}

	fail := func(op operations.Operation, err error) (*Report, error) {
		report.Results = append(report.Results, OpResult{Op: op, Err: err})
		return report, err
	}

	for _, op := range ops {
		switch op.Type {
		case operations.CreateDir, operations.WriteFile, operations.CreateSymlink:
			if op.Type == operations.CreateSymlink && e.force {
				e.removeExisting(op.Target)
			}
			pending = append(pending, op)
			continue
		}

		if err := flush(); err != nil {
			return report, err
		}

		switch op.Type {
		case operations.Download:
			path, err := e.download(ctx, op, pins[op.Target])
			if err != nil {
				return fail(op, err)
			}
			artifacts[op.Target] = path
		case operations.VerifyArtifact:
			path, ok := artifacts[op.Target]
			if !ok {
				return fail(op, errors.Newf(errors.ErrOpInvalid, "no downloaded artifact named %s", op.Target))
			}
			res, err := e.verifier.File(ctx, path, *op.Expectation)
			if err != nil {
				return fail(op, err)
			}
			report.Verified[op.Target] = res.Tier
			// Keep the verified content for later builds.
			if cached, cacheErr := e.fetcher.Promote(path, res.SHA256); cacheErr == nil {
				artifacts[op.Target] = cached
			} else {
				e.logger.Warn().Err(cacheErr).Str("artifact", op.Target).Msg("Failed to cache artifact")
			}
		case operations.CopyFile:
			path, ok := artifacts[op.Source]
			if !ok {
				return fail(op, errors.Newf(errors.ErrOpInvalid, "no downloaded artifact named %s", op.Source))
			}
			if err := e.placeFile(path, op.Target, os.FileMode(op.FileMode())); err != nil {
				return fail(op, err)
			}
		case operations.Extract:
			path, ok := artifacts[op.Source]
			if !ok {
				return fail(op, errors.Newf(errors.ErrOpInvalid, "no downloaded artifact named %s", op.Source))
			}
			if err := os.MkdirAll(op.Target, 0755); err != nil {
				return fail(op, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", op.Target))
			}
			if err := archive.Extract(ctx, e.runner, path, op.Target, op.StripComponents); err != nil {
				return fail(op, err)
			}
		case operations.AptInstall:
			if err := e.apt.Install(ctx, op.Packages...); err != nil {
				return fail(op, err)
			}
		case operations.RunCommand:
			skipped, err := e.runCommand(ctx, op)
			if err != nil {
				return fail(op, err)
			}
			report.Results = append(report.Results, OpResult{Op: op, Skipped: skipped})
			continue
		}
		report.Results = append(report.Results, OpResult{Op: op})
	}

	if err := flush(); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Executor) runPipeline(ctx context.Context, ops []operations.Operation) error {
	pipeline := synthfs.NewMemPipeline()
	for _, op := range ops {
		synthOp, err := convertToSynthfs(op)
		if err != nil {
			return err
		}
		if err := pipeline.Add(synthOp); err != nil {
			return errors.Wrapf(err, errors.ErrOpExecute, "failed to stage %s", op.String())
		}
	}

	e.logger.Debug().Int("operations", len(ops)).Msg("Executing filesystem pipeline")

	result := synthfs.NewExecutor().Run(ctx, pipeline, e.fs)
	if result.GetError() != nil {
		return errors.Wrap(result.GetError(), errors.ErrOpExecute, "filesystem pipeline failed")
	}

	// synthfs does not chmod after create on every backend; enforce
	// requested modes for executables.
	for _, op := range ops {
		if op.Type == operations.WriteFile && op.FileMode() != 0644 {
			if err := os.Chmod(op.Target, os.FileMode(op.FileMode())); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to chmod %s", op.Target)
			}
		}
	}
	return nil
}

// download fetches the artifact, reusing the cache when a prior build
// already verified the same content.
func (e *Executor) download(ctx context.Context, op operations.Operation, pinned string) (string, error) {
	name := filepath.Base(op.Target)

	if cached, ok := e.fetcher.Cached(pinned, name); ok {
		e.logger.Debug().Str("artifact", name).Msg("Using cached artifact")
		return cached, nil
	}

	dest := filepath.Join(e.paths.CacheDir(), "downloads", name)
	if err := e.fetcher.Download(ctx, op.URL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (e *Executor) runCommand(ctx context.Context, op operations.Operation) (skipped bool, err error) {
	if op.Sentinel != "" {
		checksum := fetch.HashBytes([]byte(op.Command + " " + strings.Join(op.Args, " ")))
		if !e.force && !e.sentinels.NeedsRun(op.Sentinel, checksum) {
			e.logger.Debug().Str("sentinel", op.Sentinel).Msg("Command already ran, skipping")
			return true, nil
		}
		defer func() {
			if err == nil {
				err = e.sentinels.Record(op.Sentinel, checksum)
			}
		}()
	}

	res, runErr := e.runner.RunWith(ctx, runner.Opts{Name: op.Command, Args: op.Args, Env: op.Env})
	if runErr != nil {
		return false, errors.Wrapf(runErr, errors.ErrOpExecute, "%s failed: %s", op.Command, res.Stderr)
	}
	return false, nil
}

// placeFile copies an artifact into its final location.
func (e *Executor) placeFile(src, dest string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dest))
	}
	if err := os.WriteFile(dest, data, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dest)
	}
	return nil
}

func (e *Executor) removeExisting(target string) {
	if _, err := os.Lstat(target); err == nil {
		e.logger.Debug().Str("target", target).Msg("Removing existing file for overwrite")
		if err := os.Remove(target); err != nil {
			e.logger.Warn().Err(err).Str("target", target).Msg("Failed to remove existing file")
		}
	}
}
