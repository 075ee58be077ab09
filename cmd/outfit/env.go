package main

import (
	"context"

	"github.com/outfit-dev/outfit/pkg/apt"
	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/executor"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/fetch"
	"github.com/outfit-dev/outfit/pkg/paths"
	"github.com/outfit-dev/outfit/pkg/platform"
	"github.com/outfit-dev/outfit/pkg/runner"
	"github.com/outfit-dev/outfit/pkg/verify"
)

// env bundles the shared dependencies the commands build on.
type env struct {
	paths    paths.Paths
	config   *config.Config
	platform platform.Platform
	runner   runner.Runner
}

func newEnv(ctx context.Context) (*env, error) {
	p, err := paths.New(prefix)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, err
	}
	r := runner.New()
	plat, err := platform.Detect(ctx, r)
	if err != nil {
		return nil, err
	}
	return &env{paths: p, config: cfg, platform: plat, runner: r}, nil
}

func (e *env) featureContext() features.Context {
	return features.Context{Config: e.config, Paths: e.paths, Platform: e.platform}
}

func (e *env) newExecutor() *executor.Executor {
	fetcher := fetch.New(e.paths.CacheDir())
	verifier := verify.New(fetcher, e.runner, verify.NewStore(e.paths.ChecksumStatePath()))
	aptClient := apt.NewClient(e.runner)
	return executor.New(e.paths, e.runner, fetcher, verifier, aptClient,
		executor.WithDryRun(dryRun), executor.WithForce(force))
}
