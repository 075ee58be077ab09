package main

import (
	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/executor"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/summary"
)

var failFast bool

func init() {
	installCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failed feature")
}

var installCmd = &cobra.Command{
	Use:   "install [features...]",
	Short: "Provision features into the image",
	Long: `Install provisions the named features, or with no arguments every
feature enabled in enabled-features.conf and outfit.toml. Features
install sequentially in registration order; a failure is recorded and
later features continue unless --fail-fast is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.install")
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}

		selected, err := selectFeatures(e, args)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			logger.Info().Msg("No features enabled, nothing to do")
			return nil
		}

		stopEarly := failFast || e.config.FailFast()
		exec := e.newExecutor()
		slog := summary.NewLog(e.paths.SummaryLogPath())

		var firstErr error
		for _, name := range selected {
			feature, err := features.Get(name)
			if err != nil {
				return err
			}

			fctx := e.featureContext()
			record := summary.Record{Feature: name, Version: feature.Version(fctx), Status: summary.StatusOK}

			logger.Info().Str("feature", name).Bool("dryRun", dryRun).Msg("Provisioning feature")
			if err := installFeature(cmd, e, exec, feature); err != nil {
				record.Status = summary.StatusFailed
				record.Detail = err.Error()
				if firstErr == nil {
					firstErr = err
				}
				logger.Error().Err(err).Str("feature", name).Msg("Feature failed")
			}
			if !dryRun {
				if err := slog.Append(record); err != nil {
					logger.Warn().Err(err).Msg("Failed to append summary record")
				}
			}
			if record.Status == summary.StatusFailed && stopEarly {
				break
			}
		}
		return firstErr
	},
}

func installFeature(cmd *cobra.Command, e *env, exec *executor.Executor, feature features.Feature) error {
	plan, err := feature.Plan(e.featureContext())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFeaturePlan, "failed to plan %s", feature.Name())
	}
	_, err = exec.Execute(cmd.Context(), feature.Name(), plan)
	return err
}

// selectFeatures resolves the feature set to install: explicit args,
// or the enabled set from enabled-features.conf plus config.
func selectFeatures(e *env, args []string) ([]string, error) {
	if len(args) > 0 {
		for _, name := range args {
			if !features.Registry.Has(name) {
				return nil, errors.Newf(errors.ErrFeatureNotFound, "unknown feature: %s", name)
			}
		}
		return args, nil
	}
	return config.EnabledFeatures(e.paths, e.config, features.Names())
}
