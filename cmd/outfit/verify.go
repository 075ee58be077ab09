package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/logging"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [features...]",
	Short: "Run the feature verification wrappers",
	Long: `Verify runs each feature's generated test wrapper, or falls back to
the feature's verification command when the wrapper has not been
installed yet. With no arguments every enabled feature is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.verify")
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		selected, err := selectFeatures(e, args)
		if err != nil {
			return err
		}

		var firstErr error
		for _, name := range selected {
			feature, err := features.Get(name)
			if err != nil {
				return err
			}

			wrapper := e.paths.VerifyScriptPath(name)
			var runErr error
			if _, err := os.Stat(wrapper); err == nil {
				runErr = e.runner.Run(ctx, "bash", wrapper)
			} else {
				runErr = e.runner.Run(ctx, "bash", "-c", feature.VerifyCommand())
			}

			if runErr != nil {
				wrapped := errors.Wrapf(runErr, errors.ErrFeatureVerify, "%s verification failed", name)
				logger.Error().Err(wrapped).Str("feature", name).Msg("Verification failed")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, failStyle.Render("FAIL"))
				if firstErr == nil {
					firstErr = wrapped
				}
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, okStyle.Render("OK"))
		}
		return firstErr
	},
}
