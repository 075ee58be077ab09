package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/authwatch"
	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/logging"
)

var watchAuthCmd = &cobra.Command{
	Use:   "watch-auth <feature>",
	Short: "Wait for a feature's login and run its post-auth step",
	Long: `Watch-auth blocks until the named feature's credential file appears,
then runs the feature's post-login step exactly once. It is launched
in the background by first-startup hooks for tools that need an
interactive sign-in before they can finish setting up.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.watch-auth")
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		feature, err := features.Get(args[0])
		if err != nil {
			return err
		}
		watched, ok := feature.(features.AuthWatched)
		if !ok {
			return errors.Newf(errors.ErrInvalidInput, "feature %s has no post-login step", args[0])
		}

		fctx := e.featureContext()
		cfg := watched.AuthWatch(fctx)
		name, cmdArgs := watched.PostAuth(fctx)

		logger.Info().Str("feature", args[0]).Str("path", cfg.CredentialPath).Msg("Watching for credentials")
		return authwatch.Watch(ctx, cfg, func(ctx context.Context) error {
			return e.runner.Run(ctx, name, cmdArgs...)
		})
	},
}
