package main

import (
	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/logging"
	"github.com/outfit-dev/outfit/pkg/startup"
)

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Run first-startup hooks",
	Long: `Startup executes the hooks under the first-startup directory in
lexical order. Each hook runs once per content; editing a hook makes
it eligible again. Intended to be called from the container
entrypoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.startup")
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}

		sentinels := startup.NewSentinels(e.paths.SentinelDir())
		results, err := startup.Run(ctx, e.paths, e.runner, sentinels)
		for _, res := range results {
			logger.Info().Str("hook", res.Name).Msg(res.String())
		}
		return err
	},
}
