package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/config"
	"github.com/outfit-dev/outfit/pkg/features"
	"github.com/outfit-dev/outfit/pkg/summary"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available features",
	Long: `List shows every known feature, whether it is enabled for this
image, and the version the current configuration would install.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}

		enabled, err := config.EnabledFeatures(e.paths, e.config, features.Names())
		if err != nil {
			return err
		}
		enabledSet := make(map[string]bool, len(enabled))
		for _, name := range enabled {
			enabledSet[name] = true
		}

		fctx := e.featureContext()
		var rows []summary.FeatureRow
		for _, name := range features.Names() {
			feature, err := features.Get(name)
			if err != nil {
				return err
			}
			_, statErr := os.Stat(e.paths.VerifyScriptPath(name))
			rows = append(rows, summary.FeatureRow{
				Name:        name,
				Description: feature.Description(),
				Version:     feature.Version(fctx),
				Enabled:     enabledSet[name],
				Installed:   statErr == nil,
			})
		}
		return summary.RenderTable(cmd.OutOrStdout(), rows)
	},
}
