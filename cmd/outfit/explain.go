package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/errors"
	"github.com/outfit-dev/outfit/pkg/features"
)

var explainCmd = &cobra.Command{
	Use:   "explain <feature>",
	Short: "Show a feature's usage notes",
	Long: `Explain renders the long-form notes for a feature: what gets
installed, where it lands, and how to use it inside the container.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := features.Get(args[0])
		if err != nil {
			return err
		}
		documented, ok := feature.(features.Documented)
		if !ok {
			return errors.Newf(errors.ErrNotFound, "no notes for feature %s", args[0])
		}
		doc := documented.Doc()

		if !isatty.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}
		rendered, err := renderer.Render(doc)
		if err != nil {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}
