package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outfit-dev/outfit/pkg/errors"
)

var snippetCmd = &cobra.Command{
	Use:   "snippet [bash|zsh]",
	Short: "Print the shell line that loads feature environments",
	Long: `Snippet prints the line to add to a shell rc file so the feature
environment fragments are sourced at login. Interactive login shells
on Debian images pick the fragments up automatically through
/etc/profile; the snippet covers non-login shells.`,
	Example: `  # Add to ~/.bashrc
  outfit snippet >> ~/.bashrc`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		shell := "bash"
		if len(args) > 0 {
			shell = args[0]
		}
		switch shell {
		case "bash", "zsh":
			fmt.Fprintf(cmd.OutOrStdout(),
				"for f in %s/*.sh; do [ -r \"$f\" ] && source \"$f\"; done\n",
				e.paths.BashrcDir())
			return nil
		default:
			return errors.Newf(errors.ErrInvalidInput, "unsupported shell %q, fragments are bash syntax", shell)
		}
	},
}
