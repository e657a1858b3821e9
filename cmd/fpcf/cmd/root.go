// Package cmd builds the fpcf command tree, in the shape of cmd/cue/cmd: a
// root *cobra.Command with a handful of subcommands, each a thin wrapper
// over internal/demoanalyses.
package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the top-level fpcf command.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:   "fpcf",
		Short: "Run and inspect the fixed-point property store demo analyses",

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())
	return root
}
