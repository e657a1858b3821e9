package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpcfgo/fpcf/internal/demoanalyses"
)

// scenarioDescriptions gives a one-line summary of each §8 scenario for
// `fpcf inspect`, without running anything.
var scenarioDescriptions = map[string]string{
	"linear-chain":          "three kinds chained by Apply, each waiting on the previous one's final",
	"join":                  "two collaborative partial results joined into one final set",
	"cycle-with-tightening": "two entities mutually dependent on the same kind, resolved by quiescence",
	"suppression":           "an interim-heavy dependee whose updates are withheld from one depender",
	"fallback":              "an entity read but never produced, resolved to its kind's fallback",
	"cancellation-at-scale": "ten thousand entities, cancelled partway through by a triggered computation",
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List the demo scenarios available to `run`, without executing any of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range demoanalyses.Names {
				fmt.Fprintf(out, "%-24s %s\n", name, scenarioDescriptions[name])
			}
			return nil
		},
	}
}
