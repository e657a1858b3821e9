package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpcfgo/fpcf/internal/demoanalyses"
)

func newRunCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one or more demo scenarios to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, manifestPath)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to a YAML scheduler manifest (default: run every scenario)")
	return cmd
}

func runScenarios(cmd *cobra.Command, manifestPath string) error {
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	names, workers := resolveScenarios(manifest)

	ctx := context.Background()
	out := cmd.OutOrStdout()
	var failed bool
	for _, name := range names {
		report, err := demoanalyses.Run(ctx, name, workers)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", name, err)
		}
		status := "ok"
		switch {
		case report.Result.Cancelled:
			status = "cancelled"
		case len(report.Result.Failures) > 0:
			status = fmt.Sprintf("failed (%d analysis failures)", len(report.Result.Failures))
		}
		if !report.Result.Ok() {
			failed = true
		}
		fmt.Fprintf(out, "%-24s %s\n", name, status)
		for _, p := range report.Properties {
			fmt.Fprintf(out, "  %s(%s) = %s\n", p.Kind, p.Entity, p.Value)
		}
	}
	if failed {
		return fmt.Errorf("one or more scenarios did not complete cleanly")
	}
	return nil
}
