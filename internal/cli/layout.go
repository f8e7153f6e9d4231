package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funnelviz/funnelviz/pkg/pipeline"
)

// layoutCommand creates the layout command for solving funnel geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [chart file]",
		Short: "Solve the funnel geometry and write it as JSON",
		Long: `Solve the funnel geometry for a chart without rendering it.

The layout command loads a chart (JSON, TOML, or YAML) and writes the solved
geometry as a JSON document listing every section's vertices, share, and
convergence state. The document can be rendered later with 'visualize' or
consumed by external tooling.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout solves the geometry and writes the layout document.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = input
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Solving funnel layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(result.Artifacts[pipeline.FormatJSON]); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Geometry.SectionCount(), result.Stats.Warnings, result.CacheInfo.SolveHit)
	printNewline()
	printNextStep("Render", "funnelviz visualize "+outputPath)

	return nil
}
