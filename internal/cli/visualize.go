package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/pipeline"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/sink"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render output from a solved layout document",
		Long: `Render output from a solved layout document.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, PDF, or JSON. The document carries all geometry, so
this step is purely about rendering.

Use 'render' as a shortcut to go directly from a chart file to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addRenderFlags(cmd, &opts)

	return cmd
}

// runVisualize loads the layout document and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := sink.ReadDocument(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	g := doc.Geometry()
	series, err := doc.Series()
	if err != nil {
		return fmt.Errorf("rebuild series from %s: %w", input, err)
	}
	ch := &chart.Chart{Title: doc.Title, Points: series.Points()}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Chart = ch
	opts.Logger = c.Logger

	geometryHash := ""
	if data, err := json.Marshal(g); err == nil {
		geometryHash = cache.Hash(data)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering funnel...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, g, series, ch, geometryHash, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cached:    cacheHit,
		sections:  g.SectionCount(),
		warnings:  len(g.Warnings),
	})
}
