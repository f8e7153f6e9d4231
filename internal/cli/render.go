package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funnelviz/funnelviz/pkg/pipeline"
)

// renderCommand creates the render command for generating funnel charts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [chart file]",
		Short: "Render a chart file to SVG, PNG, PDF, or JSON",
		Long: `Render a chart file to one or more output formats.

The render command loads a chart (JSON, TOML, or YAML), solves the funnel
geometry, and writes the rendered output. Solved geometry and rendered
artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags registers the frame and margin flags shared by render,
// layout, and view.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height in pixels")
	cmd.Flags().Float64Var(&opts.WidthRatio, "width-ratio", opts.WidthRatio, "bottom/top width ratio in [0,1)")
	cmd.Flags().Float64Var(&opts.SectionMargin, "section-margin", opts.SectionMargin, "vertical gap between sections in pixels")
	cmd.Flags().Float64Var(&opts.MarginTop, "margin-top", opts.MarginTop, "top frame margin")
	cmd.Flags().Float64Var(&opts.MarginRight, "margin-right", opts.MarginRight, "right frame margin")
	cmd.Flags().Float64Var(&opts.MarginBottom, "margin-bottom", opts.MarginBottom, "bottom frame margin")
	cmd.Flags().Float64Var(&opts.MarginLeft, "margin-left", opts.MarginLeft, "left frame margin")
}

// addRenderFlags registers the visual styling flags.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: simple (default), shaded")
	cmd.Flags().StringVar(&opts.Palette, "palette", opts.Palette, "color palette: ocean (default), sunset, forest, mono")
	cmd.Flags().StringVar(&opts.Legend, "legend", opts.Legend, "legend placement, e.g. outside-e, s, none")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", opts.NoLabels, "omit section labels")
	cmd.Flags().BoolVar(&opts.NoTitle, "no-title", opts.NoTitle, "omit the chart title")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG resolution multiplier")
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = input
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering funnel...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d formats", len(result.Artifacts)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cached:    result.CacheInfo.SolveHit && result.CacheInfo.RenderHit,
		sections:  result.Geometry.SectionCount(),
		warnings:  result.Stats.Warnings,
	})
}

// artifactWriteParams bundles everything writeArtifacts needs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cached    bool
	sections  int
	warnings  int
}

// writeArtifacts writes each rendered format to its output file and prints
// a summary. With a single format the output flag names the file directly;
// with several it acts as a base path.
func writeArtifacts(p artifactWriteParams) error {
	base := basePath(p.output, p.input)

	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := p.output
		if path == "" || len(p.formats) > 1 {
			path = base + "." + format
		}

		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Render complete")
	printStats(p.sections, p.warnings, p.cached)
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
