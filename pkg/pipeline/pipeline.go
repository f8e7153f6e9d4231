// Package pipeline provides the core funnel pipeline for Funnelviz.
//
// This package implements the complete load → solve → render pipeline that
// can be used by CLI and server components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate the chart document (file or inline)
//  2. Solve: Compute funnel geometry for the chart's series
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "checkout.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/palette"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/legend"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/styles"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultWidthRatio is the default bottom/top width ratio.
	DefaultWidthRatio = 1.0 / 3.0

	// DefaultStyle is the default visual style.
	DefaultStyle = "simple"

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the funnel pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Chart (inline, used by the API) or
	// Input (file path, used by the CLI) must be set.
	Chart   *chart.Chart `json:"chart,omitempty"`
	Input   string       `json:"input,omitempty"`
	Refresh bool         `json:"refresh,omitempty"`

	// Layout options
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	WidthRatio    float64 `json:"width_ratio,omitempty"`
	SectionMargin float64 `json:"section_margin,omitempty"`
	MarginTop     float64 `json:"margin_top,omitempty"`
	MarginRight   float64 `json:"margin_right,omitempty"`
	MarginBottom  float64 `json:"margin_bottom,omitempty"`
	MarginLeft    float64 `json:"margin_left,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	Palette  string   `json:"palette,omitempty"` // overrides the chart's palette
	Legend   string   `json:"legend,omitempty"`  // legend placement, e.g. "outside-e"
	NoLabels bool     `json:"no_labels,omitempty"`
	NoTitle  bool     `json:"no_title,omitempty"`
	Scale    float64  `json:"scale,omitempty"` // PNG resolution multiplier

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the loaded chart document.
	Chart *chart.Chart

	// Series is the sorted series built from the chart.
	Series *funnel.Series

	// ChartHash is the content hash of the chart document.
	ChartHash string

	// Geometry is the solved funnel geometry.
	Geometry *funnel.Geometry

	// GeometryHash is the content hash of the solved geometry.
	GeometryHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PointCount int
	Warnings   int
	LoadTime   time.Duration
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached pipeline stage. Loading is
// never cached; it is a local read.
type CacheInfo struct {
	SolveHit  bool // Whether solved geometry came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeUnsupported,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading the chart.
func (o *Options) ValidateForLoad() error {
	if o.Chart == nil && o.Input == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "chart or input path is required")
	}
	if o.Chart != nil && o.Input != "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "chart and input path are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for geometry computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.WidthRatio == 0 {
		o.WidthRatio = DefaultWidthRatio
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSolve validates layout options by building the solver config.
func (o *Options) ValidateForSolve() error {
	o.SetLayoutDefaults()
	cfg := o.baseConfig()
	return cfg.Validate()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := styles.ByName(o.Style); err != nil {
		return err
	}
	if o.Palette != "" {
		if _, err := palette.New(o.Palette, 1); err != nil {
			return err
		}
	}
	if _, err := legend.Parse(o.Legend); err != nil {
		return err
	}
	return nil
}

// LegendPlacement returns the parsed legend placement. Options must have
// been validated.
func (o *Options) LegendPlacement() legend.Placement {
	p, _ := legend.Parse(o.Legend)
	return p
}

// PaletteFor resolves the palette name: the option override wins, then the
// chart's own palette, then the default.
func (o *Options) PaletteFor(c *chart.Chart) string {
	if o.Palette != "" {
		return o.Palette
	}
	return c.PaletteName()
}

// baseConfig builds the solver config without the legend inset.
func (o *Options) baseConfig() funnel.Config {
	return funnel.Config{
		Width:         o.Width,
		Height:        o.Height,
		WidthRatio:    o.WidthRatio,
		SectionMargin: o.SectionMargin,
		Margins: funnel.Margins{
			Top:    o.MarginTop,
			Right:  o.MarginRight,
			Bottom: o.MarginBottom,
			Left:   o.MarginLeft,
		},
	}
}

// Config builds the solver config for a series, including the inset an
// outside legend reserves.
func (o *Options) Config(s *funnel.Series) funnel.Config {
	cfg := o.baseConfig()
	maxLabel := 0
	for _, p := range s.Points() {
		if len(p.Label) > maxLabel {
			maxLabel = len(p.Label)
		}
	}
	cfg.Inset = o.LegendPlacement().Inset(s.Len(), maxLabel)
	return cfg
}

// GeometryKeyOpts returns cache key options for geometry computation.
func (o *Options) GeometryKeyOpts() cache.GeometryKeyOpts {
	return cache.GeometryKeyOpts{
		Width:         o.Width,
		Height:        o.Height,
		WidthRatio:    o.WidthRatio,
		SectionMargin: o.SectionMargin,
		MarginTop:     o.MarginTop,
		MarginRight:   o.MarginRight,
		MarginBottom:  o.MarginBottom,
		MarginLeft:    o.MarginLeft,
		Legend:        o.Legend,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. The
// resolved palette and title go into the key: geometry is palette-agnostic,
// so the geometry hash alone cannot distinguish these artifacts.
func (o *Options) ArtifactKeyOpts(format string, c *chart.Chart) cache.ArtifactKeyOpts {
	title := ""
	if !o.NoTitle {
		title = c.Title
	}
	return cache.ArtifactKeyOpts{
		Format:  format,
		Style:   o.Style,
		Palette: o.PaletteFor(c),
		Legend:  o.Legend,
		Title:   title,
		Labels:  !o.NoLabels,
		Scale:   o.Scale,
	}
}
