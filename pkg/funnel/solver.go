package funnel

import (
	"math"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Solver iteration parameters. The tolerance and cap are load-bearing:
// changing them changes section heights and therefore every rendered pixel.
const (
	solveTolerance     = 1e-4
	solveMaxIterations = 100
)

// Point is a position in frame pixel space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Margins are pixel insets from the frame edges.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Config is the immutable layout configuration for one solve pass.
//
// Inset carries legend-placement margin adjustments resolved by the legend
// collaborator. The solver treats it as opaque additive offsets on top of
// Margins; it never inspects where the legend actually sits.
type Config struct {
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Margins       Margins `json:"margins"`
	WidthRatio    float64 `json:"width_ratio"`
	SectionMargin float64 `json:"section_margin"`
	Inset         Margins `json:"inset,omitempty"`
}

// Validate checks that the configuration can produce a funnel.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"frame dimensions must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.WidthRatio < 0 || c.WidthRatio >= 1 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"width ratio must be in [0,1), got %g", c.WidthRatio)
	}
	if c.SectionMargin < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"section margin must be non-negative, got %g", c.SectionMargin)
	}
	return nil
}

// plotLeft, plotTop, plotWidth, plotHeight resolve the drawable area after
// margins and legend insets.
func (c Config) plotLeft() float64 { return c.Margins.Left + c.Inset.Left }
func (c Config) plotTop() float64  { return c.Margins.Top + c.Inset.Top }

func (c Config) plotWidth() float64 {
	return c.Width - c.Margins.Left - c.Margins.Right - c.Inset.Left - c.Inset.Right
}

func (c Config) plotHeight() float64 {
	return c.Height - c.Margins.Top - c.Margins.Bottom - c.Inset.Top - c.Inset.Bottom
}

// ConvergenceWarning records a section whose height iteration hit the
// iteration cap before meeting tolerance. The last estimate is still used,
// matching the original tolerant behavior; the warning exists so callers and
// tests can observe it.
type ConvergenceWarning struct {
	Section  int
	Residual float64 // relative change between the final two estimates
}

// Geometry is the computed funnel layout for one series at one frame size.
//
// Sections are indexed in sorted (descending value) order, top to bottom.
// Vertices hold each section's four corners ordered top-left, top-right,
// bottom-right, bottom-left, inset by section margins. Envelope holds the
// outer trapezoid corners in the same order, without insets.
type Geometry struct {
	Weights  []float64
	Bases    []float64 // n+1 edge widths; Bases[0] is the funnel top width
	Lengths  []float64 // per-section heights; sums to the plot height
	Areas    []float64 // per-section areas; Weights[i] * total funnel area
	Angle    float64   // wall half-angle from vertical, radians
	Vertices [][4]Point
	Envelope [4]Point
	Warnings []ConvergenceWarning

	// Frame dimensions the geometry was solved for. Callers use these to
	// detect staleness after a resize.
	FrameWidth  float64
	FrameHeight float64
}

// SectionCount returns the number of trapezoid sections.
func (g *Geometry) SectionCount() int { return len(g.Vertices) }

// Centroid returns the arithmetic center of section i's four corners.
func (g *Geometry) Centroid(i int) Point {
	v := g.Vertices[i]
	return Point{
		X: (v[0].X + v[1].X + v[2].X + v[3].X) / 4,
		Y: (v[0].Y + v[1].Y + v[2].Y + v[3].Y) / 4,
	}
}

// Converged reports whether every section's height iteration met tolerance.
func (g *Geometry) Converged() bool { return len(g.Warnings) == 0 }

// ConvergenceErr returns a NON_CONVERGENCE error summarizing the recorded
// warnings, or nil when every section converged. The geometry remains usable
// either way; the error exists for callers that log or report solve quality.
func (g *Geometry) ConvergenceErr() error {
	if len(g.Warnings) == 0 {
		return nil
	}
	sections := make([]int, len(g.Warnings))
	for i, w := range g.Warnings {
		sections[i] = w.Section
	}
	return apperrors.New(apperrors.ErrCodeNonConvergence,
		"height iteration hit the cap for sections %v", sections)
}

// Solve computes the funnel geometry for a series under the given config.
//
// Section areas are proportional to the series weights; section heights are
// found by fixed-point iteration against the trapezoid area formula with the
// wall angle held constant for the whole funnel. Layout errors abort the
// call with no partial geometry; non-convergence of individual sections is
// tolerated and recorded in Geometry.Warnings.
func Solve(s *Series, cfg Config) (*Geometry, error) {
	if s == nil || s.Len() == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDegenerateInput, "no series data to lay out")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pw := cfg.plotWidth()
	ph := cfg.plotHeight()
	if pw <= 0 || ph <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeDegenerateInput,
			"margins leave no plot area (%gx%g)", pw, ph)
	}

	weights := s.Weights()
	n := len(weights)

	bottomWidth := pw * cfg.WidthRatio
	totalArea := ph / 2 * (pw + bottomWidth)
	angle := math.Atan((pw - bottomWidth) / 2 / ph)
	tan := math.Tan(angle)

	g := &Geometry{
		Weights:     weights,
		Bases:       make([]float64, n+1),
		Lengths:     make([]float64, n),
		Areas:       make([]float64, n),
		Angle:       angle,
		Vertices:    make([][4]Point, n),
		FrameWidth:  cfg.Width,
		FrameHeight: cfg.Height,
	}
	g.Bases[0] = pw

	for i := 0; i < n; i++ {
		area := weights[i] * totalArea
		g.Areas[i] = area

		length, residual := solveLength(area, g.Bases[i], tan)
		if residual > solveTolerance {
			g.Warnings = append(g.Warnings, ConvergenceWarning{Section: i, Residual: residual})
		}
		g.Lengths[i] = length
		g.Bases[i+1] = g.Bases[i] - 2*length*tan
	}

	left := cfg.plotLeft()
	top := cfg.plotTop()
	halfTaper := (g.Bases[0] - g.Bases[n]) / 2

	g.Envelope = [4]Point{
		{X: left, Y: top},                      // top-left
		{X: left + pw, Y: top},                 // top-right
		{X: left + pw - halfTaper, Y: top + ph}, // bottom-right
		{X: left + halfTaper, Y: top + ph},     // bottom-left
	}

	// Side-edge line equations through the envelope corner pairs. Every
	// section corner lies on one of these two lines.
	slope := halfTaper / ph
	leftX := func(y float64) float64 { return left + (y-top)*slope }
	rightX := func(y float64) float64 { return left + pw - (y-top)*slope }

	sm := cfg.SectionMargin
	y := top
	for i := 0; i < n; i++ {
		topY := y + topInset(i, n, sm)
		bottomY := y + g.Lengths[i] - bottomInset(i, n, sm)
		g.Vertices[i] = [4]Point{
			{X: leftX(topY), Y: topY},
			{X: rightX(topY), Y: topY},
			{X: rightX(bottomY), Y: bottomY},
			{X: leftX(bottomY), Y: bottomY},
		}
		y += g.Lengths[i]
	}

	return g, nil
}

// solveLength finds a section height satisfying
//
//	area = length * (base - length*tan)
//
// by fixed-point iteration starting from area/base. Returns the final
// estimate and the relative residual of the last step; a residual above
// solveTolerance means the iteration hit the cap without converging.
func solveLength(area, base, tan float64) (float64, float64) {
	length := area / base
	residual := math.Inf(1)
	for i := 0; i < solveMaxIterations; i++ {
		prev := length
		length = area / (base - prev*tan)
		residual = math.Abs(length - prev)
		if residual <= length*solveTolerance {
			return length, 0
		}
	}
	if length != 0 {
		residual /= math.Abs(length)
	}
	return length, residual
}

// Section margins distribute asymmetrically: the outer funnel edges get no
// inset, the first and last internal boundaries split 1/3 against 2/3, and
// all other internal boundaries split evenly. This matches the original
// renderer's pixel output exactly.
func topInset(i, n int, sm float64) float64 {
	switch {
	case i == 0:
		return 0
	case i == 1:
		return 2 * sm / 3
	case i == n-1:
		return sm / 3
	default:
		return sm / 2
	}
}

func bottomInset(i, n int, sm float64) float64 {
	switch {
	case i == n-1:
		return 0
	case i == 0:
		return sm / 3
	case i == n-2:
		return 2 * sm / 3
	default:
		return sm / 2
	}
}
