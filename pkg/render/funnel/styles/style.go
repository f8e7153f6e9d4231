package styles

import "bytes"

// Style defines the visual appearance for funnel rendering.
// Implementations control how sections, labels, and legend entries are
// drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (gradients, filters). Sections
	// are passed so per-section definitions can be emitted.
	RenderDefs(buf *bytes.Buffer, sections []Section)
	// RenderSection writes the SVG for a single trapezoid section.
	RenderSection(buf *bytes.Buffer, s Section)
	// RenderLabel writes the SVG for a section's label text.
	RenderLabel(buf *bytes.Buffer, s Section)
	// RenderLegendItem writes one legend entry (swatch plus label) with the
	// swatch's top-left corner at (x, y).
	RenderLegendItem(buf *bytes.Buffer, s Section, x, y float64)
}

// Vertex is a point in frame coordinates, y growing downward.
type Vertex struct {
	X, Y float64
}

// Section contains all data needed to render a single funnel section.
type Section struct {
	ID        string    // Element identifier, e.g. "section-0"
	Label     string    // Display text
	Value     float64   // Raw data value
	Share     float64   // Fraction of the series total, 0..1
	Points    [4]Vertex // Corners in TL, TR, BR, BL order
	CX, CY    float64   // Centroid (for text placement)
	Fill      string    // Fill color, #rrggbb
	Highlight string    // Hover shade, #rrggbb
	Text      string    // Label color, #rrggbb
}

// Width returns the section's top edge width, the widest span available
// for a horizontal label.
func (s Section) Width() float64 { return s.Points[1].X - s.Points[0].X }

// Height returns the section's vertical extent.
func (s Section) Height() float64 { return s.Points[3].Y - s.Points[0].Y }
