package funnel

import (
	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// NoSection is the sentinel returned by HitTest when no section contains
// the pointer. "Nothing under the cursor" is an expected, frequent outcome,
// so it is an ordinary return value, never an error.
const NoSection = -1

// HitTest resolves a pointer position to the section under it.
//
// The horizontal bounds are taken from the two outer envelope side lines
// (through the first section's top corners and the last section's bottom
// corners) evaluated at the pointer's y, not from each section's own inset
// edges. Margin gaps between sections are therefore not excluded
// horizontally, only vertically. This mirrors the original renderer's
// behavior and is preserved deliberately; see the package tests.
//
// Returns a PRECONDITION error when called against nil or empty geometry:
// callers must complete a layout pass before hit testing. If the geometry is
// stale relative to the current frame size the result is undefined.
func (g *Geometry) HitTest(p Point) (int, error) {
	if g == nil || len(g.Vertices) == 0 {
		return NoSection, apperrors.New(apperrors.ErrCodePrecondition,
			"hit test requires solved geometry; call Solve first")
	}

	first := g.Vertices[0]
	last := g.Vertices[len(g.Vertices)-1]

	leftX := lineXAt(first[0], last[3], p.Y)
	rightX := lineXAt(first[1], last[2], p.Y)

	for i, v := range g.Vertices {
		if p.Y >= v[0].Y && p.Y <= v[3].Y && p.X > leftX && p.X < rightX {
			return i, nil
		}
	}
	return NoSection, nil
}

// lineXAt evaluates the x coordinate of the line through a and b at height y.
// A degenerate (horizontal) line returns a.X.
func lineXAt(a, b Point, y float64) float64 {
	dy := b.Y - a.Y
	if dy == 0 {
		return a.X
	}
	return a.X + (y-a.Y)*(b.X-a.X)/dy
}
