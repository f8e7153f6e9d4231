// Package legend computes legend placement for funnel renderings.
//
// A placement names one of eight compass anchors plus an inside/outside
// flag. Outside placements reserve space next to the plot by producing a
// margin inset the layout solver consumes opaquely; inside placements
// overlay the plot and reserve nothing.
package legend

import (
	"strings"

	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/styles"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Anchor is a compass position for the legend box.
type Anchor int

const (
	AnchorNone Anchor = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var anchorNames = map[Anchor]string{
	North:     "n",
	NorthEast: "ne",
	East:      "e",
	SouthEast: "se",
	South:     "s",
	SouthWest: "sw",
	West:      "w",
	NorthWest: "nw",
}

// Placement positions a legend: a compass anchor and whether the box sits
// outside the plot area.
type Placement struct {
	Anchor  Anchor
	Outside bool
}

// None is the zero placement: no legend.
var None = Placement{}

// String returns the parseable form: "ne", "outside-ne", or "" for none.
func (p Placement) String() string {
	name, ok := anchorNames[p.Anchor]
	if !ok {
		return ""
	}
	if p.Outside {
		return "outside-" + name
	}
	return name
}

// Parse reads a placement from its string form. The empty string means no
// legend. Accepted anchors are the eight compass abbreviations (n, ne, e,
// se, s, sw, w, nw), optionally prefixed with "outside-".
func Parse(s string) (Placement, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return None, nil
	}

	p := Placement{}
	if rest, ok := strings.CutPrefix(s, "outside-"); ok {
		p.Outside = true
		s = rest
	}
	for anchor, name := range anchorNames {
		if name == s {
			p.Anchor = anchor
			return p, nil
		}
	}
	return None, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown legend placement: %s", s)
}

const (
	entryHeight = 18.0
	boxPadding  = 8.0
	edgePadding = 10.0
	plotGap     = 12.0
	// Share suffix like " (42.0%)" appended to each label.
	shareSuffixChars = 9
)

// Box is the resolved legend rectangle in frame coordinates.
type Box struct {
	X, Y, W, H float64
}

func boxSize(entries, maxLabelLen int) (w, h float64) {
	chars := float64(maxLabelLen + shareSuffixChars)
	textW := chars * styles.LegendFontSize * fontCharWidth
	w = styles.LegendSwatchSize + 6 + textW + 2*boxPadding
	h = float64(entries)*entryHeight + 2*boxPadding
	return w, h
}

const fontCharWidth = 0.55

// Inset returns the plot-area margins an outside legend reserves within a
// frame of the given size. Inside placements and [None] reserve nothing.
func (p Placement) Inset(entries, maxLabelLen int) funnel.Margins {
	if p.Anchor == AnchorNone || !p.Outside {
		return funnel.Margins{}
	}
	w, h := boxSize(entries, maxLabelLen)

	switch p.Anchor {
	case North:
		return funnel.Margins{Top: h + plotGap}
	case South:
		return funnel.Margins{Bottom: h + plotGap}
	case East, NorthEast, SouthEast:
		return funnel.Margins{Right: w + plotGap}
	case West, NorthWest, SouthWest:
		return funnel.Margins{Left: w + plotGap}
	}
	return funnel.Margins{}
}

// Layout places the legend box inside a frame of the given size. For
// outside placements the box sits in the strip reserved by [Placement.Inset];
// inside placements hug the matching frame edge.
func (p Placement) Layout(frameW, frameH float64, entries, maxLabelLen int) Box {
	if p.Anchor == AnchorNone {
		return Box{}
	}
	w, h := boxSize(entries, maxLabelLen)
	b := Box{W: w, H: h}

	// Horizontal position.
	switch p.Anchor {
	case West, NorthWest, SouthWest:
		b.X = edgePadding
	case East, NorthEast, SouthEast:
		b.X = frameW - w - edgePadding
	default:
		b.X = (frameW - w) / 2
	}

	// Vertical position.
	switch p.Anchor {
	case North, NorthEast, NorthWest:
		b.Y = edgePadding
	case South, SouthEast, SouthWest:
		b.Y = frameH - h - edgePadding
	default:
		b.Y = (frameH - h) / 2
	}
	return b
}

// EntryOrigin returns the top-left corner of entry i within the box.
func (b Box) EntryOrigin(i int) (x, y float64) {
	return b.X + boxPadding, b.Y + boxPadding + float64(i)*entryHeight + (entryHeight-styles.LegendSwatchSize)/2
}
