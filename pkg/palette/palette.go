// Package palette generates the section color ramps used by the funnel
// renderers. Colors are derived in HCL space so that adjacent sections keep
// an even perceptual distance regardless of section count.
package palette

import (
	"github.com/lucasb-eyer/go-colorful"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Named palettes selectable from config and the CLI.
const (
	Ocean   = "ocean"
	Sunset  = "sunset"
	Forest  = "forest"
	Mono    = "mono"
	Default = Ocean
)

type ramp struct {
	hueStart, hueEnd float64
	chroma           float64
	lumTop, lumBot   float64
}

var ramps = map[string]ramp{
	Ocean:  {hueStart: 210, hueEnd: 260, chroma: 0.45, lumTop: 0.75, lumBot: 0.40},
	Sunset: {hueStart: 60, hueEnd: 10, chroma: 0.65, lumTop: 0.80, lumBot: 0.45},
	Forest: {hueStart: 140, hueEnd: 90, chroma: 0.40, lumTop: 0.70, lumBot: 0.35},
	Mono:   {hueStart: 240, hueEnd: 240, chroma: 0.05, lumTop: 0.85, lumBot: 0.30},
}

// Names lists the available palette names in a stable order.
func Names() []string {
	return []string{Ocean, Sunset, Forest, Mono}
}

// Palette produces deterministic per-section colors for one funnel.
type Palette struct {
	colors []colorful.Color
}

// New builds a palette with one color per section. The name must be one of
// [Names]; n must be positive.
func New(name string, n int) (*Palette, error) {
	r, ok := ramps[name]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidStyle, "unknown palette: %s", name)
	}
	if n <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidStyle, "palette needs at least one section")
	}

	colors := make([]colorful.Color, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		hue := r.hueStart + (r.hueEnd-r.hueStart)*t
		lum := r.lumTop + (r.lumBot-r.lumTop)*t
		colors[i] = colorful.Hcl(hue, r.chroma, lum).Clamped()
	}
	return &Palette{colors: colors}, nil
}

// Len returns the number of section colors.
func (p *Palette) Len() int { return len(p.colors) }

// Hex returns the fill color for section i as "#rrggbb".
func (p *Palette) Hex(i int) string { return p.colors[i].Hex() }

// HighlightHex returns the hover shade for section i: the fill blended
// toward white in Lab space so the lift reads the same on dark and light
// fills.
func (p *Palette) HighlightHex(i int) string {
	white := colorful.Color{R: 1, G: 1, B: 1}
	return p.colors[i].BlendLab(white, 0.3).Clamped().Hex()
}

// TextHex returns a readable label color for section i, picking black or
// white by the fill's luminance.
func (p *Palette) TextHex(i int) string {
	_, _, l := p.colors[i].Hcl()
	if l > 0.6 {
		return "#1a1a1a"
	}
	return "#ffffff"
}
