// Package sink renders solved funnel geometry into output formats: SVG,
// PNG, PDF, and a JSON document for programmatic consumers.
package sink

import (
	"bytes"
	"fmt"

	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/palette"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/legend"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/styles"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

const sectionInteractionCSS = `
    .section { transition: stroke-width 0.2s ease; cursor: pointer; }
    .section.highlight { stroke-width: 3; }`

// labelInteractionCSS is only emitted when labels are rendered, so a
// label-free document carries no .section-text rules.
const labelInteractionCSS = `
    .section-text { transition: transform 0.2s ease; transform-origin: center; transform-box: fill-box; pointer-events: none; }
    .section-text.highlight { transform: scale(1.06); font-weight: bold; }`

const sectionInteractionJS = `
    document.querySelectorAll('.section').forEach(el => {
      el.addEventListener('mouseenter', () => {
        el.classList.add('highlight');
        el.setAttribute('fill', el.dataset.highlight);
      });
      el.addEventListener('mouseleave', () => {
        el.classList.remove('highlight');
        el.setAttribute('fill', el.dataset.fill);
      });
    });`

const labelInteractionJS = `
    document.querySelectorAll('.section').forEach(el => {
      const text = document.querySelector('.section-text[data-section="' + el.id + '"]');
      el.addEventListener('mouseenter', () => {
        el.classList.add('highlight');
        el.setAttribute('fill', el.dataset.highlight);
        if (text) text.classList.add('highlight');
      });
      el.addEventListener('mouseleave', () => {
        el.classList.remove('highlight');
        el.setAttribute('fill', el.dataset.fill);
        if (text) text.classList.remove('highlight');
      });
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	paletteName string
	legend      legend.Placement
	title       string
	labels      bool
	interactive bool
}

func WithStyle(s styles.Style) SVGOption          { return func(r *svgRenderer) { r.style = s } }
func WithPalette(name string) SVGOption           { return func(r *svgRenderer) { r.paletteName = name } }
func WithLegend(p legend.Placement) SVGOption     { return func(r *svgRenderer) { r.legend = p } }
func WithTitle(title string) SVGOption            { return func(r *svgRenderer) { r.title = title } }
func WithoutLabels() SVGOption                    { return func(r *svgRenderer) { r.labels = false } }
func WithoutInteraction() SVGOption               { return func(r *svgRenderer) { r.interactive = false } }

// RenderSVG renders solved geometry as a standalone SVG document. The
// series supplies labels and values; it must be the one the geometry was
// solved from.
func RenderSVG(g *funnel.Geometry, s *funnel.Series, opts ...SVGOption) ([]byte, error) {
	if g == nil || g.SectionCount() == 0 {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "render requires solved geometry")
	}
	if s == nil || s.Len() != g.SectionCount() {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "series does not match geometry")
	}

	r := newSVGRenderer(opts...)
	sections, err := buildSections(g, s, r.paletteName)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		g.FrameWidth, g.FrameHeight, g.FrameWidth, g.FrameHeight)

	r.style.RenderDefs(&buf, sections)

	for _, sec := range sections {
		r.style.RenderSection(&buf, sec)
	}
	if r.labels {
		for _, sec := range sections {
			r.style.RenderLabel(&buf, sec)
		}
	}
	if r.title != "" {
		renderTitle(&buf, g.FrameWidth, r.title)
	}
	if r.legend != legend.None {
		renderLegend(&buf, r, g, sections)
	}
	if r.interactive {
		renderSectionInteraction(&buf, r.labels)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		style:       styles.Simple{},
		paletteName: palette.Default,
		labels:      true,
		interactive: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func buildSections(g *funnel.Geometry, s *funnel.Series, paletteName string) ([]styles.Section, error) {
	pal, err := palette.New(paletteName, g.SectionCount())
	if err != nil {
		return nil, err
	}

	sections := make([]styles.Section, g.SectionCount())
	for i := range sections {
		var pts [4]styles.Vertex
		for c, v := range g.Vertices[i] {
			pts[c] = styles.Vertex{X: v.X, Y: v.Y}
		}
		centroid := g.Centroid(i)
		sections[i] = styles.Section{
			ID:        fmt.Sprintf("section-%d", i),
			Label:     s.Point(i).Label,
			Value:     s.Point(i).Value,
			Share:     g.Weights[i],
			Points:    pts,
			CX:        centroid.X,
			CY:        centroid.Y,
			Fill:      pal.Hex(i),
			Highlight: pal.HighlightHex(i),
			Text:      pal.TextHex(i),
		}
	}
	return sections, nil
}

func renderTitle(buf *bytes.Buffer, frameWidth float64, title string) {
	fmt.Fprintf(buf,
		`  <text class="chart-title" x="%.1f" y="18" font-size="16" font-weight="bold" fill="#1a1a1a" text-anchor="middle" font-family="Helvetica, Arial, sans-serif">%s</text>`+"\n",
		frameWidth/2, styles.EscapeXML(title))
}

func renderLegend(buf *bytes.Buffer, r svgRenderer, g *funnel.Geometry, sections []styles.Section) {
	maxLabel := 0
	for _, sec := range sections {
		if len(sec.Label) > maxLabel {
			maxLabel = len(sec.Label)
		}
	}
	box := r.legend.Layout(g.FrameWidth, g.FrameHeight, len(sections), maxLabel)

	fmt.Fprintf(buf,
		`  <rect class="legend-box" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff" fill-opacity="0.85" stroke="#cccccc" rx="4"/>`+"\n",
		box.X, box.Y, box.W, box.H)
	for i, sec := range sections {
		x, y := box.EntryOrigin(i)
		r.style.RenderLegendItem(buf, sec, x, y)
	}
}

func renderSectionInteraction(buf *bytes.Buffer, withLabels bool) {
	css, js := sectionInteractionCSS, sectionInteractionJS
	if withLabels {
		css += labelInteractionCSS
		js = labelInteractionJS
	}
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", css)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", js)
}
