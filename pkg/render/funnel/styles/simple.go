package styles

import (
	"bytes"
	"fmt"
)

// Simple renders flat-filled sections with a thin outline. It is the
// default style.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer, sections []Section) {}

func (Simple) RenderSection(buf *bytes.Buffer, s Section) {
	fmt.Fprintf(buf,
		`  <polygon id="%s" class="section" points="%s" fill="%s" stroke="#333333" stroke-width="1" data-highlight="%s" data-fill="%s"/>`+"\n",
		s.ID, pointsAttr(s.Points), s.Fill, s.Highlight, s.Fill)
}

func (Simple) RenderLabel(buf *bytes.Buffer, s Section) {
	renderLabel(buf, s)
}

func (Simple) RenderLegendItem(buf *bytes.Buffer, s Section, x, y float64) {
	renderLegendItem(buf, s, x, y)
}

func pointsAttr(v [4]Vertex) string {
	return fmt.Sprintf("%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f",
		v[0].X, v[0].Y, v[1].X, v[1].Y, v[2].X, v[2].Y, v[3].X, v[3].Y)
}

func renderLabel(buf *bytes.Buffer, s Section) {
	size := FontSize(s)
	label := TruncateLabel(s, size)
	fmt.Fprintf(buf,
		`  <text class="section-text" data-section="%s" x="%.1f" y="%.1f" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle" font-family="Helvetica, Arial, sans-serif">%s</text>`+"\n",
		s.ID, s.CX, s.CY, size, s.Text, EscapeXML(label))
}

func renderLegendItem(buf *bytes.Buffer, s Section, x, y float64) {
	fmt.Fprintf(buf,
		`  <rect class="legend-swatch" data-section="%s" x="%.1f" y="%.1f" width="%.0f" height="%.0f" fill="%s" stroke="#333333" stroke-width="0.5"/>`+"\n",
		s.ID, x, y, LegendSwatchSize, LegendSwatchSize, s.Fill)
	fmt.Fprintf(buf,
		`  <text class="legend-text" data-section="%s" x="%.1f" y="%.1f" font-size="%.0f" fill="#1a1a1a" dominant-baseline="middle" font-family="Helvetica, Arial, sans-serif">%s (%s)</text>`+"\n",
		s.ID, x+LegendSwatchSize+6, y+LegendSwatchSize/2, LegendFontSize,
		EscapeXML(s.Label), FormatShare(s.Share))
}
