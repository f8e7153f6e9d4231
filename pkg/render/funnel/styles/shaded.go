package styles

import (
	"bytes"
	"fmt"
)

// Shaded renders sections with a vertical gradient from the hover shade at
// the top edge to the base fill at the bottom, giving the funnel depth.
type Shaded struct{}

func (Shaded) RenderDefs(buf *bytes.Buffer, sections []Section) {
	buf.WriteString("  <defs>\n")
	for _, s := range sections {
		fmt.Fprintf(buf, `    <linearGradient id="grad-%s" x1="0" y1="0" x2="0" y2="1">`+"\n", s.ID)
		fmt.Fprintf(buf, `      <stop offset="0%%" stop-color="%s"/>`+"\n", s.Highlight)
		fmt.Fprintf(buf, `      <stop offset="100%%" stop-color="%s"/>`+"\n", s.Fill)
		buf.WriteString("    </linearGradient>\n")
	}
	buf.WriteString("  </defs>\n")
}

func (Shaded) RenderSection(buf *bytes.Buffer, s Section) {
	fmt.Fprintf(buf,
		`  <polygon id="%s" class="section" points="%s" fill="url(#grad-%s)" stroke="#333333" stroke-width="1" data-highlight="%s" data-fill="url(#grad-%s)"/>`+"\n",
		s.ID, pointsAttr(s.Points), s.ID, s.Highlight, s.ID)
}

func (Shaded) RenderLabel(buf *bytes.Buffer, s Section) {
	renderLabel(buf, s)
}

func (Shaded) RenderLegendItem(buf *bytes.Buffer, s Section, x, y float64) {
	renderLegendItem(buf, s, x, y)
}
