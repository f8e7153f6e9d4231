package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0

	// LegendFontSize is the fixed text size for legend entries.
	LegendFontSize = 12.0
	// LegendSwatchSize is the side length of a legend color swatch.
	LegendSwatchSize = 12.0
)

// FontSize picks a label size that fits the section's bottom width and
// height, clamped to a readable range. The bottom edge is the narrow one,
// so a size that fits there fits the whole trapezoid.
func FontSize(s Section) float64 {
	availWidth := s.Points[2].X - s.Points[3].X
	return fontSizeFor(availWidth, s.Height(), len(s.Label))
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens a label that would overflow the section's bottom
// width at the given font size. Truncation counts runes, not bytes, so a
// multi-byte character is never split.
func TruncateLabel(s Section, fontSize float64) string {
	label := s.Label
	availW := (s.Points[2].X - s.Points[3].X) * fontWidthRatio

	charWidth := fontSize * fontCharWidth
	maxChars := int(availW / charWidth)
	if maxChars < 3 {
		maxChars = 3
	}

	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

// EscapeXML escapes s for embedding in SVG text content or attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// FormatShare renders a 0..1 share as a percentage label.
func FormatShare(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
