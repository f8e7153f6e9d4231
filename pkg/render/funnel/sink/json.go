package sink

import (
	"encoding/json"

	"github.com/funnelviz/funnelviz/pkg/funnel"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Document is the JSON form of a solved funnel, consumed by the HTTP API
// and external tooling. Coordinates are frame coordinates with y growing
// downward.
type Document struct {
	Title    string       `json:"title,omitempty"`
	Frame    Frame        `json:"frame"`
	Angle    float64      `json:"angle"`
	Sections []SectionDoc `json:"sections"`
	Warnings []WarningDoc `json:"warnings,omitempty"`
}

// Frame is the overall drawing size.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SectionDoc describes one solved section. Vertices are in TL, TR, BR, BL
// order.
type SectionDoc struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Value    float64       `json:"value"`
	Share    float64       `json:"share"`
	Area     float64       `json:"area"`
	Vertices [4][2]float64 `json:"vertices"`
	Centroid [2]float64    `json:"centroid"`
}

// WarningDoc reports a section whose height solve did not converge.
type WarningDoc struct {
	Section  int     `json:"section"`
	Residual float64 `json:"residual"`
}

// NewDocument builds the JSON document for solved geometry. The series
// must be the one the geometry was solved from; title carries the chart
// title through the document so re-rendering from it keeps the heading.
func NewDocument(g *funnel.Geometry, s *funnel.Series, title string) (*Document, error) {
	if g == nil || g.SectionCount() == 0 {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "document requires solved geometry")
	}
	if s == nil || s.Len() != g.SectionCount() {
		return nil, apperrors.New(apperrors.ErrCodePrecondition, "series does not match geometry")
	}

	doc := &Document{
		Title:    title,
		Frame:    Frame{Width: g.FrameWidth, Height: g.FrameHeight},
		Angle:    g.Angle,
		Sections: make([]SectionDoc, g.SectionCount()),
	}
	for i := range doc.Sections {
		var verts [4][2]float64
		for c, v := range g.Vertices[i] {
			verts[c] = [2]float64{v.X, v.Y}
		}
		centroid := g.Centroid(i)
		doc.Sections[i] = SectionDoc{
			Index:    i,
			Label:    s.Point(i).Label,
			Value:    s.Point(i).Value,
			Share:    g.Weights[i],
			Area:     g.Areas[i],
			Vertices: verts,
			Centroid: [2]float64{centroid.X, centroid.Y},
		}
	}
	for _, w := range g.Warnings {
		doc.Warnings = append(doc.Warnings, WarningDoc{Section: w.Section, Residual: w.Residual})
	}
	return doc, nil
}

// RenderJSON renders solved geometry as an indented JSON document.
func RenderJSON(g *funnel.Geometry, s *funnel.Series, title string) ([]byte, error) {
	doc, err := NewDocument(g, s, title)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode geometry document")
	}
	return append(out, '\n'), nil
}
