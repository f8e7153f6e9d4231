package sink

import (
	"encoding/json"
	"os"

	"github.com/funnelviz/funnelviz/pkg/funnel"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// ReadDocument loads a geometry document previously written by RenderJSON.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "layout file %s not found", path)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "reading layout file %s", path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parsing layout file %s", path)
	}
	if len(doc.Sections) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "layout file %s has no sections", path)
	}
	return &doc, nil
}

// Geometry reconstructs the solved geometry the document was written from.
// Only the fields the renderers and hit tester consume are restored; the
// solver intermediates (bases, lengths) are not part of the document.
func (d *Document) Geometry() *funnel.Geometry {
	g := &funnel.Geometry{
		Weights:     make([]float64, len(d.Sections)),
		Areas:       make([]float64, len(d.Sections)),
		Angle:       d.Angle,
		Vertices:    make([][4]funnel.Point, len(d.Sections)),
		FrameWidth:  d.Frame.Width,
		FrameHeight: d.Frame.Height,
	}
	for i, sec := range d.Sections {
		g.Weights[i] = sec.Share
		g.Areas[i] = sec.Area
		for c, v := range sec.Vertices {
			g.Vertices[i][c] = funnel.Point{X: v[0], Y: v[1]}
		}
	}
	for _, w := range d.Warnings {
		g.Warnings = append(g.Warnings, funnel.ConvergenceWarning{Section: w.Section, Residual: w.Residual})
	}
	return g
}

// Series rebuilds the funnel series from the document's sections. Sections
// are stored in sorted order, so the rebuilt series sorts identically.
func (d *Document) Series() (*funnel.Series, error) {
	points := make([]funnel.DataPoint, len(d.Sections))
	for i, sec := range d.Sections {
		points[i] = funnel.DataPoint{Label: sec.Label, Value: sec.Value}
	}
	return funnel.NewSeries(points)
}
