package pipeline

import (
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/sink"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/styles"
)

// renderFormats renders every requested format from solved geometry.
// Options must have been validated.
func renderFormats(g *funnel.Geometry, s *funnel.Series, c *chart.Chart, opts Options) (map[string][]byte, error) {
	svgOpts, err := svgOptions(c, opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(g, s, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(g, s,
				sink.WithPNGSVGOptions(svgOpts...),
				sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(g, s, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(g, s, c.Title)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(c *chart.Chart, opts Options) ([]sink.SVGOption, error) {
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}

	svgOpts := []sink.SVGOption{
		sink.WithStyle(style),
		sink.WithPalette(opts.PaletteFor(c)),
		sink.WithLegend(opts.LegendPlacement()),
	}
	if !opts.NoTitle {
		svgOpts = append(svgOpts, sink.WithTitle(c.Title))
	}
	if opts.NoLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	return svgOpts, nil
}
