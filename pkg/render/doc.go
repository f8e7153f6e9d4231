// Package render provides visualization rendering for funnel charts.
//
// # Overview
//
// This package contains the rendering pipeline that transforms solved funnel
// geometry into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Funnel visualization (in the funnel subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, _ := sink.RenderSVG(g, series)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Funnel Visualization
//
// The funnel subpackage renders solved geometry as stacked trapezoid
// sections. Key subpackages:
//
//   - funnel/styles: Visual styles (simple, shaded, text)
//   - funnel/legend: Legend layout beside the plot
//   - funnel/sink: Output formats (SVG, PNG, PDF, JSON)
//
// The JSON sink doubles as a persistence format: a layout document written
// with sink.RenderJSON can be read back with sink.ReadDocument and rendered
// without re-solving.
package render
