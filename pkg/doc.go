// Package pkg provides the core libraries for Funnelviz funnel-chart
// visualization.
//
// # Overview
//
// Funnelviz turns ordered conversion data into funnel charts: stacked
// trapezoid sections whose heights are solved so that each section's area is
// proportional to its value. The pkg directory is organized into five main
// areas:
//
//  1. [funnel] - Domain logic (series, geometry solver, hit testing, interaction)
//  2. [chart] - The chart document (input parsing and validation)
//  3. [render] - Visualization rendering (SVG, PNG, PDF, JSON layouts)
//  4. [pipeline] - Orchestration (load → solve → render) with caching
//  5. [cache] / [store] - Infrastructure (artifact caching, chart persistence)
//
// # Architecture
//
// The typical data flow through Funnelviz:
//
//	Chart file (JSON/TOML/YAML)
//	         ↓
//	    [chart] package (parse + validate)
//	         ↓
//	    [funnel] package (sort series, solve geometry)
//	         ↓
//	    [render/funnel] package (styles + sinks)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Solve a funnel and render it to SVG:
//
//	import (
//	    "github.com/funnelviz/funnelviz/pkg/funnel"
//	    "github.com/funnelviz/funnelviz/pkg/palette"
//	    "github.com/funnelviz/funnelviz/pkg/render/funnel/sink"
//	)
//
//	// 1. Build the sorted series
//	series, _ := funnel.NewSeries([]funnel.DataPoint{
//	    {Label: "visit", Value: 1000},
//	    {Label: "cart", Value: 300},
//	    {Label: "buy", Value: 80},
//	})
//
//	// 2. Solve the geometry
//	g, _ := funnel.Solve(series, funnel.Config{Width: 800, Height: 600})
//
//	// 3. Render to SVG
//	svg, _ := sink.RenderSVG(g, series, sink.WithPalette(palette.Ocean))
//
// # Main Packages
//
// ## Core Domain Logic
//
// [funnel] - The geometry engine. [funnel.NewSeries] validates and sorts data
// points, [funnel.Solve] runs the iterative area-balancing solver, and
// Geometry.HitTest maps points back to sections. The InteractionController
// tracks hover and click state for interactive front ends.
//
// [chart] - The chart document read from JSON, TOML, or YAML. A chart is the
// unit of storage for the HTTP API.
//
// [palette] - Named color palettes with per-section fill, highlight, and text
// colors.
//
// ## Visualization
//
// [render/funnel] - The funnel rendering tree:
//
//   - [render/funnel/styles]: Visual styles (simple, shaded, text)
//   - [render/funnel/legend]: Legend layout
//   - [render/funnel/sink]: Output formats (SVG, PNG, PDF, JSON)
//
// [render] - Top-level utilities for format conversion (SVG to PDF/PNG).
//
// ## Orchestration
//
// [pipeline] - Complete visualization pipeline (load → solve → render) used
// by the CLI and the HTTP server. Ensures consistent behavior across entry
// points, with two-level caching keyed on input and geometry hashes.
//
// ## Infrastructure
//
// [cache] - Keyed byte cache with file, Redis, and null backends, plus retry
// helpers for flaky backends.
//
// [store] - Chart persistence for the HTTP API, with memory and MongoDB
// backends.
//
// [errors] - Coded errors shared across the module; codes drive both CLI
// messages and HTTP status mapping.
//
// [observability] - Pluggable hook points for solver, pipeline, and HTTP
// instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/funnel/...       # Specific package
//	go test -run Example           # Examples only
//
// [funnel]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/funnel
// [chart]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/chart
// [palette]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/palette
// [render]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/render
// [render/funnel]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/render/funnel
// [render/funnel/styles]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/render/funnel/styles
// [render/funnel/legend]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/render/funnel/legend
// [render/funnel/sink]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/render/funnel/sink
// [pipeline]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/cache
// [store]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/store
// [errors]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/funnelviz/funnelviz/pkg/observability
package pkg
