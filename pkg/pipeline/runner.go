package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/observability"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	c, s, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Chart = c
	result.Series = s
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PointCount = s.Len()

	// Compute chart hash for cache keys and API responses
	if chartData, err := json.Marshal(c); err == nil {
		result.ChartHash = cache.Hash(chartData)
	}

	r.Logger.Info("loaded chart",
		"title", c.Title,
		"points", s.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Solve
	solveStart := time.Now()
	g, solveHit, err := r.SolveWithCacheInfo(ctx, result.ChartHash, s, opts)
	if err != nil {
		return nil, err
	}
	result.Geometry = g
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.Warnings = len(g.Warnings)
	result.CacheInfo.SolveHit = solveHit

	if geomData, err := json.Marshal(g); err == nil {
		result.GeometryHash = cache.Hash(geomData)
	}

	r.Logger.Info("solved geometry",
		"sections", g.SectionCount(),
		"warnings", len(g.Warnings),
		"duration", result.Stats.SolveTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, s, c, result.GeometryHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the chart document and builds its series. Loading is a local
// read and is never cached.
func (r *Runner) Load(ctx context.Context, opts Options) (*chart.Chart, *funnel.Series, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}
	r.applyLogger(&opts)

	source := opts.Input
	if opts.Chart != nil {
		source = "inline"
	}
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	c := opts.Chart
	var err error
	if c == nil {
		c, err = chart.ReadFile(opts.Input)
	} else {
		err = c.Validate()
	}
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, nil, err
	}

	s, err := c.Series()
	observability.Pipeline().OnLoadComplete(ctx, source, len(c.Points), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return c, s, nil
}

// SolveWithCacheInfo computes funnel geometry with caching and returns
// cache hit info. The chart hash keys the cache entry together with the
// layout options, so any data or dimension change recomputes.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, chartHash string, s *funnel.Series, opts Options) (*funnel.Geometry, bool, error) {
	if err := opts.ValidateForSolve(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GeometryKey(chartHash, opts.GeometryKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached funnel.Geometry
			if err := json.Unmarshal(data, &cached); err == nil && cached.SectionCount() == s.Len() {
				observability.Cache().OnCacheHit(ctx, "geometry")
				return &cached, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "geometry")
	}

	// Solve
	start := time.Now()
	observability.Pipeline().OnSolveStart(ctx, s.Len())
	g, err := funnel.Solve(s, opts.Config(s))
	observability.Pipeline().OnSolveComplete(ctx, s.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	if cerr := g.ConvergenceErr(); cerr != nil {
		for _, w := range g.Warnings {
			observability.Pipeline().OnConvergenceWarning(ctx, w.Section, w.Residual)
		}
		r.Logger.Warn("solve finished with convergence warnings", "error", cerr)
	}

	// Cache the result
	if data, err := json.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGeometry); err == nil {
			observability.Cache().OnCacheSet(ctx, "geometry", len(data))
		}
	}

	return g, false, nil // Cache miss
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, chartHash string, s *funnel.Series, opts Options) (*funnel.Geometry, error) {
	g, _, err := r.SolveWithCacheInfo(ctx, chartHash, s, opts)
	return g, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *funnel.Geometry, s *funnel.Series, c *chart.Chart, geometryHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if g == nil || geometryHash == "" {
		return nil, false, apperrors.New(apperrors.ErrCodePrecondition, "render requires solved geometry")
	}

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(geometryHash, opts.ArtifactKeyOpts(format, c))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderFormats(g, s, c, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(geometryHash, opts.ArtifactKeyOpts(format, c))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *funnel.Geometry, s *funnel.Series, c *chart.Chart, geometryHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, s, c, geometryHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
