// Package cache provides pluggable caching for the funnel pipeline.
//
// Three backends are available: [FileCache] for CLI usage, [RedisCache]
// for the server, and [NullCache] to disable caching. Keys are built by a
// [Keyer] so that every input that affects a stage's output is part of its
// key; stale entries are never served after a config change.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Geometry is cheap to recompute, artifacts are
// not (PNG/PDF shell out to rsvg-convert).
const (
	TTLGeometry = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLHTTP     = 5 * time.Minute
)

// Cache is a byte-oriented cache with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A ttl of 0 stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GeometryKeyOpts are the solver inputs that affect solved geometry.
type GeometryKeyOpts struct {
	Width         float64
	Height        float64
	WidthRatio    float64
	SectionMargin float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	Legend        string
}

// ArtifactKeyOpts are the render inputs that affect an output artifact.
type ArtifactKeyOpts struct {
	Format  string
	Style   string
	Palette string
	Legend  string
	Title   string
	Labels  bool
	Scale   float64
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching.
	HTTPKey(namespace, key string) string
	// GeometryKey generates a key for solved geometry, derived from the
	// chart content hash and the solver configuration.
	GeometryKey(chartHash string, opts GeometryKeyOpts) string
	// ArtifactKey generates a key for a rendered artifact, derived from the
	// geometry hash and the render options.
	ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys as prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (k *DefaultKeyer) GeometryKey(chartHash string, opts GeometryKeyOpts) string {
	return hashKey("geometry", chartHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", geometryHash, opts)
}
