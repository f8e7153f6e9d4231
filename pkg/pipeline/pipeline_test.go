package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/render/funnel/sink"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

func testChart() *chart.Chart {
	return &chart.Chart{
		Title: "Checkout",
		Points: []funnel.DataPoint{
			{Label: "visit", Value: 1000},
			{Label: "cart", Value: 300},
			{Label: "buy", Value: 80},
		},
	}
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Chart: testChart(), Logger: testLogger()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("frame = %gx%g, want defaults %gx%g", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.WidthRatio != DefaultWidthRatio {
		t.Errorf("WidthRatio = %g, want %g", opts.WidthRatio, DefaultWidthRatio)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle {
		t.Errorf("Style = %q, want %q", opts.Style, DefaultStyle)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error = %v", err)
	}
}

func TestOptionsValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperrors.Code
	}{
		{
			name: "neither chart nor input",
			opts: Options{},
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "both chart and input",
			opts: Options{Chart: testChart(), Input: "chart.json"},
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "bad format",
			opts: Options{Chart: testChart(), Formats: []string{"gif"}},
			code: apperrors.ErrCodeUnsupported,
		},
		{
			name: "bad style",
			opts: Options{Chart: testChart(), Style: "sketchy"},
			code: apperrors.ErrCodeInvalidStyle,
		},
		{
			name: "bad palette",
			opts: Options{Chart: testChart(), Palette: "neon"},
			code: apperrors.ErrCodeInvalidStyle,
		},
		{
			name: "bad legend placement",
			opts: Options{Chart: testChart(), Legend: "center"},
			code: apperrors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = testLogger()
			err := tt.opts.ValidateAndSetDefaults()
			if !apperrors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestOptionsConfigIncludesLegendInset(t *testing.T) {
	c := testChart()
	s, err := c.Series()
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}

	opts := Options{Chart: c, Legend: "outside-e", Logger: testLogger()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	cfg := opts.Config(s)
	if cfg.Inset.Right <= 0 {
		t.Errorf("Config().Inset.Right = %v, want positive for outside-e legend", cfg.Inset.Right)
	}

	opts.Legend = ""
	if cfg := opts.Config(s); cfg.Inset != (funnel.Margins{}) {
		t.Errorf("Config().Inset = %+v, want zero without legend", cfg.Inset)
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Chart:   testChart(),
		Formats: []string{FormatSVG, FormatJSON},
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Geometry == nil || result.Geometry.SectionCount() != 3 {
		t.Fatalf("Geometry = %+v, want 3 sections", result.Geometry)
	}
	if result.ChartHash == "" || result.GeometryHash == "" {
		t.Error("hashes not populated")
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing")
	}

	var doc sink.Document
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact invalid: %v", err)
	}
	if len(doc.Sections) != 3 {
		t.Errorf("json sections = %d, want 3", len(doc.Sections))
	}

	if result.CacheInfo.SolveHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit cache")
	}
}

func TestRunnerExecuteCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, testLogger())
	defer runner.Close()

	opts := Options{Chart: testChart(), Formats: []string{FormatSVG}, Logger: testLogger()}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.SolveHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(context.Background(), Options{
		Chart: testChart(), Formats: []string{FormatSVG}, Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.SolveHit {
		t.Error("second run should hit geometry cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit artifact cache")
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(context.Background(), Options{
		Chart: testChart(), Formats: []string{FormatSVG}, Refresh: true, Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.SolveHit || third.CacheInfo.RenderHit {
		t.Error("refresh run should not hit cache")
	}
}

func TestRunnerLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	data := `{"title": "Signups", "points": [{"label": "landing", "value": 500}, {"label": "register", "value": 120}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{Input: path, Logger: testLogger()})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Chart.Title != "Signups" {
		t.Errorf("Title = %q, want Signups", result.Chart.Title)
	}
	if result.Stats.PointCount != 2 {
		t.Errorf("PointCount = %d, want 2", result.Stats.PointCount)
	}
}

func TestRunnerLoadDegenerateChart(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	defer runner.Close()

	_, err := runner.Execute(context.Background(), Options{
		Chart: &chart.Chart{
			Title:  "Empty",
			Points: []funnel.DataPoint{{Label: "a", Value: 0}},
		},
		Logger: testLogger(),
	})
	if !apperrors.Is(err, apperrors.ErrCodeDegenerateInput) {
		t.Errorf("Execute() error = %v, want DEGENERATE_INPUT", err)
	}
}
