package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/observability"
	"github.com/funnelviz/funnelviz/pkg/pipeline"
	"github.com/funnelviz/funnelviz/pkg/store"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// registerRoutes mounts the API endpoints on the given router.
func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)

		r.Route("/charts", func(r chi.Router) {
			r.Post("/", s.handleCreateChart)
			r.Get("/", s.handleListCharts)
			r.Get("/{id}", s.handleGetChart)
			r.Put("/{id}", s.handleUpdateChart)
			r.Delete("/{id}", s.handleDeleteChart)
			r.Get("/{id}/render", s.handleRenderChart)
			r.Get("/{id}/hit", s.handleHitTest)
		})
	})
}

// RenderResponse is the JSON body returned by POST /api/render. Artifact
// bytes are base64-encoded by the JSON encoder.
type RenderResponse struct {
	ChartHash    string            `json:"chart_hash"`
	GeometryHash string            `json:"geometry_hash"`
	Sections     int               `json:"sections"`
	Warnings     int               `json:"warnings"`
	Artifacts    map[string][]byte `json:"artifacts"`
	Cache        CacheResponse     `json:"cache"`
}

// CacheResponse reports which pipeline stages were served from cache.
type CacheResponse struct {
	SolveHit  bool `json:"solve_hit"`
	RenderHit bool `json:"render_hit"`
}

// HitResponse is the JSON body returned by the hit test endpoint. Section
// is -1 when no section contains the point.
type HitResponse struct {
	Section int    `json:"section"`
	Label   string `json:"label,omitempty"`
}

// handleRender runs the full pipeline for a chart posted inline.
// The request body is a pipeline.Options document; the input path field is
// rejected because the server does not read charts from its own filesystem.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}
	if opts.Input != "" {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput,
			"input path is not accepted over HTTP; post the chart inline"))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// A single requested format can be returned raw for direct embedding.
	if r.URL.Query().Get("raw") != "" && len(opts.Formats) == 1 {
		s.writeArtifact(w, opts.Formats[0], result.Artifacts[opts.Formats[0]])
		return
	}

	s.writeJSON(w, http.StatusOK, renderResponse(result))
}

func renderResponse(result *pipeline.Result) RenderResponse {
	return RenderResponse{
		ChartHash:    result.ChartHash,
		GeometryHash: result.GeometryHash,
		Sections:     result.Geometry.SectionCount(),
		Warnings:     result.Stats.Warnings,
		Artifacts:    result.Artifacts,
		Cache: CacheResponse{
			SolveHit:  result.CacheInfo.SolveHit,
			RenderHit: result.CacheInfo.RenderHit,
		},
	}
}

// handleCreateChart stores a new chart document.
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var c chart.Chart
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	rec, err := s.charts.Create(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

// handleListCharts returns all stored charts, newest first.
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	records, err := s.charts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	rec, err := s.charts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateChart(w http.ResponseWriter, r *http.Request) {
	var c chart.Chart
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	rec, err := s.charts.Update(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.charts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRenderChart renders a stored chart and returns the artifact raw,
// so a chart URL can be embedded directly in an <img> or <object> tag.
// Layout and render options come from query parameters. Responses are
// cached under a key that includes the record's update time, so an updated
// chart never serves its old artifact; refresh=1 bypasses the lookup.
func (s *Server) handleRenderChart(w http.ResponseWriter, r *http.Request) {
	rec, err := s.charts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Chart = &rec.Chart

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	key := s.renderKey(rec, r)
	if !opts.Refresh {
		if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
			w.Header().Set("X-Cache", "HIT")
			s.writeArtifact(w, format, data)
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := result.Artifacts[format]
	if err := s.cache.Set(r.Context(), key, data, cache.TTLHTTP); err != nil {
		s.logger.Warn("caching rendered chart", "error", err)
	}
	w.Header().Set("X-Cache", "MISS")
	s.writeArtifact(w, format, data)
}

// renderKey identifies a stored chart render by record identity, update
// time, and the render query. The refresh parameter is excluded so a
// bypassed request refills the same entry it skipped.
func (s *Server) renderKey(rec *store.Record, r *http.Request) string {
	q := r.URL.Query()
	q.Del("refresh")
	return s.keyer.HTTPKey("chart-render",
		rec.ID+"@"+rec.UpdatedAt.UTC().Format(time.RFC3339Nano)+"?"+q.Encode())
}

// handleHitTest resolves a pointer position against a stored chart's solved
// geometry. The frame the pointer coordinates refer to must be passed in
// width and height when it differs from the defaults.
func (s *Server) handleHitTest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.charts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	x, err := queryFloat(r, "x")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Chart = &rec.Chart

	c, series, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	chartHash := ""
	if data, err := json.Marshal(c); err == nil {
		chartHash = cache.Hash(data)
	}

	g, err := s.runner.Solve(r.Context(), chartHash, series, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	idx, err := g.HitTest(funnel.Point{X: x, Y: y})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := HitResponse{Section: idx}
	if idx != funnel.NoSection {
		resp.Label = series.Points()[idx].Label
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// optionsFromQuery builds pipeline options from layout and render query
// parameters. Absent parameters keep their pipeline defaults.
func optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Style:   q.Get("style"),
		Palette: q.Get("palette"),
		Legend:  q.Get("legend"),
		Refresh: q.Get("refresh") != "",
	}

	for name, dst := range map[string]*float64{
		"width":          &opts.Width,
		"height":         &opts.Height,
		"width_ratio":    &opts.WidthRatio,
		"section_margin": &opts.SectionMargin,
		"scale":          &opts.Scale,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
		}
		*dst = f
	}

	return opts, nil
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "%s is required", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
	}
	return f, nil
}

// contentTypes maps output formats to their Content-Type header.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) writeArtifact(w http.ResponseWriter, format string, data []byte) {
	ct := contentTypes[format]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	status := statusForCode(apperrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(apperrors.GetCode(err)),
		Message: apperrors.UserMessage(err),
	}})
}

// statusForCode maps application error codes to HTTP status codes.
// Unknown codes are treated as internal errors.
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeChartNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidChart, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidStyle, apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeInvalidPath,
		apperrors.ErrCodeDegenerateInput, apperrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case apperrors.ErrCodePrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
