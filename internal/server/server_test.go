package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/store"
)

const testChartJSON = `{
	"title": "Checkout",
	"points": [
		{"label": "visit", "value": 1000},
		{"label": "cart", "value": 300},
		{"label": "buy", "value": 80}
	]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(context.Background(), Config{
		Port:         8080,
		CacheBackend: "null",
		StoreBackend: "memory",
	}, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", w.Code)
	}
}

func TestRenderInline(t *testing.T) {
	s := newTestServer(t)

	body := fmt.Sprintf(`{"chart": %s, "formats": ["svg", "json"]}`, testChartJSON)
	w := doRequest(t, s, http.MethodPost, "/api/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/render = %d, body %s", w.Code, w.Body.String())
	}

	var resp RenderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Sections != 3 {
		t.Errorf("Sections = %d, want 3", resp.Sections)
	}
	if resp.ChartHash == "" || resp.GeometryHash == "" {
		t.Error("hashes not populated")
	}
	if !bytes.Contains(resp.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if len(resp.Artifacts["json"]) == 0 {
		t.Error("json artifact missing")
	}
}

func TestRenderInlineRaw(t *testing.T) {
	s := newTestServer(t)

	body := fmt.Sprintf(`{"chart": %s, "formats": ["svg"]}`, testChartJSON)
	w := doRequest(t, s, http.MethodPost, "/api/render?raw=1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/render?raw=1 = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Error("response is not an SVG document")
	}
}

func TestRenderRejectsInputPath(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/render", `{"input": "/etc/passwd"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/render = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", e.Code)
	}
}

func TestRenderDegenerateChart(t *testing.T) {
	s := newTestServer(t)

	body := `{"chart": {"title": "Empty", "points": [{"label": "a", "value": 0}]}}`
	w := doRequest(t, s, http.MethodPost, "/api/render", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/render = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != "DEGENERATE_INPUT" {
		t.Errorf("error code = %q, want DEGENERATE_INPUT", e.Code)
	}
}

func TestChartCRUD(t *testing.T) {
	s := newTestServer(t)

	// Create
	w := doRequest(t, s, http.MethodPost, "/api/charts/", testChartJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/charts = %d, body %s", w.Code, w.Body.String())
	}
	var rec store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("created record has no ID")
	}

	// Get
	w = doRequest(t, s, http.MethodGet, "/api/charts/"+rec.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET chart = %d", w.Code)
	}

	// List
	w = doRequest(t, s, http.MethodGet, "/api/charts/", "")
	var records []store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("List = %d records, want 1", len(records))
	}

	// Update
	renamed := strings.Replace(testChartJSON, "Checkout", "Renamed", 1)
	w = doRequest(t, s, http.MethodPut, "/api/charts/"+rec.ID, renamed)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT chart = %d", w.Code)
	}
	var updated store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Chart.Title != "Renamed" {
		t.Errorf("updated title = %q, want Renamed", updated.Chart.Title)
	}

	// Delete
	w = doRequest(t, s, http.MethodDelete, "/api/charts/"+rec.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE chart = %d, want 204", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/charts/"+rec.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET deleted chart = %d, want 404", w.Code)
	}
	if e := decodeError(t, w); e.Code != "CHART_NOT_FOUND" {
		t.Errorf("error code = %q, want CHART_NOT_FOUND", e.Code)
	}
}

func TestCreateChartInvalid(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/charts/", `{"title": ""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST invalid chart = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != "INVALID_CHART" {
		t.Errorf("error code = %q, want INVALID_CHART", e.Code)
	}
}

func createChart(t *testing.T, s *Server) string {
	t.Helper()
	w := doRequest(t, s, http.MethodPost, "/api/charts/", testChartJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/charts = %d", w.Code)
	}
	var rec store.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	return rec.ID
}

func TestRenderStoredChart(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)

	w := doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=svg&style=shaded", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET render = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(w.Body.String(), "linearGradient") {
		t.Error("shaded style not applied")
	}

	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=gif", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET render gif = %d, want 400", w.Code)
	}
}

func TestRenderStoredChartResponseCache(t *testing.T) {
	s, err := New(context.Background(), Config{
		Port:         8080,
		CacheBackend: "file",
		CacheDir:     t.TempDir(),
		StoreBackend: "memory",
	}, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	id := createChart(t, s)

	w := doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=svg", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET render = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first render X-Cache = %q, want MISS", got)
	}
	first := w.Body.String()

	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=svg", "")
	if got := w.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second render X-Cache = %q, want HIT", got)
	}
	if w.Body.String() != first {
		t.Error("cached render differs from the original artifact")
	}

	// refresh bypasses the lookup but refills the entry.
	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=svg&refresh=1", "")
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("refresh render X-Cache = %q, want MISS", got)
	}

	// Updating the chart changes the key, so the stale artifact is not
	// served inside the TTL.
	renamed := strings.Replace(testChartJSON, "Checkout", "Renamed", 1)
	w = doRequest(t, s, http.MethodPut, "/api/charts/"+id, renamed)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT chart = %d", w.Code)
	}
	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/render?format=svg", "")
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("post-update render X-Cache = %q, want MISS", got)
	}
	if !strings.Contains(w.Body.String(), "Renamed") {
		t.Error("post-update render missing new title")
	}
}

func TestHitTestEndpoint(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)

	// A point near the top center falls inside the widest section.
	w := doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/hit?x=400&y=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET hit = %d, body %s", w.Code, w.Body.String())
	}
	var resp HitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Section != 0 {
		t.Errorf("Section = %d, want 0", resp.Section)
	}
	if resp.Label != "visit" {
		t.Errorf("Label = %q, want visit", resp.Label)
	}

	// A point above the frame misses every section. The miss body omits
	// the label field, so decode into a fresh value.
	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/hit?x=400&y=-10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET hit miss = %d", w.Code)
	}
	resp = HitResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Section != funnel.NoSection {
		t.Errorf("Section = %d, want %d", resp.Section, funnel.NoSection)
	}
	if resp.Label != "" {
		t.Errorf("Label = %q, want empty", resp.Label)
	}
}

func TestHitTestValidation(t *testing.T) {
	s := newTestServer(t)
	id := createChart(t, s)

	w := doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/hit?y=10", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET hit without x = %d, want 400", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/charts/"+id+"/hit?x=abc&y=10", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET hit with bad x = %d, want 400", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/api/charts/missing/hit?x=10&y=10", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("GET hit unknown chart = %d, want 404", w.Code)
	}
}
