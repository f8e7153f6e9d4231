package store

import (
	"context"
	"testing"

	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

func testChart(title string) chart.Chart {
	return chart.Chart{
		Title: title,
		Points: []funnel.DataPoint{
			{Label: "visit", Value: 1000},
			{Label: "buy", Value: 80},
		},
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec, err := s.Create(ctx, testChart("Checkout"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Create() returned empty ID")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Chart.Title != "Checkout" {
		t.Errorf("Get().Chart.Title = %q, want Checkout", got.Chart.Title)
	}

	updated, err := s.Update(ctx, rec.ID, testChart("Renamed"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Chart.Title != "Renamed" {
		t.Errorf("Update().Chart.Title = %q, want Renamed", updated.Chart.Title)
	}
	if updated.CreatedAt != rec.CreatedAt {
		t.Error("Update() changed CreatedAt")
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !apperrors.Is(err, apperrors.ErrCodeChartNotFound) {
		t.Errorf("Get() after delete error = %v, want CHART_NOT_FOUND", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, testChart(title)); err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List() = %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Error("List() not sorted newest first")
		}
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "nope"); !apperrors.Is(err, apperrors.ErrCodeChartNotFound) {
		t.Errorf("Get(nope) error = %v, want CHART_NOT_FOUND", err)
	}
	if _, err := s.Update(ctx, "nope", testChart("x")); !apperrors.Is(err, apperrors.ErrCodeChartNotFound) {
		t.Errorf("Update(nope) error = %v, want CHART_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "nope"); !apperrors.Is(err, apperrors.ErrCodeChartNotFound) {
		t.Errorf("Delete(nope) error = %v, want CHART_NOT_FOUND", err)
	}
}

func TestMemoryStoreCreateInvalidChart(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, chart.Chart{Title: ""})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidChart) {
		t.Errorf("Create(invalid) error = %v, want INVALID_CHART", err)
	}
}
