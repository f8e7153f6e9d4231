package funnel

import (
	"math"
	"testing"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

func TestNewSeriesSortsDescending(t *testing.T) {
	s, err := NewSeries([]DataPoint{
		{Label: "A", Value: 10},
		{Label: "B", Value: 30},
		{Label: "C", Value: 20},
	})
	if err != nil {
		t.Fatalf("NewSeries() error = %v", err)
	}

	want := []DataPoint{
		{Label: "B", Value: 30},
		{Label: "C", Value: 20},
		{Label: "A", Value: 10},
	}
	got := s.Points()
	if len(got) != len(want) {
		t.Fatalf("Points() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Points()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewSeriesPreservesOriginalOrder(t *testing.T) {
	input := []DataPoint{
		{Label: "A", Value: 10},
		{Label: "B", Value: 30},
		{Label: "C", Value: 20},
	}
	s, err := NewSeries(input)
	if err != nil {
		t.Fatalf("NewSeries() error = %v", err)
	}

	got := s.Original()
	for i := range input {
		if got[i] != input[i] {
			t.Errorf("Original()[%d] = %v, want %v", i, got[i], input[i])
		}
	}
}

func TestNewSeriesStableForEqualValues(t *testing.T) {
	s, err := NewSeries([]DataPoint{
		{Label: "first", Value: 5},
		{Label: "second", Value: 5},
	})
	if err != nil {
		t.Fatalf("NewSeries() error = %v", err)
	}
	if s.Point(0).Label != "first" || s.Point(1).Label != "second" {
		t.Errorf("equal values reordered: %v, %v", s.Point(0), s.Point(1))
	}
}

func TestNewSeriesDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		points []DataPoint
	}{
		{name: "all zero", points: []DataPoint{{Label: "a"}, {Label: "b"}}},
		{name: "negative total", points: []DataPoint{{Label: "a", Value: -3}, {Label: "b", Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeries(tt.points)
			if !apperrors.Is(err, apperrors.ErrCodeDegenerateInput) {
				t.Errorf("NewSeries() error = %v, want DEGENERATE_INPUT", err)
			}
		})
	}
}

func TestNewSeriesEmpty(t *testing.T) {
	_, err := NewSeries(nil)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidChart) {
		t.Errorf("NewSeries(nil) error = %v, want INVALID_CHART", err)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	s, err := NewSeries([]DataPoint{
		{Label: "a", Value: 7},
		{Label: "b", Value: 13},
		{Label: "c", Value: 1.5},
	})
	if err != nil {
		t.Fatalf("NewSeries() error = %v", err)
	}

	var sum float64
	for _, w := range s.Weights() {
		if w <= 0 {
			t.Errorf("weight = %v, want positive", w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("sum(weights) = %v, want 1.0", sum)
	}
}
