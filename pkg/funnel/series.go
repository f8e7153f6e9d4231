package funnel

import (
	"slices"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// DataPoint is a single labeled value in a funnel series.
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series holds the data points of one funnel in both the caller's original
// order and the descending-by-value order the layout consumes.
//
// A Series is immutable after construction and safe for concurrent reads.
type Series struct {
	original []DataPoint
	sorted   []DataPoint
	total    float64
}

// NewSeries builds a series from user-ordered points.
//
// Points are re-ordered descending by value for layout; the original order
// is preserved and recoverable via Original. The sort is stable so equal
// values keep their input order.
//
// Returns a DEGENERATE_INPUT error when the total of all values is zero or
// negative, since the layout is mathematically undefined for such data.
func NewSeries(points []DataPoint) (*Series, error) {
	if len(points) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidChart, "series requires at least one data point")
	}

	var total float64
	for _, p := range points {
		total += p.Value
	}
	if total <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeDegenerateInput,
			"total of all values must be positive, got %g", total)
	}

	original := slices.Clone(points)
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b DataPoint) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})

	return &Series{original: original, sorted: sorted, total: total}, nil
}

// Len returns the number of data points.
func (s *Series) Len() int { return len(s.sorted) }

// Total returns the sum of all values.
func (s *Series) Total() float64 { return s.total }

// Points returns the data points in descending value order.
// The returned slice is a copy.
func (s *Series) Points() []DataPoint { return slices.Clone(s.sorted) }

// Original returns the data points in the caller's input order.
// The returned slice is a copy.
func (s *Series) Original() []DataPoint { return slices.Clone(s.original) }

// Point returns the data point at the given sorted index.
func (s *Series) Point(i int) DataPoint { return s.sorted[i] }

// Weights returns value/total per point in descending value order.
// The weights sum to 1.0 within floating tolerance.
func (s *Series) Weights() []float64 {
	weights := make([]float64, len(s.sorted))
	for i, p := range s.sorted {
		weights[i] = p.Value / s.total
	}
	return weights
}
