// Package chart defines the chart document: the user-facing input a funnel
// is built from. A chart carries a title, display options, and the raw data
// points; [Chart.Series] turns it into the sorted series the solver
// consumes.
//
// Charts are read from JSON, TOML, or YAML files (see [ReadFile]) and
// written back as JSON for storage and the HTTP API.
package chart

import (
	"strings"

	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/palette"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Chart is a funnel chart document.
type Chart struct {
	Title   string             `json:"title" toml:"title" yaml:"title"`
	Palette string             `json:"palette,omitempty" toml:"palette" yaml:"palette"`
	Points  []funnel.DataPoint `json:"points" toml:"points" yaml:"points"`
}

// Validate checks the chart for structural problems: a missing or oversized
// title, an unknown palette, and invalid point labels.
func (c *Chart) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return apperrors.New(apperrors.ErrCodeInvalidChart, "chart title is required")
	}
	if err := apperrors.ValidateLabel(c.Title); err != nil {
		return err
	}
	if c.Palette != "" {
		if _, err := palette.New(c.Palette, 1); err != nil {
			return err
		}
	}
	if len(c.Points) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidChart, "chart has no data points")
	}
	for _, p := range c.Points {
		if err := apperrors.ValidateLabel(p.Label); err != nil {
			return err
		}
	}
	return nil
}

// PaletteName returns the configured palette, or the default.
func (c *Chart) PaletteName() string {
	if c.Palette == "" {
		return palette.Default
	}
	return c.Palette
}

// Series builds the sorted series for this chart's points.
func (c *Chart) Series() (*funnel.Series, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return funnel.NewSeries(c.Points)
}
