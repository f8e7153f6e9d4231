package chart

import (
	"encoding/json"
	"io"
	"os"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// WriteJSON encodes the chart as indented JSON and writes it to w. The
// output round-trips through [ReadJSON].
func WriteJSON(c *Chart, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode chart")
	}
	return nil
}

// ExportJSON writes the chart to a JSON file at path.
func ExportJSON(c *Chart, path string) error {
	if err := apperrors.ValidateDataPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(c, f)
}
