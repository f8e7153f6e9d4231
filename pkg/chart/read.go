package chart

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// ReadJSON decodes a chart from JSON. The input must be an object with a
// "title" and a "points" array:
//
//	{
//	  "title": "Checkout",
//	  "points": [{"label": "visit", "value": 1000}, {"label": "buy", "value": 80}]
//	}
//
// The decoded chart is validated before it is returned. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*Chart, error) {
	var c Chart
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode JSON chart")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadTOML decodes a chart from TOML. Points use array-of-tables syntax:
//
//	title = "Checkout"
//
//	[[points]]
//	label = "visit"
//	value = 1000
func ReadTOML(r io.Reader) (*Chart, error) {
	var c Chart
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode TOML chart")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadYAML decodes a chart from YAML.
func ReadYAML(r io.Reader) (*Chart, error) {
	var c Chart
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode YAML chart")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadFile reads a chart file, picking the decoder from the extension:
// .json, .toml, .yaml, or .yml.
func ReadFile(path string) (*Chart, error) {
	if err := apperrors.ValidateDataPath(path); err != nil {
		return nil, err
	}

	var decode func(io.Reader) (*Chart, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decode = ReadJSON
	case ".toml":
		decode = ReadTOML
	case ".yaml", ".yml":
		decode = ReadYAML
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "unsupported chart format: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	return decode(f)
}
