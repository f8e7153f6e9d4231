package render

import (
	"bytes"
	"fmt"
	"os/exec"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

const converterBinary = "rsvg-convert"

// ToPNG converts SVG bytes to PNG using rsvg-convert. The scale factor
// multiplies the SVG's intrinsic size; 2.0 produces a 2x resolution image
// for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convert(svg, "--format=png", fmt.Sprintf("--zoom=%g", scale))
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "--format=pdf")
}

func convert(svg []byte, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(converterBinary); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnsupported, err,
			"%s not found; install librsvg for PNG/PDF output", converterBinary)
	}

	cmd := exec.Command(converterBinary, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err,
			"%s failed: %s", converterBinary, stderr.String())
	}
	return out.Bytes(), nil
}
