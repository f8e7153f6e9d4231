package errors

import (
	"strings"
	"unicode"
)

// ValidateLabel validates a data point label for safety and correctness.
// Labels end up in SVG text nodes, JSON documents, and cache keys, so the
// rules are intentionally conservative:
//   - No empty labels
//   - No control characters
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidChart, "label cannot be empty")
	}

	if len(label) > 256 {
		return New(ErrCodeInvalidChart, "label too long (max 256 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidChart, "label contains invalid control characters")
		}
	}

	if strings.Contains(label, "\x00") {
		return New(ErrCodeInvalidChart, "label contains null bytes")
	}

	return nil
}

// ValidateDataPath validates a chart data file path for safety.
// It prevents path traversal and ensures reasonable path length.
func ValidateDataPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "path too long (max 500 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain parent directory references")
	}

	return nil
}
