package styles

import apperrors "github.com/funnelviz/funnelviz/pkg/errors"

// Names lists the selectable style names.
func Names() []string { return []string{"simple", "shaded"} }

// ByName resolves a style by its CLI/config name. The empty string selects
// the default.
func ByName(name string) (Style, error) {
	switch name {
	case "", "simple":
		return Simple{}, nil
	case "shaded":
		return Shaded{}, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidStyle, "unknown style: %s", name)
	}
}
