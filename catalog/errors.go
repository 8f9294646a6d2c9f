package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is matched by every UnknownPresetError.
var ErrUnknownPreset = errors.New("unknown preset")

// UnknownPresetError reports a registry lookup that found no entry.
type UnknownPresetError struct {
	Kind string
	Name string
}

func (e *UnknownPresetError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("unknown preset %q", e.Name)
	}
	return fmt.Sprintf("unknown %s preset %q", e.Kind, e.Name)
}

// Is reports whether target is ErrUnknownPreset.
func (e *UnknownPresetError) Is(target error) bool {
	return target == ErrUnknownPreset
}

// IsUnknownPreset reports whether err is or wraps an UnknownPresetError.
func IsUnknownPreset(err error) bool {
	return errors.Is(err, ErrUnknownPreset)
}
