package param

import (
	"errors"
	"fmt"
)

// ErrUnknownParameter is matched by every UnknownParameterError.
var ErrUnknownParameter = errors.New("unknown parameter")

// UnknownParameterError is returned by strict call sites when a parameter
// name is not declared by the preset.
type UnknownParameterError struct {
	Preset string
	Name   string
}

func (e *UnknownParameterError) Error() string {
	if e.Preset == "" {
		return fmt.Sprintf("unknown parameter %q", e.Name)
	}
	return fmt.Sprintf("unknown parameter %q for %q", e.Name, e.Preset)
}

// Is reports whether target is ErrUnknownParameter.
func (e *UnknownParameterError) Is(target error) bool {
	return target == ErrUnknownParameter
}

// CheckKnown returns an UnknownParameterError for the first name in values
// (in sorted order) that defs does not declare.
func CheckKnown(preset string, defs []Def, values Values) error {
	if unknown := values.Unknown(defs); len(unknown) > 0 {
		return &UnknownParameterError{Preset: preset, Name: unknown[0]}
	}
	return nil
}
