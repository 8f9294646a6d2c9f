package synth

import (
	"fmt"

	"github.com/cwbudde/algo-rack/param"
)

// Category groups synth presets for browsing.
type Category int

const (
	Basic Category = iota
	Analog
	Digital
	Physical
	Noise
)

var categoryNames = [...]string{"basic", "analog", "digital", "physical", "noise"}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Basic, Analog, Digital, Physical, Noise}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("invalid synth category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	for i, n := range categoryNames {
		if n == string(b) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown synth category %q", string(b))
}

// Metadata describes a registered synth preset.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    Category    `json:"category"`
	Params      []param.Def `json:"parameters"`
}

// Param returns the parameter definition named name.
func (m Metadata) Param(name string) (param.Def, bool) {
	return param.Find(m.Params, name)
}

// HasFilter reports whether the preset declares a filter cutoff.
func (m Metadata) HasFilter() bool {
	_, ok := m.Param(ParamCutoff)
	return ok
}

func (m Metadata) clone() Metadata {
	out := m
	out.Params = append([]param.Def(nil), m.Params...)
	return out
}
