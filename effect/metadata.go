package effect

import (
	"fmt"

	"github.com/cwbudde/algo-rack/param"
)

// Category groups effect presets for browsing.
type Category int

const (
	Time Category = iota
	Modulation
	Filter
	Dynamics
	Distortion
	Spatial
	Other
)

var categoryNames = [...]string{"time", "modulation", "filter", "dynamics", "distortion", "spatial", "other"}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Time, Modulation, Filter, Dynamics, Distortion, Spatial, Other}
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
		return nil, fmt.Errorf("invalid effect category %d", int(c))
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
	return fmt.Errorf("unknown effect category %q", string(b))
}

// Metadata describes a registered effect preset.
type Metadata struct {
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       Category    `json:"category"`
	Params         []param.Def `json:"parameters"`
	LatencySamples int         `json:"latency_samples"`
}

// Param returns the parameter definition named name.
func (m Metadata) Param(name string) (param.Def, bool) {
	return param.Find(m.Params, name)
}

func (m Metadata) clone() Metadata {
	out := m
	out.Params = append([]param.Def(nil), m.Params...)
	return out
}
