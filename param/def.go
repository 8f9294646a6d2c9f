package param

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Def describes one tweakable parameter of a preset.
type Def struct {
	Name    string  `json:"name" yaml:"name"`
	Default float32 `json:"default" yaml:"default"`
	Min     float32 `json:"min" yaml:"min"`
	Max     float32 `json:"max" yaml:"max"`
}

// NewDef creates a parameter definition.
func NewDef(name string, def, min, max float32) Def {
	return Def{Name: name, Default: def, Min: min, Max: max}
}

// Clamp limits v to [Min, Max]. A Def with Min > Max does not clamp.
func (d Def) Clamp(v float32) float32 {
	if d.Min > d.Max {
		return v
	}
	return float32(dspcore.Clamp(float64(v), float64(d.Min), float64(d.Max)))
}

// Normalize maps v from [Min, Max] to [0, 1].
func (d Def) Normalize(v float32) float32 {
	span := d.Max - d.Min
	if span <= 0 {
		return 0
	}
	return (d.Clamp(v) - d.Min) / span
}

// Denormalize maps n from [0, 1] to [Min, Max].
func (d Def) Denormalize(n float32) float32 {
	if n < 0 {
		n = 0
	} else if n > 1 {
		n = 1
	}
	return d.Min + n*(d.Max-d.Min)
}

// Find returns the definition named name.
func Find(defs []Def, name string) (Def, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}
