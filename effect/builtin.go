package effect

import (
	"github.com/cwbudde/algo-rack/param"
)

// unitFunc builds a unit reading its parameters from c.
type unitFunc func(ctx Context, c *Controls) (Unit, error)

func builtin(meta Metadata, fn unitFunc) Builder {
	return NewBuilder(meta, func(ctx Context, p param.Values) (Unit, *Controls, error) {
		c := NewControls(meta.Params, p)
		u, err := fn(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return u, c, nil
	})
}

func def(name string, v, lo, hi float32) param.Def {
	return param.NewDef(name, v, lo, hi)
}

func meta(name, desc string, cat Category, defs ...param.Def) Metadata {
	return Metadata{Name: name, Description: desc, Category: cat, Params: defs}
}

type builtinEntry struct {
	meta  Metadata
	build unitFunc
}

func builtinEffects() []builtinEntry {
	var out []builtinEntry
	out = append(out, utilityEffects()...)
	out = append(out, filterEffects()...)
	out = append(out, eqEffects()...)
	out = append(out, distortionEffects()...)
	out = append(out, dynamicsEffects()...)
	out = append(out, modulationEffects()...)
	out = append(out, delayEffects()...)
	out = append(out, reverbEffects()...)
	return out
}

var builtinAliases = []struct{ name, target string }{
	{"stereo_width", "stereo_widener"},
	{"width", "stereo_widener"},
	{"lowpass", "lpf"},
	{"highpass", "hpf"},
	{"bandpass", "bpf"},
	{"lowshelf", "low_shelf"},
	{"highshelf", "high_shelf"},
	{"eq3", "eq_3band"},
	{"peq", "parametric_eq"},
	{"tilt", "tilt_eq"},
	{"tape", "tape_saturation"},
	{"lo-fi", "lofi"},
	{"pingpong", "ping_pong"},
	{"room_reverb", "room"},
	{"hall_reverb", "hall"},
	{"plate_reverb", "plate"},
}

func registerBuiltins(r *Registry) {
	for _, e := range builtinEffects() {
		r.Register(e.meta.Name, builtin(e.meta, e.build))
	}
	for _, a := range builtinAliases {
		if b, ok := r.Get(a.target); ok {
			r.Register(a.name, &alias{name: a.name, target: b})
		}
	}
}

func mix(dry, wet, amount float32) float32 {
	return dry + amount*(wet-dry)
}
