package param

import "sort"

// Values is a parameter mapping passed to builders.
type Values map[string]float32

// Get returns the value for name, or def when absent.
func (v Values) Get(name string, def float32) float32 {
	if x, ok := v[name]; ok {
		return x
	}
	return def
}

// Clone returns an independent copy. Clone of nil is an empty map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Keys returns the names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown returns the names in v that no def declares, sorted.
func (v Values) Unknown(defs []Def) []string {
	var out []string
	for _, k := range v.Keys() {
		if _, ok := Find(defs, k); !ok {
			out = append(out, k)
		}
	}
	return out
}

// Resolve returns the value of every def: the supplied value clamped to the
// def's range, or the default. Names not in defs are dropped.
func (v Values) Resolve(defs []Def) Values {
	out := make(Values, len(defs))
	for _, d := range defs {
		out[d.Name] = d.Clamp(v.Get(d.Name, d.Default))
	}
	return out
}

// Set is a collection of shared parameters keyed by name.
type Set map[string]*Shared

// NewSet creates one shared parameter per def, initialized from values.
func NewSet(defs []Def, values Values) Set {
	resolved := values.Resolve(defs)
	s := make(Set, len(defs))
	for _, d := range defs {
		s[d.Name] = NewShared(resolved[d.Name])
	}
	return s
}

// Snapshot reads every parameter.
func (s Set) Snapshot() Values {
	out := make(Values, len(s))
	for k, p := range s {
		out[k] = p.Load()
	}
	return out
}
