package effect

import (
	"github.com/cwbudde/algo-rack/param"
)

// Controls is the live parameter surface of one effect instance. It holds
// one shared value per declared parameter and is safe to write from any
// goroutine while the unit processes audio.
type Controls struct {
	Params param.Set
	defs   []param.Def
}

// NewControls creates controls for a preset declaring defs, initialized from
// values clamped to each def's range. Undeclared values are ignored.
func NewControls(defs []param.Def, values param.Values) *Controls {
	return &Controls{
		Params: param.NewSet(defs, values),
		defs:   append([]param.Def(nil), defs...),
	}
}

// Set writes a declared parameter, clamped to its range. It returns false for
// unknown names.
func (c *Controls) Set(name string, v float32) bool {
	p, ok := c.Params[name]
	if !ok {
		return false
	}
	if d, ok := param.Find(c.defs, name); ok {
		v = d.Clamp(v)
	}
	p.Store(v)
	return true
}

// SetStrict is Set returning an *param.UnknownParameterError for unknown names.
func (c *Controls) SetStrict(name string, v float32) error {
	if !c.Set(name, v) {
		return &param.UnknownParameterError{Name: name}
	}
	return nil
}

// Get returns a declared parameter value.
func (c *Controls) Get(name string) (float32, bool) {
	p, ok := c.Params[name]
	if !ok {
		return 0, false
	}
	return p.Load(), true
}

// Param returns the shared value of name, or nil when it is not declared.
func (c *Controls) Param(name string) *param.Shared {
	return c.Params[name]
}

// Defs returns the declared parameter specs.
func (c *Controls) Defs() []param.Def {
	return append([]param.Def(nil), c.defs...)
}

// Names returns the declared parameter names in declaration order.
func (c *Controls) Names() []string {
	out := make([]string, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.Name
	}
	return out
}

// Snapshot reads every parameter.
func (c *Controls) Snapshot() param.Values {
	return c.Params.Snapshot()
}
