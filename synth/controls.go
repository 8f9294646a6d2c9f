package synth

import (
	"github.com/cwbudde/algo-rack/param"
)

// Well-known parameter names that map onto VoiceControls channels.
const (
	ParamAmp       = "amp"
	ParamCutoff    = "cutoff"
	ParamResonance = "res"
	ParamRelease   = "release"
)

// GateOpen is the gate serial a freshly built unit starts with.
const GateOpen = 1

// DefaultRelease is the release time used when a preset declares none.
const DefaultRelease = 0.2

// VoiceControls is the live control surface of one synth instance.
//
// Freq, Amp, PitchBend, Pressure, Gate and Release are always present.
// Cutoff and Resonance are nil when the preset has no filter stage. Params
// holds one entry per declared parameter; Amp, Release, Cutoff and Resonance
// share the Params entry of the same name when it is declared.
//
// Gate is positive while a note is held. A new positive value retriggers the
// envelope, 0 releases it. Controls start with the gate open at GateOpen, so
// a unit resolved on its own sounds from its first Tick; Poly closes it.
type VoiceControls struct {
	Freq      *param.Shared
	Amp       *param.Shared
	PitchBend *param.Shared
	Pressure  *param.Shared
	Gate      *param.Shared
	Release   *param.Shared
	Cutoff    *param.Shared
	Resonance *param.Shared

	Params param.Set
	defs   []param.Def
}

// NewVoiceControls creates controls for a preset declaring defs, initialized
// from values. Undeclared values are ignored.
func NewVoiceControls(freq float32, defs []param.Def, values param.Values) *VoiceControls {
	set := param.NewSet(defs, values)
	c := &VoiceControls{
		Freq:      param.NewShared(freq),
		PitchBend: param.NewShared(1),
		Pressure:  param.NewShared(0),
		Gate:      param.NewShared(GateOpen),
		Params:    set,
		defs:      defs,
	}
	c.Amp = set[ParamAmp]
	if c.Amp == nil {
		c.Amp = param.NewShared(1)
	}
	c.Release = set[ParamRelease]
	if c.Release == nil {
		c.Release = param.NewShared(DefaultRelease)
	}
	c.Cutoff = set[ParamCutoff]
	c.Resonance = set[ParamResonance]
	return c
}

// Set writes a declared parameter, clamped to its range. It returns false for
// unknown names.
func (c *VoiceControls) Set(name string, v float32) bool {
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
func (c *VoiceControls) SetStrict(name string, v float32) error {
	if !c.Set(name, v) {
		return &param.UnknownParameterError{Name: name}
	}
	return nil
}

// Get returns a declared parameter value.
func (c *VoiceControls) Get(name string) (float32, bool) {
	p, ok := c.Params[name]
	if !ok {
		return 0, false
	}
	return p.Load(), true
}

// Names returns the declared parameter names in declaration order.
func (c *VoiceControls) Names() []string {
	out := make([]string, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.Name
	}
	return out
}
