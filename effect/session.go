package effect

import (
	"github.com/cwbudde/algo-rack/param"
)

// Session accumulates parameters for a single Resolve call.
//
//	unit, controls, err := reg.Effect("delay").Param("time", 0.3).Build()
type Session struct {
	reg        *Registry
	name       string
	sampleRate float32
	strict     bool
	params     param.Values
}

// Param sets one parameter.
func (s *Session) Param(name string, v float32) *Session {
	s.params[name] = v
	return s
}

// Params merges a parameter mapping.
func (s *Session) Params(values param.Values) *Session {
	for k, v := range values {
		s.params[k] = v
	}
	return s
}

// SampleRate overrides the registry sample rate for this build.
func (s *Session) SampleRate(sr float32) *Session {
	s.sampleRate = sr
	return s
}

// Strict makes Build reject parameters the preset does not declare.
func (s *Session) Strict() *Session {
	s.strict = true
	return s
}

// Build resolves the preset once with the accumulated settings.
func (s *Session) Build() (Unit, *Controls, error) {
	if s.strict {
		if b, ok := s.reg.Get(s.name); ok {
			if err := param.CheckKnown(s.name, b.Metadata().Params, s.params); err != nil {
				return nil, nil, err
			}
		}
	}
	sr := s.sampleRate
	if sr <= 0 {
		sr = s.reg.SampleRate()
	}
	return s.reg.ResolveContext(Context{SampleRate: sr}, s.name, s.params.Clone())
}
