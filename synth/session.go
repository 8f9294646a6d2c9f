package synth

import (
	"github.com/cwbudde/algo-rack/param"
)

// Session accumulates parameters for a single Resolve call.
//
//	unit, controls, err := reg.Synth("pad").Freq(220).Param("cutoff", 900).Build()
type Session struct {
	reg        *Registry
	name       string
	freq       float32
	sampleRate float32
	strict     bool
	params     param.Values
}

// Freq sets the base frequency in Hz.
func (s *Session) Freq(hz float32) *Session {
	s.freq = hz
	return s
}

// Note sets the base frequency from a MIDI note number.
func (s *Session) Note(note int) *Session {
	s.freq = MidiToFreq(note)
	return s
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

// Cutoff sets the filter cutoff parameter.
func (s *Session) Cutoff(hz float32) *Session {
	return s.Param(ParamCutoff, hz)
}

// Resonance sets the filter resonance parameter.
func (s *Session) Resonance(r float32) *Session {
	return s.Param(ParamResonance, r)
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
func (s *Session) Build() (Unit, *VoiceControls, error) {
	if s.strict {
		b, ok := s.reg.Get(s.name)
		if ok {
			if err := param.CheckKnown(s.name, b.Metadata().Params, s.params); err != nil {
				return nil, nil, err
			}
		}
	}
	sr := s.sampleRate
	if sr <= 0 {
		sr = s.reg.SampleRate()
	}
	return s.reg.ResolveContext(Context{SampleRate: sr}, s.name, s.freq, s.params.Clone())
}
