package preset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-rack/catalog"
	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
	"github.com/cwbudde/algo-rack/synth"
)

// Envelope is the serializable form of an ADSR configuration.
type Envelope struct {
	Attack  float32 `json:"attack" yaml:"attack"`
	Decay   float32 `json:"decay" yaml:"decay"`
	Sustain float32 `json:"sustain" yaml:"sustain"`
	Release float32 `json:"release" yaml:"release"`
}

// NewEnvelope converts an ADSR configuration.
func NewEnvelope(cfg dsp.ADSRConfig) *Envelope {
	return &Envelope{Attack: cfg.Attack, Decay: cfg.Decay, Sustain: cfg.Sustain, Release: cfg.Release}
}

// Config returns the envelope as an ADSR configuration.
func (e Envelope) Config() dsp.ADSRConfig {
	return dsp.ADSRConfig{Attack: e.Attack, Decay: e.Decay, Sustain: e.Sustain, Release: e.Release}
}

func (e Envelope) validate() error {
	if e.Attack < 0 || e.Decay < 0 {
		return fmt.Errorf("envelope attack and decay must be >= 0")
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("envelope.sustain must be in [0,1]")
	}
	if e.Release <= 0 {
		return fmt.Errorf("envelope.release must be > 0")
	}
	return nil
}

// SynthPreset is a named configuration of a registered synth.
type SynthPreset struct {
	ID          uuid.UUID    `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Synth       string       `json:"synth" yaml:"synth"`
	Author      string       `json:"author,omitempty" yaml:"author,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string     `json:"tags" yaml:"tags"`
	Parameters  param.Values `json:"parameters" yaml:"parameters"`
	Envelope    *Envelope    `json:"envelope,omitempty" yaml:"envelope,omitempty"`
	// Freq is the pitch of one-shot sounds in Hz; 0 means the played note.
	Freq float32 `json:"freq,omitempty" yaml:"freq,omitempty"`
}

// NewSynthPreset creates a preset of synthName with a fresh id.
func NewSynthPreset(name, synthName string) *SynthPreset {
	return &SynthPreset{ID: uuid.New(), Name: name, Synth: synthName, Parameters: param.Values{}}
}

// Param sets one parameter.
func (p *SynthPreset) Param(name string, v float32) *SynthPreset {
	if p.Parameters == nil {
		p.Parameters = param.Values{}
	}
	p.Parameters[name] = v
	return p
}

// WithEnvelope sets the amplitude envelope.
func (p *SynthPreset) WithEnvelope(cfg dsp.ADSRConfig) *SynthPreset {
	p.Envelope = NewEnvelope(cfg)
	return p
}

// Describe sets the description.
func (p *SynthPreset) Describe(desc string) *SynthPreset {
	p.Description = desc
	return p
}

// Tag adds tags.
func (p *SynthPreset) Tag(tags ...string) *SynthPreset {
	p.Tags = append(p.Tags, tags...)
	return p
}

// HasTag reports whether p carries tag.
func (p *SynthPreset) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Values returns the build parameters: Parameters with the envelope stages
// written as attack, decay, sustain and release.
func (p *SynthPreset) Values() param.Values {
	out := p.Parameters.Clone()
	if e := p.Envelope; e != nil {
		out["attack"] = e.Attack
		out["decay"] = e.Decay
		out["sustain"] = e.Sustain
		out[synth.ParamRelease] = e.Release
	}
	return out
}

// Validate checks the preset structure.
func (p *SynthPreset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.TrimSpace(p.Synth) == "" {
		return fmt.Errorf("synth must not be empty")
	}
	if p.Freq < 0 {
		return fmt.Errorf("freq must be >= 0")
	}
	if p.Envelope != nil {
		if err := p.Envelope.validate(); err != nil {
			return err
		}
	}
	return validateValues("preset", p.Parameters)
}

// Check validates p and resolves its synth and parameters against reg.
func (p *SynthPreset) Check(reg *synth.Registry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	b, ok := reg.Get(p.Synth)
	if !ok {
		return fmt.Errorf("synth: %w", &catalog.UnknownPresetError{Kind: "synth", Name: p.Synth})
	}
	return param.CheckKnown(p.Synth, b.Metadata().Params, p.Values())
}

// Poly builds a polyphonic instrument from p.
func (p *SynthPreset) Poly(reg *synth.Registry, voices int) (*synth.Poly, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	poly, err := synth.NewPoly(reg, p.Synth, voices, p.Values())
	if err != nil {
		return nil, fmt.Errorf("build preset %q: %w", p.Name, err)
	}
	return poly, nil
}

// Voice builds a single voice of p at freq, or at p.Freq when it is set.
func (p *SynthPreset) Voice(reg *synth.Registry, freq float32) (synth.Unit, *synth.VoiceControls, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if p.Freq > 0 {
		freq = p.Freq
	}
	u, c, err := reg.Resolve(p.Synth, freq, p.Values())
	if err != nil {
		return nil, nil, fmt.Errorf("build preset %q: %w", p.Name, err)
	}
	return u, c, nil
}

// SynthBank is an ordered in-memory collection of synth presets.
type SynthBank struct {
	Name    string         `json:"name" yaml:"name"`
	Presets []*SynthPreset `json:"presets" yaml:"presets"`
}

// NewSynthBank creates a bank holding presets.
func NewSynthBank(name string, presets ...*SynthPreset) *SynthBank {
	return &SynthBank{Name: name, Presets: presets}
}

// Add appends presets.
func (b *SynthBank) Add(presets ...*SynthPreset) {
	b.Presets = append(b.Presets, presets...)
}

// Len returns the number of presets.
func (b *SynthBank) Len() int {
	return len(b.Presets)
}

// ByID returns the preset with id.
func (b *SynthBank) ByID(id uuid.UUID) (*SynthPreset, bool) {
	for _, p := range b.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ByName returns the first preset named name.
func (b *SynthBank) ByName(name string) (*SynthPreset, bool) {
	for _, p := range b.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ByTag returns every preset carrying tag.
func (b *SynthBank) ByTag(tag string) []*SynthPreset {
	var out []*SynthPreset
	for _, p := range b.Presets {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// BySynth returns every preset built on the synth name.
func (b *SynthBank) BySynth(name string) []*SynthPreset {
	var out []*SynthPreset
	for _, p := range b.Presets {
		if p.Synth == name {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks every preset.
func (b *SynthBank) Validate() error {
	for i, p := range b.Presets {
		if p == nil {
			return fmt.Errorf("presets[%d] must not be null", i)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("presets[%d]: %w", i, err)
		}
	}
	return nil
}
