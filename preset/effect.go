package preset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-rack/effect"
	"github.com/cwbudde/algo-rack/param"
)

// EffectPreset is a named effect chain configuration.
type EffectPreset struct {
	ID          uuid.UUID            `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	Author      string               `json:"author,omitempty" yaml:"author,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string             `json:"tags" yaml:"tags"`
	SampleRate  float32              `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Effects     []effect.EffectState `json:"effects" yaml:"effects"`
}

// NewEffectPreset creates an empty preset with a fresh id.
func NewEffectPreset(name string) *EffectPreset {
	return &EffectPreset{ID: uuid.New(), Name: name}
}

// FromChain captures the current configuration of c.
func FromChain(name string, c *effect.Chain) *EffectPreset {
	p := NewEffectPreset(name)
	st := c.State()
	p.SampleRate = st.SampleRate
	p.Effects = st.Effects
	return p
}

// With appends an effect with parameters.
func (p *EffectPreset) With(name string, params param.Values) *EffectPreset {
	p.Effects = append(p.Effects, effect.EffectState{Name: name, Parameters: params})
	return p
}

// Describe sets the description.
func (p *EffectPreset) Describe(desc string) *EffectPreset {
	p.Description = desc
	return p
}

// Tag adds tags.
func (p *EffectPreset) Tag(tags ...string) *EffectPreset {
	p.Tags = append(p.Tags, tags...)
	return p
}

// HasTag reports whether p carries tag.
func (p *EffectPreset) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Uses reports whether p contains an effect named name.
func (p *EffectPreset) Uses(name string) bool {
	for _, e := range p.Effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

// State returns p as a chain state at sampleRate. Entry ids are left empty
// so every load creates new ones.
func (p *EffectPreset) State(sampleRate float32) effect.ChainState {
	s := effect.NewChainState(sampleRate)
	s.Effects = make([]effect.EffectState, len(p.Effects))
	for i, e := range p.Effects {
		e.ID = ""
		e.Parameters = e.Parameters.Clone()
		s.Effects[i] = e
	}
	return s
}

// ApplyTo replaces the contents of c with p. On error c is unchanged.
func (p *EffectPreset) ApplyTo(c *effect.Chain) error {
	if err := c.LoadState(p.State(c.SampleRate())); err != nil {
		return fmt.Errorf("apply preset %q: %w", p.Name, err)
	}
	return nil
}

// Validate checks the preset structure.
func (p *EffectPreset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if p.SampleRate < 0 {
		return fmt.Errorf("sample_rate must be >= 0")
	}
	return validateEffects(p.Effects)
}

// Check validates p and resolves every effect against reg.
func (p *EffectPreset) Check(reg *effect.Registry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return checkEffects(reg, p.Effects)
}

// EffectBank is an ordered in-memory collection of effect presets.
type EffectBank struct {
	Name    string          `json:"name" yaml:"name"`
	Presets []*EffectPreset `json:"presets" yaml:"presets"`
}

// NewEffectBank creates an empty bank.
func NewEffectBank(name string, presets ...*EffectPreset) *EffectBank {
	return &EffectBank{Name: name, Presets: presets}
}

// Add appends presets.
func (b *EffectBank) Add(presets ...*EffectPreset) {
	b.Presets = append(b.Presets, presets...)
}

// Len returns the number of presets.
func (b *EffectBank) Len() int {
	return len(b.Presets)
}

// ByID returns the preset with id.
func (b *EffectBank) ByID(id uuid.UUID) (*EffectPreset, bool) {
	for _, p := range b.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ByName returns the first preset named name.
func (b *EffectBank) ByName(name string) (*EffectPreset, bool) {
	for _, p := range b.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ByTag returns every preset carrying tag.
func (b *EffectBank) ByTag(tag string) []*EffectPreset {
	var out []*EffectPreset
	for _, p := range b.Presets {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// ByEffect returns every preset that uses the effect name.
func (b *EffectBank) ByEffect(name string) []*EffectPreset {
	var out []*EffectPreset
	for _, p := range b.Presets {
		if p.Uses(name) {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks every preset and rejects duplicate non-nil ids.
func (b *EffectBank) Validate() error {
	seen := make(map[uuid.UUID]bool, len(b.Presets))
	for i, p := range b.Presets {
		if p == nil {
			return fmt.Errorf("presets[%d] must not be null", i)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("presets[%d]: %w", i, err)
		}
		if p.ID == uuid.Nil {
			continue
		}
		if seen[p.ID] {
			return fmt.Errorf("presets[%d].id %s is duplicated", i, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
