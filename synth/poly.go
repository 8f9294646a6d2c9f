package synth

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

// VoiceState is the allocation state of one Poly slot.
type VoiceState int

const (
	Idle VoiceState = iota
	Active
	Releasing
)

func (s VoiceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Releasing:
		return "releasing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// VoiceInfo is a snapshot of one slot.
type VoiceInfo struct {
	Slot  int
	State VoiceState
	Note  int // -1 when Idle
}

type voice struct {
	unit     Unit
	controls *VoiceControls
	note     int
	state    VoiceState
	onset    uint64 // event sequence of the last note-on
	released uint64 // event sequence of the note-off
	idleAt   uint64 // clock tick at which a releasing voice becomes Idle
}

// Poly is a polyphonic instrument over a fixed arena of voices built from
// one preset.
//
// Allocation on NoteOn prefers an Idle slot, then the Releasing slot
// released earliest, then the Active slot started earliest; ties go to the
// lowest slot. A Releasing voice returns to Idle once its release time (the
// "release" control, in seconds) has elapsed in Poly ticks.
//
// Note methods and GetStereo share voice state and must be called from one
// goroutine or serialized by the caller. The per-voice VoiceControls may be
// written from any goroutine.
type Poly struct {
	name       string
	sampleRate float32
	voices     []voice
	clock      uint64
	seq        uint64
	serial     float32
	bend       float32
	log        logrus.FieldLogger
}

// NewPoly builds voices instances of name from reg. Every voice starts Idle.
func NewPoly(reg *Registry, name string, voices int, params param.Values) (*Poly, error) {
	return newPoly(reg, Context{SampleRate: reg.SampleRate()}, name, voices, params)
}

func newPoly(reg *Registry, ctx Context, name string, voices int, params param.Values) (*Poly, error) {
	if voices < 1 {
		return nil, fmt.Errorf("voice count must be >= 1, got %d", voices)
	}
	b, err := reg.cat.Lookup(name)
	if err != nil {
		return nil, err
	}
	ctx = ctx.normalized()
	p := &Poly{
		name:       name,
		sampleRate: ctx.SampleRate,
		voices:     make([]voice, voices),
		bend:       1,
		log:        reg.log,
	}
	for i := range p.voices {
		unit, controls, err := b.Build(ctx, MidiToFreq(69), params.Clone())
		if err != nil {
			return nil, fmt.Errorf("build voice %d of %q: %w", i, name, err)
		}
		controls.Gate.Store(0)
		p.voices[i] = voice{unit: unit, controls: controls, note: -1}
	}
	p.log.WithFields(logrus.Fields{
		"function":    "NewPoly",
		"synth":       name,
		"voices":      voices,
		"sample_rate": ctx.SampleRate,
	}).Debug("Created polyphonic synth")
	return p, nil
}

// Name returns the preset name the voices were built from.
func (p *Poly) Name() string {
	return p.name
}

// SampleRate returns the sample rate the voices were built for.
func (p *Poly) SampleRate() float32 {
	return p.sampleRate
}

// NumVoices returns the arena size.
func (p *Poly) NumVoices() int {
	return len(p.voices)
}

func (p *Poly) nextSerial() float32 {
	// Stay within the exactly representable float32 integers.
	p.serial++
	if p.serial > 1<<24 {
		p.serial = 1
	}
	return p.serial
}

func (p *Poly) allocate() int {
	idle, rel, act := -1, -1, -1
	for i := range p.voices {
		v := &p.voices[i]
		switch v.state {
		case Idle:
			if idle < 0 {
				idle = i
			}
		case Releasing:
			if rel < 0 || v.released < p.voices[rel].released {
				rel = i
			}
		case Active:
			if act < 0 || v.onset < p.voices[act].onset {
				act = i
			}
		}
	}
	switch {
	case idle >= 0:
		return idle
	case rel >= 0:
		return rel
	default:
		return act
	}
}

// NoteOn starts note on a voice and returns its slot. velocity (0..1) is
// written to the voice's amp control linearly.
func (p *Poly) NoteOn(note int, velocity float32) int {
	i := p.allocate()
	v := &p.voices[i]
	p.seq++
	v.state = Active
	v.note = note
	v.onset = p.seq
	c := v.controls
	c.Amp.Store(dsp.Clamp(velocity, 0, 1))
	c.Freq.Store(MidiToFreq(note))
	c.PitchBend.Store(p.bend)
	c.Gate.Store(p.nextSerial())
	return i
}

// NoteOnMIDI is NoteOn with a MIDI velocity (0..127).
func (p *Poly) NoteOnMIDI(note int, velocity int) int {
	return p.NoteOn(note, float32(velocity)/127)
}

// NoteOff releases every Active voice playing note. Unmatched notes are
// ignored.
func (p *Poly) NoteOff(note int) {
	for i := range p.voices {
		v := &p.voices[i]
		if v.state == Active && v.note == note {
			p.release(v)
		}
	}
}

// AllNotesOff releases every Active voice.
func (p *Poly) AllNotesOff() {
	for i := range p.voices {
		if p.voices[i].state == Active {
			p.release(&p.voices[i])
		}
	}
}

func (p *Poly) release(v *voice) {
	p.seq++
	v.state = Releasing
	v.released = p.seq
	v.controls.Gate.Store(0)
	v.idleAt = p.clock + uint64(dsp.SecondsToSamples(v.controls.Release.Load(), p.sampleRate))
}

// GetStereo returns the sum of one frame from every sounding voice. No gain
// compensation is applied for the number of voices.
func (p *Poly) GetStereo() (float32, float32) {
	var l, r float32
	for i := range p.voices {
		v := &p.voices[i]
		if v.state == Idle {
			continue
		}
		vl, vr := v.unit.Tick()
		l += vl
		r += vr
	}
	p.clock++
	for i := range p.voices {
		v := &p.voices[i]
		if v.state == Releasing && p.clock >= v.idleAt {
			v.state = Idle
			v.note = -1
		}
	}
	return l, r
}

// Process renders len(dst)/2 interleaved stereo frames into dst.
func (p *Poly) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = p.GetStereo()
	}
}

// PitchBend sets the bend in semitones for sounding and future notes.
func (p *Poly) PitchBend(semitones float32) {
	p.bend = SemitonesToRatio(semitones)
	for i := range p.voices {
		if p.voices[i].state != Idle {
			p.voices[i].controls.PitchBend.Store(p.bend)
		}
	}
}

// SetCutoff sets the filter cutoff of every voice that has one.
func (p *Poly) SetCutoff(hz float32) {
	for i := range p.voices {
		p.voices[i].controls.Set(ParamCutoff, hz)
	}
}

// SetResonance sets the filter resonance of every voice that has one.
func (p *Poly) SetResonance(res float32) {
	for i := range p.voices {
		p.voices[i].controls.Set(ParamResonance, res)
	}
}

// SetParam sets a declared parameter on every voice. It returns false when
// the preset does not declare name.
func (p *Poly) SetParam(name string, v float32) bool {
	ok := false
	for i := range p.voices {
		ok = p.voices[i].controls.Set(name, v) || ok
	}
	return ok
}

// SetPressure sets the pressure channel of every sounding voice.
func (p *Poly) SetPressure(v float32) {
	for i := range p.voices {
		if p.voices[i].state != Idle {
			p.voices[i].controls.Pressure.Store(v)
		}
	}
}

// ActiveVoices returns the number of non-Idle voices.
func (p *Poly) ActiveVoices() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].state != Idle {
			n++
		}
	}
	return n
}

// PlayingNotes returns the notes of Active voices in slot order.
func (p *Poly) PlayingNotes() []int {
	var out []int
	for i := range p.voices {
		if p.voices[i].state == Active {
			out = append(out, p.voices[i].note)
		}
	}
	return out
}

// Voice returns a snapshot of slot i.
func (p *Poly) Voice(i int) VoiceInfo {
	v := p.voices[i]
	return VoiceInfo{Slot: i, State: v.state, Note: v.note}
}

// Voices returns a snapshot of every slot.
func (p *Poly) Voices() []VoiceInfo {
	out := make([]VoiceInfo, len(p.voices))
	for i := range p.voices {
		out[i] = p.Voice(i)
	}
	return out
}

// Controls returns the control surface of slot i.
func (p *Poly) Controls(i int) *VoiceControls {
	return p.voices[i].controls
}

// Reset silences every voice immediately and returns it to Idle.
func (p *Poly) Reset() {
	for i := range p.voices {
		v := &p.voices[i]
		v.controls.Gate.Store(0)
		v.unit.Reset()
		v.state = Idle
		v.note = -1
	}
}

// PolyBuilder is the fluent form of NewPoly.
//
//	poly, err := reg.Poly("tb303").Voices(4).Cutoff(800).Resonance(0.7).Build()
type PolyBuilder struct {
	reg        *Registry
	name       string
	voices     int
	sampleRate float32
	params     param.Values
}

// Voices sets the arena size.
func (b *PolyBuilder) Voices(n int) *PolyBuilder {
	b.voices = n
	return b
}

// Param sets a parameter on every voice.
func (b *PolyBuilder) Param(name string, v float32) *PolyBuilder {
	b.params[name] = v
	return b
}

// Cutoff sets the filter cutoff parameter.
func (b *PolyBuilder) Cutoff(hz float32) *PolyBuilder {
	return b.Param(ParamCutoff, hz)
}

// Resonance sets the filter resonance parameter.
func (b *PolyBuilder) Resonance(r float32) *PolyBuilder {
	return b.Param(ParamResonance, r)
}

// SampleRate overrides the registry sample rate.
func (b *PolyBuilder) SampleRate(sr float32) *PolyBuilder {
	b.sampleRate = sr
	return b
}

// Build creates the Poly.
func (b *PolyBuilder) Build() (*Poly, error) {
	sr := b.sampleRate
	if sr <= 0 {
		sr = b.reg.SampleRate()
	}
	return newPoly(b.reg, Context{SampleRate: sr}, b.name, b.voices, b.params)
}
