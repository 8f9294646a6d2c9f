package synth

import (
	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = dsp.DefaultSampleRate

// Context carries build-time settings.
type Context struct {
	SampleRate float32
}

func (c Context) normalized() Context {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	return c
}

// Unit is a running synth instance producing one stereo frame per Tick.
// All live control goes through the VoiceControls returned with it.
type Unit interface {
	Tick() (left, right float32)
	Reset()
}

// Builder constructs synth instances of one preset.
type Builder interface {
	Metadata() Metadata
	Build(ctx Context, freq float32, params param.Values) (Unit, *VoiceControls, error)
}

// BuildFunc adapts a function to the build half of Builder.
type BuildFunc func(ctx Context, freq float32, params param.Values) (Unit, *VoiceControls, error)

type funcBuilder struct {
	meta  Metadata
	build BuildFunc
}

// NewBuilder creates a Builder from metadata and a build function.
func NewBuilder(meta Metadata, fn BuildFunc) Builder {
	return &funcBuilder{meta: meta, build: fn}
}

func (b *funcBuilder) Metadata() Metadata {
	return b.meta.clone()
}

func (b *funcBuilder) Build(ctx Context, freq float32, params param.Values) (Unit, *VoiceControls, error) {
	return b.build(ctx, freq, params)
}

// alias exposes a builder under another name.
type alias struct {
	name   string
	target Builder
}

func (a *alias) Metadata() Metadata {
	m := a.target.Metadata().clone()
	m.Description = m.Description + " (alias of " + m.Name + ")"
	m.Name = a.name
	return m
}

func (a *alias) Build(ctx Context, freq float32, params param.Values) (Unit, *VoiceControls, error) {
	return a.target.Build(ctx, freq, params)
}
