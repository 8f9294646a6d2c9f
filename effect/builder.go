package effect

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

// Unit is a running effect instance processing one stereo frame per call.
// All live control goes through the Controls returned with it.
type Unit interface {
	Process(left, right float32) (float32, float32)
	Reset()
}

// BlockUnit is implemented by units that process whole blocks more
// efficiently than frame by frame. ProcessBlock works in place on equally
// sized channel slices.
type BlockUnit interface {
	Unit
	ProcessBlock(left, right []float32)
}

// SidechainUnit is implemented by units whose gain follows an external key
// signal. Chain.ProcessSidechain routes the key to them; plain Process calls
// run them without a key.
type SidechainUnit interface {
	Unit
	ProcessSidechain(left, right, keyLeft, keyRight float32) (float32, float32)
}

// Builder constructs effect instances of one preset.
type Builder interface {
	Metadata() Metadata
	Build(ctx Context, params param.Values) (Unit, *Controls, error)
}

// BuildFunc adapts a function to the build half of Builder.
type BuildFunc func(ctx Context, params param.Values) (Unit, *Controls, error)

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

func (b *funcBuilder) Build(ctx Context, params param.Values) (Unit, *Controls, error) {
	return b.build(ctx, params)
}

type alias struct {
	name   string
	target Builder
}

func (a *alias) Metadata() Metadata {
	m := a.target.Metadata()
	m.Description = m.Description + " (alias of " + m.Name + ")"
	m.Name = a.name
	return m
}

func (a *alias) Build(ctx Context, params param.Values) (Unit, *Controls, error) {
	return a.target.Build(ctx, params)
}
