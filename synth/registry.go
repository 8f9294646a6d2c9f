package synth

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/catalog"
	"github.com/cwbudde/algo-rack/param"
)

// Registry maps synth preset names to builders.
type Registry struct {
	cat        *catalog.Catalog[Builder]
	sampleRate float32
	log        logrus.FieldLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithSampleRate sets the sample rate used by Resolve.
func WithSampleRate(sr float32) Option {
	return func(r *Registry) {
		if sr > 0 {
			r.sampleRate = sr
		}
	}
}

// WithLogger sets the logger for registration warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		sampleRate: DefaultSampleRate,
		log:        logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(r)
	}
	r.cat = catalog.New[Builder]("synth", r.log)
	return r
}

// WithBuiltin creates a registry holding the built-in synth catalog. Every
// call returns an independent registry.
func WithBuiltin(opts ...Option) *Registry {
	r := New(opts...)
	registerBuiltins(r)
	return r
}

// SampleRate returns the sample rate used by Resolve.
func (r *Registry) SampleRate() float32 {
	return r.sampleRate
}

// Register inserts or overwrites the builder for name. Overwrites are logged.
func (r *Registry) Register(name string, b Builder) {
	r.cat.Register(name, b)
}

// Alias registers an existing entry under another name. The alias gets a
// copy of the target's metadata renamed to name.
func (r *Registry) Alias(name, target string) error {
	b, err := r.cat.Lookup(target)
	if err != nil {
		return err
	}
	r.cat.Register(name, &alias{name: name, target: b})
	return nil
}

// Resolve builds an instance of name at freq using the registry's sample rate.
func (r *Registry) Resolve(name string, freq float32, params param.Values) (Unit, *VoiceControls, error) {
	return r.ResolveContext(Context{SampleRate: r.sampleRate}, name, freq, params)
}

// ResolveContext builds an instance of name with an explicit context.
func (r *Registry) ResolveContext(ctx Context, name string, freq float32, params param.Values) (Unit, *VoiceControls, error) {
	b, err := r.cat.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	unit, controls, err := b.Build(ctx.normalized(), freq, params)
	if err != nil {
		return nil, nil, fmt.Errorf("build synth %q: %w", name, err)
	}
	return unit, controls, nil
}

// Get returns the builder registered under name.
func (r *Registry) Get(name string) (Builder, bool) {
	return r.cat.Get(name)
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	return r.cat.Contains(name)
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	return r.cat.Names()
}

// Len returns the number of registered presets.
func (r *Registry) Len() int {
	return r.cat.Len()
}

// List returns the metadata of every preset in registration order.
func (r *Registry) List() []Metadata {
	out := make([]Metadata, 0, r.cat.Len())
	r.cat.Each(func(_ string, b Builder) {
		out = append(out, b.Metadata())
	})
	return out
}

// ListByCategory returns the metadata of every preset in cat.
func (r *Registry) ListByCategory(cat Category) []Metadata {
	var out []Metadata
	for _, m := range r.List() {
		if m.Category == cat {
			out = append(out, m)
		}
	}
	return out
}

// Synth starts a fluent build session for name.
func (r *Registry) Synth(name string) *Session {
	return &Session{reg: r, name: name, freq: 440, params: param.Values{}}
}

// Poly starts a fluent builder for a polyphonic instrument.
func (r *Registry) Poly(name string) *PolyBuilder {
	return &PolyBuilder{reg: r, name: name, voices: 8, params: param.Values{}}
}
