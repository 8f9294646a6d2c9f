package effect

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rack/catalog"
	"github.com/cwbudde/algo-rack/param"
)

// Registry maps effect preset names to builders.
type Registry struct {
	cat        *catalog.Catalog[Builder]
	sampleRate float32
	log        logrus.FieldLogger
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	o := applyOptions(opts)
	r := &Registry{
		sampleRate: DefaultSampleRate,
		log:        logrus.StandardLogger(),
	}
	if o.sampleRate > 0 {
		r.sampleRate = o.sampleRate
	}
	if o.log != nil {
		r.log = o.log
	}
	r.cat = catalog.New[Builder]("effect", r.log)
	return r
}

// WithBuiltin creates a registry holding the built-in effect catalog. Every
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

// Logger returns the registry logger.
func (r *Registry) Logger() logrus.FieldLogger {
	return r.log
}

// Register inserts or overwrites the builder for name. Overwrites are logged.
func (r *Registry) Register(name string, b Builder) {
	r.cat.Register(name, b)
}

// Alias registers an existing entry under another name.
func (r *Registry) Alias(name, target string) error {
	b, err := r.cat.Lookup(target)
	if err != nil {
		return err
	}
	r.cat.Register(name, &alias{name: name, target: b})
	return nil
}

// Resolve builds an instance of name using the registry's sample rate.
func (r *Registry) Resolve(name string, params param.Values) (Unit, *Controls, error) {
	return r.ResolveContext(Context{SampleRate: r.sampleRate}, name, params)
}

// ResolveContext builds an instance of name with an explicit context.
func (r *Registry) ResolveContext(ctx Context, name string, params param.Values) (Unit, *Controls, error) {
	b, err := r.cat.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	unit, controls, err := b.Build(ctx.normalized(), params)
	if err != nil {
		return nil, nil, fmt.Errorf("build effect %q: %w", name, err)
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

// Effect starts a fluent build session for name.
func (r *Registry) Effect(name string) *Session {
	return &Session{reg: r, name: name, params: param.Values{}}
}
