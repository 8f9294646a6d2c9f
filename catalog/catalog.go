// Package catalog provides the ordered, name-keyed store shared by the synth
// and effect registries.
package catalog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Catalog maps preset names to builders and remembers registration order.
// It is safe for concurrent use.
type Catalog[B any] struct {
	kind string
	log  logrus.FieldLogger

	mu      sync.RWMutex
	order   []string
	entries map[string]B
}

// New creates an empty catalog. kind names the preset family ("synth",
// "effect") in errors and log fields. A nil logger uses the logrus standard
// logger.
func New[B any](kind string, log logrus.FieldLogger) *Catalog[B] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Catalog[B]{
		kind:    kind,
		log:     log,
		entries: make(map[string]B),
	}
}

// Kind returns the preset family name.
func (c *Catalog[B]) Kind() string {
	return c.kind
}

// Register inserts or overwrites the entry for name and reports whether an
// existing entry was replaced. An overwritten entry keeps its original
// position in the registration order.
func (c *Catalog[B]) Register(name string, b B) bool {
	c.mu.Lock()
	_, replaced := c.entries[name]
	c.entries[name] = b
	if !replaced {
		c.order = append(c.order, name)
	}
	c.mu.Unlock()

	if replaced {
		c.log.WithFields(logrus.Fields{
			"function": "Catalog.Register",
			"kind":     c.kind,
			"name":     name,
		}).Warn("Overwriting existing preset registration")
	}
	return replaced
}

// Lookup returns the builder registered under name or an
// *UnknownPresetError.
func (c *Catalog[B]) Lookup(name string) (B, error) {
	b, ok := c.Get(name)
	if !ok {
		return b, &UnknownPresetError{Kind: c.kind, Name: name}
	}
	return b, nil
}

// Get returns the builder registered under name.
func (c *Catalog[B]) Get(name string) (B, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[name]
	return b, ok
}

// Contains reports whether name is registered.
func (c *Catalog[B]) Contains(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of registered names.
func (c *Catalog[B]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Names returns the registered names in registration order.
func (c *Catalog[B]) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Each calls fn for every entry in registration order. fn must not register
// into the same catalog.
func (c *Catalog[B]) Each(fn func(name string, b B)) {
	c.mu.RLock()
	names := make([]string, len(c.order))
	copy(names, c.order)
	builders := make([]B, len(names))
	for i, n := range names {
		builders[i] = c.entries[n]
	}
	c.mu.RUnlock()

	for i, n := range names {
		fn(n, builders[i])
	}
}
