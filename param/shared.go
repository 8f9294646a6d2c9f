package param

import (
	"math"
	"sync/atomic"
)

// Shared is a float32 that can be read by the audio goroutine and written by
// a control goroutine without locking. The zero value holds 0.
type Shared struct {
	bits atomic.Uint32
}

// NewShared creates a new shared parameter holding v.
func NewShared(v float32) *Shared {
	s := &Shared{}
	s.Store(v)
	return s
}

// Load returns the current value.
func (s *Shared) Load() float32 {
	return math.Float32frombits(s.bits.Load())
}

// Store sets the value.
func (s *Shared) Store(v float32) {
	s.bits.Store(math.Float32bits(v))
}

// Add atomically adds delta and returns the new value.
func (s *Shared) Add(delta float32) float32 {
	for {
		old := s.bits.Load()
		next := math.Float32frombits(old) + delta
		if s.bits.CompareAndSwap(old, math.Float32bits(next)) {
			return next
		}
	}
}
