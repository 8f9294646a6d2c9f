package param

import (
	approx "github.com/cwbudde/algo-approx"
)

// Smoothed follows a Shared target with a one-pole lowpass so that control
// changes do not produce zipper noise. It is owned by the audio goroutine.
type Smoothed struct {
	target  *Shared
	current float32
	coef    float32
}

// NewSmoothed creates a smoother reading target. timeS is the time constant in
// seconds; timeS <= 0 disables smoothing. The smoother starts at the target's
// current value.
func NewSmoothed(target *Shared, timeS float32, sampleRate float32) *Smoothed {
	s := &Smoothed{target: target, current: target.Load()}
	s.SetTime(timeS, sampleRate)
	return s
}

// SetTime changes the time constant.
func (s *Smoothed) SetTime(timeS float32, sampleRate float32) {
	if timeS <= 0 || sampleRate <= 0 {
		s.coef = 0
		return
	}
	s.coef = approx.FastExp(-1.0 / (timeS * sampleRate))
}

// Next advances one sample and returns the smoothed value.
func (s *Smoothed) Next() float32 {
	t := s.target.Load()
	s.current = t + s.coef*(s.current-t)
	if d := s.current - t; d < 1e-7 && d > -1e-7 {
		s.current = t
	}
	return s.current
}

// Value returns the last smoothed value without advancing.
func (s *Smoothed) Value() float32 {
	return s.current
}

// Target returns the parameter being followed.
func (s *Smoothed) Target() *Shared {
	return s.target
}

// Snap jumps to the target immediately.
func (s *Smoothed) Snap() {
	s.current = s.target.Load()
}
