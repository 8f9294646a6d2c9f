package dsp

import "math"

// LFOShape selects a low-frequency oscillator shape.
type LFOShape int

const (
	LFOSine LFOShape = iota
	LFOTriangle
	LFOSaw
	LFOSquare
	LFOSampleHold
)

// LFO is a bipolar (-1..1) control oscillator.
type LFO struct {
	Shape LFOShape
	phase float64
	held  float32
	noise *Noise
}

// NewLFO creates an LFO starting at phase (0..1).
func NewLFO(shape LFOShape, phase float64) *LFO {
	return &LFO{Shape: shape, phase: wrapPhase(phase), noise: NewNoise(0x2545f491, false)}
}

// Next returns one sample at rate Hz and advances the phase.
func (l *LFO) Next(rate, sampleRate float32) float32 {
	p := l.phase
	var out float32
	switch l.Shape {
	case LFOTriangle:
		out = float32(1 - 4*math.Abs(p-0.5))
	case LFOSaw:
		out = float32(2*p - 1)
	case LFOSquare:
		if p < 0.5 {
			out = 1
		} else {
			out = -1
		}
	case LFOSampleHold:
		out = l.held
	default:
		out = float32(math.Sin(2 * math.Pi * p))
	}
	next := p + float64(rate)/float64(sampleRate)
	if next >= 1 && l.Shape == LFOSampleHold {
		l.held = l.noise.White()
	}
	l.phase = wrapPhase(next)
	return out
}

// Unipolar maps a bipolar LFO value to 0..1.
func Unipolar(x float32) float32 {
	return 0.5 + 0.5*x
}

// Reset sets the phase.
func (l *LFO) Reset(phase float64) {
	l.phase = wrapPhase(phase)
	l.held = 0
}
