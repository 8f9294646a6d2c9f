package dsp

import "math"

// SVF is a topology-preserving-transform state variable filter giving
// lowpass, bandpass and highpass outputs from one update. Coefficients are
// recomputed only when cutoff or damping change.
type SVF struct {
	sampleRate float32
	cutoff     float32
	k          float32

	g, a1, a2, a3 float32
	ic1, ic2      float32
}

// NewSVF creates a filter at the given cutoff and resonance (0..1).
func NewSVF(sampleRate, cutoff, resonance float32) *SVF {
	f := &SVF{sampleRate: sampleRate, cutoff: -1}
	f.Set(cutoff, resonance)
	return f
}

// ResonanceToDamping maps resonance 0..1 to the SVF damping k (2 = no
// resonance, near 0 = self oscillation).
func ResonanceToDamping(res float32) float32 {
	return 2 * (1 - Clamp(res, 0, 0.98))
}

// Set updates cutoff (Hz) and resonance (0..1).
func (f *SVF) Set(cutoff, resonance float32) {
	k := ResonanceToDamping(resonance)
	if cutoff == f.cutoff && k == f.k {
		return
	}
	f.cutoff = cutoff
	f.k = k
	ratio := float64(cutoff) / float64(f.sampleRate)
	if ratio < 1e-5 {
		ratio = 1e-5
	}
	if ratio > 0.499 {
		ratio = 0.499
	}
	f.g = float32(math.Tan(math.Pi * ratio))
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

// Damping returns the current damping k.
func (f *SVF) Damping() float32 {
	return f.k
}

// Process filters one sample.
func (f *SVF) Process(x float32) (lp, bp, hp float32) {
	v3 := x - f.ic2
	v1 := f.a1*f.ic1 + f.a2*v3
	v2 := f.ic2 + f.a2*f.ic1 + f.a3*v3
	f.ic1 = FlushDenormals(2*v1 - f.ic1)
	f.ic2 = FlushDenormals(2*v2 - f.ic2)
	lp = v2
	bp = v1
	hp = x - f.k*v1 - v2
	return lp, bp, hp
}

// Notch returns lowpass + highpass for the last filtered output.
func Notch(lp, hp float32) float32 {
	return lp + hp
}

// Reset clears the integrators.
func (f *SVF) Reset() {
	f.ic1, f.ic2 = 0, 0
}
