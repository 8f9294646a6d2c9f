package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// DefaultSampleRate is the sample rate synths and effects use when none is
// configured.
const DefaultSampleRate = 48000

// Biquad is a float32 second-order section in transposed direct form II.
// The zero value passes nothing until coefficients are set.
type Biquad struct {
	b0, b1, b2, a1, a2 float32
	s1, s2             float32
}

// NewBiquad creates a biquad from normalized coefficients (a0 == 1).
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	b := &Biquad{}
	b.SetCoefficients(b0, b1, b2, a1, a2)
	return b
}

func fromCoefficients(c biquad.Coefficients) *Biquad {
	return NewBiquad(float32(c.B0), float32(c.B1), float32(c.B2), float32(c.A1), float32(c.A2))
}

// SetCoefficients replaces the coefficients and keeps the filter state.
func (b *Biquad) SetCoefficients(b0, b1, b2, a1, a2 float32) {
	b.b0, b.b1, b.b2, b.a1, b.a2 = b0, b1, b2, a1, a2
}

// Process filters one sample.
func (b *Biquad) Process(x float32) float32 {
	y := b.b0*x + b.s1
	b.s1 = FlushDenormals(b.b1*x - b.a1*y + b.s2)
	b.s2 = FlushDenormals(b.b2*x - b.a2*y)
	return y
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.s1, b.s2 = 0, 0
}

func designFreq(freq, sampleRate float32) float64 {
	return math.Min(math.Max(float64(freq), 1), 0.49*float64(sampleRate))
}

func defaultQ(q float32) float64 {
	if q <= 0 {
		return math.Sqrt2 / 2
	}
	return float64(q)
}

// NewLowpass creates a second-order lowpass.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	return fromCoefficients(design.Lowpass(designFreq(cutoff, sampleRate), defaultQ(q), float64(sampleRate)))
}

// NewHighpass creates a second-order highpass.
func NewHighpass(cutoff, sampleRate, q float32) *Biquad {
	return fromCoefficients(design.Highpass(designFreq(cutoff, sampleRate), defaultQ(q), float64(sampleRate)))
}

// NewBandpass creates a bandpass with 0 dB gain at center.
func NewBandpass(center, sampleRate, q float32) *Biquad {
	w := 2 * math.Pi * designFreq(center, sampleRate) / float64(sampleRate)
	alpha := math.Sin(w) / (2 * defaultQ(q))
	a0 := 1 + alpha
	return NewBiquad(
		float32(alpha/a0), 0, float32(-alpha/a0),
		float32(-2*math.Cos(w)/a0), float32((1-alpha)/a0),
	)
}

// DelayLine is a fixed-capacity ring of past samples.
type DelayLine struct {
	buf []float32
	pos int // next write index
}

// NewDelayLine creates a delay line holding size samples (at least 2).
func NewDelayLine(size int) *DelayLine {
	return &DelayLine{buf: make([]float32, max(size, 2))}
}

// Len returns the capacity in samples.
func (d *DelayLine) Len() int {
	return len(d.buf)
}

// Write pushes one sample.
func (d *DelayLine) Write(sample float32) {
	d.buf[d.pos] = sample
	if d.pos++; d.pos == len(d.buf) {
		d.pos = 0
	}
}

// Read returns the sample written delay writes ago, clamped to [1, Len].
// A delay of 1 is the most recent sample.
func (d *DelayLine) Read(delay int) float32 {
	n := len(d.buf)
	delay = min(max(delay, 1), n)
	i := d.pos - delay
	if i < 0 {
		i += n
	}
	return d.buf[i]
}

// ReadFractional reads between two taps with linear interpolation.
func (d *DelayLine) ReadFractional(delay float32) float32 {
	delay = Clamp(delay, 1, float32(len(d.buf)-1))
	whole := int(delay)
	frac := delay - float32(whole)
	a := d.Read(whole)
	return a + frac*(d.Read(whole+1)-a)
}

// Reset zeroes the line.
func (d *DelayLine) Reset() {
	clear(d.buf)
	d.pos = 0
}

// FlushDenormals converts denormal numbers to zero to avoid performance issues
func FlushDenormals(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SecondsToSamples converts a duration to a whole number of samples (>= 0),
// rounding up. float32 representation error below 1e-4 samples is ignored.
func SecondsToSamples(seconds, sampleRate float32) int {
	if seconds <= 0 || sampleRate <= 0 {
		return 0
	}
	n := int(math.Ceil(float64(seconds)*float64(sampleRate) - 1e-4))
	if n < 0 {
		return 0
	}
	return n
}

// DBToGain converts decibels to linear gain.
func DBToGain(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

// GainToDB converts linear gain to decibels, floored at -120 dB.
func GainToDB(g float32) float32 {
	if g <= 1e-6 {
		return -120
	}
	return float32(20 * math.Log10(float64(g)))
}
