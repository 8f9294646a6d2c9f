package effect

import (
	"math"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func filterEffects() []builtinEntry {
	cutoff := def("cutoff", 1000, 20, 20000)
	center := def("center", 1000, 20, 20000)
	return []builtinEntry{
		{meta("lpf", "Lowpass filter", Filter, cutoff, def("res", 0.5, 0, 10)), svfBuilder(svfLow, "cutoff")},
		{meta("hpf", "Highpass filter", Filter, cutoff, def("res", 0.5, 0, 10)), svfBuilder(svfHigh, "cutoff")},
		{meta("bpf", "Bandpass filter", Filter, center, def("res", 0.5, 0, 10)), svfBuilder(svfBand, "center")},
		{meta("rlpf", "Resonant lowpass filter", Filter, cutoff, def("res", 5, 0, 10)), svfBuilder(svfLow, "cutoff")},
		{meta("rhpf", "Resonant highpass filter", Filter, cutoff, def("res", 5, 0, 10)), svfBuilder(svfHigh, "cutoff")},
		{meta("notch", "Notch filter (removes specific frequency)", Filter,
			def("freq", 1000, 20, 20000), def("q", 2, 0.1, 100)), newNotch},
		{meta("wobble", "LFO filter sweep (dubstep-style)", Filter,
			def("rate", 4, 0.1, 20), def("min_cutoff", 200, 50, 5000), def("max_cutoff", 2000, 100, 10000),
			def("res", 0.3, 0, 1)), newWobble},
	}
}

type svfMode int

const (
	svfLow svfMode = iota
	svfHigh
	svfBand
)

// resToResonance maps the 0..10 "res" scale (Q = 0.5 + res) onto the SVF
// resonance scale.
func resToResonance(res float32) float32 {
	return qToResonance(0.5 + res)
}

// qToResonance converts a filter Q to the SVF resonance with damping 1/Q.
func qToResonance(q float32) float32 {
	if q < 0.5 {
		q = 0.5
	}
	return 1 - 1/(2*q)
}

type svfUnit struct {
	mode        svfMode
	freq, res   *param.Shared
	left, right *dsp.SVF
}

func svfBuilder(mode svfMode, freqParam string) unitFunc {
	return func(ctx Context, c *Controls) (Unit, error) {
		f, res := c.Param(freqParam).Load(), resToResonance(c.Param("res").Load())
		return &svfUnit{
			mode: mode,
			freq: c.Param(freqParam),
			res:  c.Param("res"),
			left: dsp.NewSVF(ctx.SampleRate, f, res),
			right: dsp.NewSVF(ctx.SampleRate, f, res),
		}, nil
	}
}

func (u *svfUnit) pick(x float32, f *dsp.SVF) float32 {
	lp, bp, hp := f.Process(x)
	switch u.mode {
	case svfHigh:
		return hp
	case svfBand:
		// Scale by the damping for unity gain at the centre frequency.
		return bp * f.Damping()
	default:
		return lp
	}
}

func (u *svfUnit) Process(l, r float32) (float32, float32) {
	f, res := u.freq.Load(), resToResonance(u.res.Load())
	u.left.Set(f, res)
	u.right.Set(f, res)
	return u.pick(l, u.left), u.pick(r, u.right)
}

func (u *svfUnit) Reset() {
	u.left.Reset()
	u.right.Reset()
}

type notchUnit struct {
	freq, q     *param.Shared
	left, right *dsp.SVF
}

func newNotch(ctx Context, c *Controls) (Unit, error) {
	f, res := c.Param("freq").Load(), qToResonance(c.Param("q").Load())
	return &notchUnit{
		freq:  c.Param("freq"),
		q:     c.Param("q"),
		left:  dsp.NewSVF(ctx.SampleRate, f, res),
		right: dsp.NewSVF(ctx.SampleRate, f, res),
	}, nil
}

func (u *notchUnit) Process(l, r float32) (float32, float32) {
	f, res := u.freq.Load(), qToResonance(u.q.Load())
	u.left.Set(f, res)
	u.right.Set(f, res)
	ll, _, lh := u.left.Process(l)
	rl, _, rh := u.right.Process(r)
	return dsp.Notch(ll, lh), dsp.Notch(rl, rh)
}

func (u *notchUnit) Reset() {
	u.left.Reset()
	u.right.Reset()
}

type wobbleUnit struct {
	rate, lo, hi, res *param.Shared
	sampleRate        float32
	lfo               *dsp.LFO
	left, right       *dsp.SVF
}

func newWobble(ctx Context, c *Controls) (Unit, error) {
	return &wobbleUnit{
		rate:       c.Param("rate"),
		lo:         c.Param("min_cutoff"),
		hi:         c.Param("max_cutoff"),
		res:        c.Param("res"),
		sampleRate: ctx.SampleRate,
		lfo:        dsp.NewLFO(dsp.LFOSine, 0.75),
		left:       dsp.NewSVF(ctx.SampleRate, c.Param("min_cutoff").Load(), 0),
		right:      dsp.NewSVF(ctx.SampleRate, c.Param("min_cutoff").Load(), 0),
	}, nil
}

func (u *wobbleUnit) Process(l, r float32) (float32, float32) {
	m := dsp.Unipolar(u.lfo.Next(u.rate.Load(), u.sampleRate))
	lo, hi := u.lo.Load(), u.hi.Load()
	// Exponential sweep between the two cutoffs.
	f := lo
	if hi > lo {
		f = lo * float32(math.Pow(float64(hi/lo), float64(m)))
	}
	res := 0.9 * u.res.Load()
	u.left.Set(f, res)
	u.right.Set(f, res)
	ll, _, _ := u.left.Process(l)
	rl, _, _ := u.right.Process(r)
	return ll, rl
}

func (u *wobbleUnit) Reset() {
	u.lfo.Reset(0.75)
	u.left.Reset()
	u.right.Reset()
}
