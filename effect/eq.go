package effect

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func eqEffects() []builtinEntry {
	gain := def("gain", 0, -12, 12)
	q := def("q", 0.7, 0.1, 2)
	return []builtinEntry{
		{meta("low_shelf", "Low shelf EQ", Filter, def("freq", 200, 20, 1000), gain, q), newShelf(false)},
		{meta("high_shelf", "High shelf EQ", Filter, def("freq", 3000, 500, 15000), gain, q), newShelf(true)},
		{meta("parametric_eq", "Parametric EQ (single band)", Filter,
			def("freq", 1000, 20, 20000), def("q", 1, 0.1, 10), def("gain", 0, -24, 24)), newPeakEQ},
		{meta("eq_3band", "3-band EQ (low/mid/high)", Filter,
			def("low", 0, -12, 12), def("mid", 0, -12, 12), def("high", 0, -12, 12),
			def("low_freq", 200, 50, 500), def("high_freq", 3000, 1000, 10000)), newEQ3},
		{meta("tilt_eq", "Tilt EQ (bass/treble balance)", Filter,
			def("tilt", 0, -1, 1), def("freq", 1000, 200, 5000)), newTilt},
	}
}

// band is one stereo biquad stage whose coefficients come from an algo-dsp
// design function. They are recomputed only when the inputs change.
type band struct {
	left, right dsp.Biquad
	key         [3]float32
	valid       bool
}

func (b *band) update(key [3]float32, design func() biquad.Coefficients) {
	if b.valid && key == b.key {
		return
	}
	b.key = key
	b.valid = true
	c := design()
	b.left.SetCoefficients(float32(c.B0), float32(c.B1), float32(c.B2), float32(c.A1), float32(c.A2))
	b.right.SetCoefficients(float32(c.B0), float32(c.B1), float32(c.B2), float32(c.A1), float32(c.A2))
}

func (b *band) process(l, r float32) (float32, float32) {
	return b.left.Process(l), b.right.Process(r)
}

func (b *band) reset() {
	b.left.Reset()
	b.right.Reset()
}

// clampFreq keeps a design frequency below Nyquist.
func clampFreq(f float32, sampleRate float64) float64 {
	return math.Min(float64(f), 0.45*sampleRate)
}

type shelfUnit struct {
	high          bool
	freq, gain, q *param.Shared
	sampleRate    float64
	band          band
}

func newShelf(high bool) unitFunc {
	return func(ctx Context, c *Controls) (Unit, error) {
		return &shelfUnit{
			high:       high,
			freq:       c.Param("freq"),
			gain:       c.Param("gain"),
			q:          c.Param("q"),
			sampleRate: float64(ctx.SampleRate),
		}, nil
	}
}

func (u *shelfUnit) Process(l, r float32) (float32, float32) {
	f, g, q := u.freq.Load(), u.gain.Load(), u.q.Load()
	u.band.update([3]float32{f, g, q}, func() biquad.Coefficients {
		if u.high {
			return design.HighShelf(clampFreq(f, u.sampleRate), float64(g), float64(q), u.sampleRate)
		}
		return design.LowShelf(clampFreq(f, u.sampleRate), float64(g), float64(q), u.sampleRate)
	})
	return u.band.process(l, r)
}

func (u *shelfUnit) Reset() { u.band.reset() }

type peakUnit struct {
	freq, q, gain *param.Shared
	sampleRate    float64
	band          band
}

func newPeakEQ(ctx Context, c *Controls) (Unit, error) {
	return &peakUnit{
		freq:       c.Param("freq"),
		q:          c.Param("q"),
		gain:       c.Param("gain"),
		sampleRate: float64(ctx.SampleRate),
	}, nil
}

func (u *peakUnit) Process(l, r float32) (float32, float32) {
	f, q, g := u.freq.Load(), u.q.Load(), u.gain.Load()
	u.band.update([3]float32{f, q, g}, func() biquad.Coefficients {
		return design.Peak(clampFreq(f, u.sampleRate), float64(g), float64(q), u.sampleRate)
	})
	return u.band.process(l, r)
}

func (u *peakUnit) Reset() { u.band.reset() }

// eq3Unit is a low shelf, a bell at the geometric mean of the band edges and
// a high shelf.
type eq3Unit struct {
	low, mid, high *param.Shared
	lowF, highF    *param.Shared
	sampleRate     float64
	ls, bell, hs   band
}

func newEQ3(ctx Context, c *Controls) (Unit, error) {
	return &eq3Unit{
		low:        c.Param("low"),
		mid:        c.Param("mid"),
		high:       c.Param("high"),
		lowF:       c.Param("low_freq"),
		highF:      c.Param("high_freq"),
		sampleRate: float64(ctx.SampleRate),
	}, nil
}

func (u *eq3Unit) Process(l, r float32) (float32, float32) {
	lo, mi, hi := u.low.Load(), u.mid.Load(), u.high.Load()
	lf, hf := u.lowF.Load(), u.highF.Load()
	mf := float32(math.Sqrt(float64(lf) * float64(hf)))
	u.ls.update([3]float32{lf, lo}, func() biquad.Coefficients {
		return design.LowShelf(clampFreq(lf, u.sampleRate), float64(lo), 0.7, u.sampleRate)
	})
	u.bell.update([3]float32{mf, mi}, func() biquad.Coefficients {
		return design.Peak(clampFreq(mf, u.sampleRate), float64(mi), 1, u.sampleRate)
	})
	u.hs.update([3]float32{hf, hi}, func() biquad.Coefficients {
		return design.HighShelf(clampFreq(hf, u.sampleRate), float64(hi), 0.7, u.sampleRate)
	})
	l, r = u.ls.process(l, r)
	l, r = u.bell.process(l, r)
	return u.hs.process(l, r)
}

func (u *eq3Unit) Reset() {
	u.ls.reset()
	u.bell.reset()
	u.hs.reset()
}

// tiltMaxDB is the shelf gain at full tilt.
const tiltMaxDB = 6

// tiltUnit pivots the spectrum around freq: one shelf cuts while the other
// boosts.
type tiltUnit struct {
	tilt, freq *param.Shared
	sampleRate float64
	ls, hs     band
}

func newTilt(ctx Context, c *Controls) (Unit, error) {
	return &tiltUnit{tilt: c.Param("tilt"), freq: c.Param("freq"), sampleRate: float64(ctx.SampleRate)}, nil
}

func (u *tiltUnit) Process(l, r float32) (float32, float32) {
	t, f := u.tilt.Load(), u.freq.Load()
	g := float64(t) * tiltMaxDB
	u.ls.update([3]float32{t, f}, func() biquad.Coefficients {
		return design.LowShelf(clampFreq(f, u.sampleRate), -g, 0.7, u.sampleRate)
	})
	u.hs.update([3]float32{t, f}, func() biquad.Coefficients {
		return design.HighShelf(clampFreq(f, u.sampleRate), g, 0.7, u.sampleRate)
	})
	l, r = u.ls.process(l, r)
	return u.hs.process(l, r)
}

func (u *tiltUnit) Reset() {
	u.ls.reset()
	u.hs.reset()
}
