package effect

import (
	"math"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

// smoothTime is the time constant applied to gain-like parameters.
const smoothTime = 0.005

func utilityEffects() []builtinEntry {
	return []builtinEntry{
		{meta("gain", "Linear gain", Other, def("gain", 1, 0, 10)), newGain},
		{meta("pan", "Pan (stereo positioning)", Spatial, def("pan", 0, -1, 1)), newPan},
		{meta("stereo_widener", "Stereo Widener (adjusts stereo width)", Spatial, def("width", 1, 0, 2)), newWidener},
		{meta("dc_blocker", "DC Blocker (removes DC offset)", Filter, def("cutoff", 10, 1, 50)), newDCBlocker},
	}
}

type gainUnit struct {
	gain *param.Smoothed
}

func newGain(ctx Context, c *Controls) (Unit, error) {
	return &gainUnit{gain: param.NewSmoothed(c.Param("gain"), smoothTime, ctx.SampleRate)}, nil
}

func (u *gainUnit) Process(l, r float32) (float32, float32) {
	g := u.gain.Next()
	return l * g, r * g
}

func (u *gainUnit) Reset() { u.gain.Snap() }

// panUnit is a balance control: the centre position is the identity.
type panUnit struct {
	pan *param.Smoothed
}

func newPan(ctx Context, c *Controls) (Unit, error) {
	return &panUnit{pan: param.NewSmoothed(c.Param("pan"), smoothTime, ctx.SampleRate)}, nil
}

func (u *panUnit) Process(l, r float32) (float32, float32) {
	p := u.pan.Next()
	return l * dsp.Clamp(1-p, 0, 1), r * dsp.Clamp(1+p, 0, 1)
}

func (u *panUnit) Reset() { u.pan.Snap() }

type widenerUnit struct {
	width *param.Shared
}

func newWidener(_ Context, c *Controls) (Unit, error) {
	return &widenerUnit{width: c.Param("width")}, nil
}

func (u *widenerUnit) Process(l, r float32) (float32, float32) {
	mid := 0.5 * (l + r)
	side := 0.5 * (l - r) * u.width.Load()
	return mid + side, mid - side
}

func (u *widenerUnit) Reset() {}

// dcBlockerUnit is a one-pole highpass y[n] = x[n] - x[n-1] + R*y[n-1].
type dcBlockerUnit struct {
	cutoff     *param.Shared
	sampleRate float32
	lastCutoff float32
	r          float32
	xl, yl     float32
	xr, yr     float32
}

func newDCBlocker(ctx Context, c *Controls) (Unit, error) {
	return &dcBlockerUnit{cutoff: c.Param("cutoff"), sampleRate: ctx.SampleRate, lastCutoff: -1}, nil
}

func (u *dcBlockerUnit) Process(l, r float32) (float32, float32) {
	if fc := u.cutoff.Load(); fc != u.lastCutoff {
		u.lastCutoff = fc
		u.r = float32(math.Exp(-2 * math.Pi * float64(fc) / float64(u.sampleRate)))
	}
	yl := dsp.FlushDenormals(l - u.xl + u.r*u.yl)
	yr := dsp.FlushDenormals(r - u.xr + u.r*u.yr)
	u.xl, u.yl = l, yl
	u.xr, u.yr = r, yr
	return yl, yr
}

func (u *dcBlockerUnit) Reset() {
	u.xl, u.yl, u.xr, u.yr = 0, 0, 0, 0
}
