package effect

import (
	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func delayEffects() []builtinEntry {
	return []builtinEntry{
		{meta("delay", "Delay/echo effect", Time, def("time", 0.5, 0, 2), def("mix", 0.5, 0, 1)), newDelay(0)},
		{meta("echo", "Echo with feedback", Time, def("time", 0.5, 0, 2), def("mix", 0.5, 0, 1)), newDelay(echoFeedback)},
		{meta("stereo_delay", "Stereo delay with independent left/right times", Time,
			def("time_l", 0.25, 0, 2), def("time_r", 0.375, 0, 2), def("mix", 0.4, 0, 1)), newStereoDelay},
		{meta("ping_pong", "Ping-pong delay bouncing between channels", Time,
			def("time", 0.25, 0.05, 1), def("mix", 0.4, 0, 1)), newPingPong},
		{meta("slapback", "Slapback delay (short single echo)", Time,
			def("time", 0.08, 0.03, 0.15), def("mix", 0.3, 0, 1)), newDelay(0)},
	}
}

const (
	echoFeedback     = 0.5
	pingPongFeedback = 0.5
)

// delayLines holds one line per channel sized for the largest declared time
// of the effect.
type delayLines struct {
	left, right *dsp.DelayLine
	sampleRate  float32
}

func newDelayLines(c *Controls, sampleRate float32, params ...string) delayLines {
	var maxS float32
	for _, name := range params {
		if d, ok := param.Find(c.Defs(), name); ok && d.Max > maxS {
			maxS = d.Max
		}
	}
	n := dsp.SecondsToSamples(maxS, sampleRate) + 2
	return delayLines{left: dsp.NewDelayLine(n), right: dsp.NewDelayLine(n), sampleRate: sampleRate}
}

// tap reads line seconds in the past, before the current input is written.
// Delays shorter than one sample pass x through.
func (d delayLines) tap(line *dsp.DelayLine, x, seconds float32) float32 {
	n := seconds * d.sampleRate
	if n < 1 {
		return x
	}
	return line.ReadFractional(n)
}

func (d delayLines) reset() {
	d.left.Reset()
	d.right.Reset()
}

// delayUnit is a stereo delay with one time for both channels. With feedback
// 0 it produces a single echo.
type delayUnit struct {
	time, mix *param.Shared
	feedback  float32
	lines     delayLines
}

func newDelay(feedback float32) unitFunc {
	return func(ctx Context, c *Controls) (Unit, error) {
		return &delayUnit{
			time:     c.Param("time"),
			mix:      c.Param("mix"),
			feedback: feedback,
			lines:    newDelayLines(c, ctx.SampleRate, "time"),
		}, nil
	}
}

func (u *delayUnit) Process(l, r float32) (float32, float32) {
	t := u.time.Load()
	wl := u.lines.tap(u.lines.left, l, t)
	wr := u.lines.tap(u.lines.right, r, t)
	u.lines.left.Write(dsp.FlushDenormals(l + u.feedback*wl))
	u.lines.right.Write(dsp.FlushDenormals(r + u.feedback*wr))
	m := u.mix.Load()
	return mix(l, wl, m), mix(r, wr, m)
}

func (u *delayUnit) Reset() { u.lines.reset() }

type stereoDelayUnit struct {
	timeL, timeR, mix *param.Shared
	lines             delayLines
}

func newStereoDelay(ctx Context, c *Controls) (Unit, error) {
	return &stereoDelayUnit{
		timeL: c.Param("time_l"),
		timeR: c.Param("time_r"),
		mix:   c.Param("mix"),
		lines: newDelayLines(c, ctx.SampleRate, "time_l", "time_r"),
	}, nil
}

func (u *stereoDelayUnit) Process(l, r float32) (float32, float32) {
	wl := u.lines.tap(u.lines.left, l, u.timeL.Load())
	wr := u.lines.tap(u.lines.right, r, u.timeR.Load())
	u.lines.left.Write(l)
	u.lines.right.Write(r)
	m := u.mix.Load()
	return mix(l, wl, m), mix(r, wr, m)
}

func (u *stereoDelayUnit) Reset() { u.lines.reset() }

// pingPongUnit feeds the mono sum into the left line and cross-feeds each line
// into the other.
type pingPongUnit struct {
	time, mix *param.Shared
	lines     delayLines
}

func newPingPong(ctx Context, c *Controls) (Unit, error) {
	return &pingPongUnit{
		time:  c.Param("time"),
		mix:   c.Param("mix"),
		lines: newDelayLines(c, ctx.SampleRate, "time"),
	}, nil
}

func (u *pingPongUnit) Process(l, r float32) (float32, float32) {
	t := u.time.Load()
	wl := u.lines.tap(u.lines.left, 0, t)
	wr := u.lines.tap(u.lines.right, 0, t)
	in := 0.5 * (l + r)
	u.lines.left.Write(dsp.FlushDenormals(in + pingPongFeedback*wr))
	u.lines.right.Write(dsp.FlushDenormals(pingPongFeedback * wl))
	m := u.mix.Load()
	return mix(l, wl, m), mix(r, wr, m)
}

func (u *pingPongUnit) Reset() { u.lines.reset() }
