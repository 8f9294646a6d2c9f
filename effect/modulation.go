package effect

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func modulationEffects() []builtinEntry {
	return []builtinEntry{
		{meta("chorus", "Chorus effect", Modulation,
			def("separation", 0.02, 0, 0.1), def("variation", 0.5, 0, 1),
			def("mod_frequency", 0.5, 0.1, 10), def("mix", 0.5, 0, 1)), newChorus},
		{meta("flanger", "Flanger effect", Modulation,
			def("depth", 0.005, 0, 0.02), def("rate", 0.5, 0.1, 10),
			def("feedback", 0.5, -0.95, 0.95), def("mix", 0.5, 0, 1)), newFlanger},
		{meta("phaser", "Phaser (sweeping notch filters)", Modulation,
			def("rate", 0.5, 0.1, 10), def("depth", 0.5, 0, 1),
			def("feedback", 0.5, 0, 0.95), def("stages", 4, 2, maxPhaserStages)), newPhaser},
		{meta("tremolo", "Tremolo (amplitude modulation)", Modulation,
			def("rate", 4, 0.1, 20), def("depth", 0.5, 0, 1)), newTremolo},
		{meta("vibrato", "Vibrato (pitch modulation)", Modulation,
			def("rate", 5, 0.5, 20), def("depth", 0.5, 0, 1)), newVibrato},
		{meta("slicer", "Rhythmic amplitude gate", Modulation,
			def("rate", 8, 0.1, 100), def("phase", 0, 0, 1), def("width", 0.5, 0, 1)), newSlicer},
		{meta("octaver", "Octave shifter (sub and upper octaves)", Other,
			def("octave", -1, -2, 2), def("mix", 0.5, 0, 1)), newOctaver},
	}
}

// modDelay is a stereo delay line read at a fractional position.
type modDelay struct {
	left, right *dsp.DelayLine
}

func newModDelay(maxSeconds, sampleRate float32) modDelay {
	n := dsp.SecondsToSamples(maxSeconds, sampleRate) + 4
	return modDelay{left: dsp.NewDelayLine(n), right: dsp.NewDelayLine(n)}
}

func (d modDelay) reset() {
	d.left.Reset()
	d.right.Reset()
}

// chorusUnit runs one multi-voice chorus per channel. Separation sets the
// base delay and variation the sweep depth as a fraction of it; the right
// channel sweeps slightly faster for stereo width. Moving either control
// resizes the chorus delay line.
type chorusUnit struct {
	sep, variation, rate, mix cached
	fx                        [2]*effects.Chorus
}

const (
	chorusMinDelay   = 0.001
	chorusRightSpeed = 1.1
)

func newChorus(ctx Context, c *Controls) (Unit, error) {
	u := &chorusUnit{
		sep:       track(c.Param("separation")),
		variation: track(c.Param("variation")),
		rate:      track(c.Param("mod_frequency")),
		mix:       track(c.Param("mix")),
	}
	for i := range u.fx {
		fx, err := effects.NewChorus()
		if err == nil {
			err = fx.SetSampleRate(float64(ctx.SampleRate))
		}
		if err != nil {
			return nil, fmt.Errorf("chorus: %w", err)
		}
		u.fx[i] = fx
	}
	if err := u.sync(); err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}
	return u, nil
}

func (u *chorusUnit) sync() error {
	sep, sepMoved := u.sep.changed()
	v, varMoved := u.variation.changed()
	if sepMoved || varMoved {
		base := math.Max(sep, chorusMinDelay)
		for _, fx := range u.fx {
			if err := fx.SetBaseDelay(base); err != nil {
				return err
			}
			if err := fx.SetDepth(base * v); err != nil {
				return err
			}
		}
	}
	if hz, ok := u.rate.changed(); ok {
		if err := u.fx[0].SetSpeedHz(hz); err != nil {
			return err
		}
		if err := u.fx[1].SetSpeedHz(hz * chorusRightSpeed); err != nil {
			return err
		}
	}
	if m, ok := u.mix.changed(); ok {
		for _, fx := range u.fx {
			if err := fx.SetMix(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *chorusUnit) Process(l, r float32) (float32, float32) {
	_ = u.sync()
	return float32(u.fx[0].ProcessSample(float64(l))), float32(u.fx[1].ProcessSample(float64(r)))
}

func (u *chorusUnit) Reset() {
	for _, fx := range u.fx {
		fx.Reset()
	}
}

// flangerUnit sweeps a short feedback delay between 1 ms and 1 ms + depth.
type flangerUnit struct {
	depth, rate, feedback, mix *param.Shared
	sampleRate                 float32
	lfo                        *dsp.LFO
	line                       modDelay
	fbL, fbR                   float32
}

const flangerBase = 0.001

func newFlanger(ctx Context, c *Controls) (Unit, error) {
	return &flangerUnit{
		depth:      c.Param("depth"),
		rate:       c.Param("rate"),
		feedback:   c.Param("feedback"),
		mix:        c.Param("mix"),
		sampleRate: ctx.SampleRate,
		lfo:        dsp.NewLFO(dsp.LFOTriangle, 0),
		line:       newModDelay(flangerBase+0.02, ctx.SampleRate),
	}, nil
}

func (u *flangerUnit) Process(l, r float32) (float32, float32) {
	mod := dsp.Unipolar(u.lfo.Next(u.rate.Load(), u.sampleRate))
	d := (flangerBase + u.depth.Load()*mod) * u.sampleRate
	fb := u.feedback.Load()
	u.line.left.Write(l + fb*u.fbL)
	u.line.right.Write(r + fb*u.fbR)
	u.fbL = dsp.FlushDenormals(u.line.left.ReadFractional(d))
	u.fbR = dsp.FlushDenormals(u.line.right.ReadFractional(d))
	m := u.mix.Load()
	return mix(l, u.fbL, m), mix(r, u.fbR, m)
}

func (u *flangerUnit) Reset() {
	u.line.reset()
	u.lfo.Reset(0)
	u.fbL, u.fbR = 0, 0
}

const maxPhaserStages = 12

// allpass1 is a first-order allpass section.
type allpass1 struct {
	x1, y1 float32
}

func (a *allpass1) process(x, coef float32) float32 {
	y := dsp.FlushDenormals(coef*x + a.x1 - coef*a.y1)
	a.x1, a.y1 = x, y
	return y
}

// phaserUnit runs a chain of first-order allpasses swept between 200 Hz and
// 2 kHz and mixes it equally with the dry signal.
type phaserUnit struct {
	rate, depth, feedback, stages *param.Shared
	sampleRate                    float32
	lfo                           *dsp.LFO
	left, right                   [maxPhaserStages]allpass1
	fbL, fbR                      float32
}

func newPhaser(ctx Context, c *Controls) (Unit, error) {
	return &phaserUnit{
		rate:       c.Param("rate"),
		depth:      c.Param("depth"),
		feedback:   c.Param("feedback"),
		stages:     c.Param("stages"),
		sampleRate: ctx.SampleRate,
		lfo:        dsp.NewLFO(dsp.LFOSine, 0),
	}, nil
}

func (u *phaserUnit) Process(l, r float32) (float32, float32) {
	mod := dsp.Unipolar(u.lfo.Next(u.rate.Load(), u.sampleRate)) * u.depth.Load()
	fc := 200 * math.Pow(10, float64(mod))
	t := math.Tan(math.Pi * math.Min(fc, 0.45*float64(u.sampleRate)) / float64(u.sampleRate))
	coef := float32((t - 1) / (t + 1))
	n := int(dsp.Clamp(u.stages.Load(), 2, maxPhaserStages))
	fb := u.feedback.Load()

	wl, wr := l+fb*u.fbL, r+fb*u.fbR
	for i := 0; i < n; i++ {
		wl = u.left[i].process(wl, coef)
		wr = u.right[i].process(wr, coef)
	}
	u.fbL, u.fbR = wl, wr
	return 0.5 * (l + wl), 0.5 * (r + wr)
}

func (u *phaserUnit) Reset() {
	u.left = [maxPhaserStages]allpass1{}
	u.right = [maxPhaserStages]allpass1{}
	u.fbL, u.fbR = 0, 0
	u.lfo.Reset(0)
}

type tremoloUnit struct {
	rate, depth *param.Shared
	sampleRate  float32
	lfo         *dsp.LFO
}

func newTremolo(ctx Context, c *Controls) (Unit, error) {
	return &tremoloUnit{
		rate:       c.Param("rate"),
		depth:      c.Param("depth"),
		sampleRate: ctx.SampleRate,
		lfo:        dsp.NewLFO(dsp.LFOSine, 0),
	}, nil
}

func (u *tremoloUnit) Process(l, r float32) (float32, float32) {
	g := 1 - u.depth.Load()*dsp.Unipolar(u.lfo.Next(u.rate.Load(), u.sampleRate))
	return l * g, r * g
}

func (u *tremoloUnit) Reset() { u.lfo.Reset(0) }

// vibratoUnit is a fully wet delay swept around 5 ms.
type vibratoUnit struct {
	rate, depth *param.Shared
	sampleRate  float32
	lfo         *dsp.LFO
	line        modDelay
}

const (
	vibratoCenter = 0.005
	vibratoSwing  = 0.004
)

func newVibrato(ctx Context, c *Controls) (Unit, error) {
	return &vibratoUnit{
		rate:       c.Param("rate"),
		depth:      c.Param("depth"),
		sampleRate: ctx.SampleRate,
		lfo:        dsp.NewLFO(dsp.LFOSine, 0),
		line:       newModDelay(vibratoCenter+vibratoSwing, ctx.SampleRate),
	}, nil
}

func (u *vibratoUnit) Process(l, r float32) (float32, float32) {
	mod := u.lfo.Next(u.rate.Load(), u.sampleRate)
	d := (vibratoCenter + vibratoSwing*u.depth.Load()*mod) * u.sampleRate
	u.line.left.Write(l)
	u.line.right.Write(r)
	return u.line.left.ReadFractional(d), u.line.right.ReadFractional(d)
}

func (u *vibratoUnit) Reset() {
	u.line.reset()
	u.lfo.Reset(0)
}

// slicerUnit gates the signal with a pulse of the given duty cycle. The gate
// edges are smoothed over 1 ms.
type slicerUnit struct {
	rate, phase, width *param.Shared
	sampleRate         float32
	pos                float64
	coef               float32
	gain               float32
}

func newSlicer(ctx Context, c *Controls) (Unit, error) {
	return &slicerUnit{
		rate:       c.Param("rate"),
		phase:      c.Param("phase"),
		width:      c.Param("width"),
		sampleRate: ctx.SampleRate,
		coef:       timeCoef(0.001, ctx.SampleRate),
		gain:       1,
	}, nil
}

func (u *slicerUnit) Process(l, r float32) (float32, float32) {
	p := u.pos + float64(u.phase.Load())
	p -= math.Floor(p)
	var target float32
	if p < float64(u.width.Load()) {
		target = 1
	}
	u.gain = dsp.FlushDenormals(target + u.coef*(u.gain-target))
	u.pos += float64(u.rate.Load()) / float64(u.sampleRate)
	u.pos -= math.Floor(u.pos)
	return l * u.gain, r * u.gain
}

func (u *slicerUnit) Reset() {
	u.pos = 0
	u.gain = 1
}

// octaveDivider produces a square wave at half the input frequency, scaled by
// the input envelope.
type octaveDivider struct {
	last  float32
	state float32
	env   float32
}

func (o *octaveDivider) process(x, envCoef float32) float32 {
	if o.last <= 0 && x > 0 {
		o.state = -o.state
	}
	o.last = x
	a := float32(math.Abs(float64(x)))
	o.env = dsp.FlushDenormals(a + envCoef*(o.env-a))
	return o.state * o.env
}

type octaveChannel struct {
	sub1, sub2 octaveDivider
	dc1, dc2   float32
}

func newOctaveChannel() octaveChannel {
	return octaveChannel{sub1: octaveDivider{state: 1}, sub2: octaveDivider{state: 1}}
}

// rectify doubles the frequency of x and removes the resulting DC term.
func rectify(x float32, dc *float32, coef float32) float32 {
	y := float32(math.Abs(float64(x)))
	*dc = dsp.FlushDenormals(y + coef*(*dc-y))
	return 2 * (y - *dc)
}

// process shifts x by octave whole octaves: down by zero-crossing division,
// up by full-wave rectification.
func (c *octaveChannel) process(x float32, octave int, envCoef, dcCoef float32) float32 {
	switch octave {
	case -2:
		return c.sub2.process(c.sub1.process(x, envCoef), envCoef)
	case -1:
		return c.sub1.process(x, envCoef)
	case 1:
		return rectify(x, &c.dc1, dcCoef)
	case 2:
		return rectify(rectify(x, &c.dc1, dcCoef), &c.dc2, dcCoef)
	default:
		return x
	}
}

type octaverUnit struct {
	octave, mix     *param.Shared
	envCoef, dcCoef float32
	left, right     octaveChannel
}

func newOctaver(ctx Context, c *Controls) (Unit, error) {
	return &octaverUnit{
		octave:  c.Param("octave"),
		mix:     c.Param("mix"),
		envCoef: timeCoef(0.01, ctx.SampleRate),
		dcCoef:  timeCoef(0.02, ctx.SampleRate),
		left:    newOctaveChannel(),
		right:   newOctaveChannel(),
	}, nil
}

func (u *octaverUnit) Process(l, r float32) (float32, float32) {
	oct := int(math.Round(float64(u.octave.Load())))
	m := u.mix.Load()
	wl := u.left.process(l, oct, u.envCoef, u.dcCoef)
	wr := u.right.process(r, oct, u.envCoef, u.dcCoef)
	return mix(l, wl, m), mix(r, wr, m)
}

func (u *octaverUnit) Reset() {
	u.left = newOctaveChannel()
	u.right = newOctaveChannel()
}
