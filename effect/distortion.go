package effect

import (
	"math"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func distortionEffects() []builtinEntry {
	return []builtinEntry{
		{meta("distortion", "Distortion effect", Distortion, def("amount", 0.5, 0, 1)), newDistortion},
		{meta("tape_saturation", "Tape saturation (warm analog feel)", Distortion,
			def("drive", 0.5, 0, 1), def("warmth", 0.5, 0, 1), def("mix", 1, 0, 1)), newTape},
		{meta("bitcrusher", "Bitcrusher (reduces bit depth)", Distortion, def("bits", 8, 1, 16)), newBitcrusher},
		{meta("krush", "Bit reduction and sample rate reduction", Distortion,
			def("bits", 8, 1, 16), def("sample_rate", 8000, 1000, 48000), def("mix", 1, 0, 1)), newKrush},
		{meta("lofi", "Lo-fi effect (retro degradation)", Distortion,
			def("amount", 0.5, 0, 1), def("mix", 1, 0, 1)), newLofi},
		{meta("ring_mod", "Ring modulator for metallic tones", Distortion,
			def("freq", 440, 20, 5000), def("mix", 0.5, 0, 1)), newRingMod},
	}
}

// shape is a normalized tanh waveshaper: drive 1 is near linear and the
// output never exceeds 1.
func shape(x, drive float32) float32 {
	return float32(math.Tanh(float64(x*drive)) / math.Tanh(float64(drive)))
}

type distortionUnit struct {
	amount *param.Shared
}

func newDistortion(_ Context, c *Controls) (Unit, error) {
	return &distortionUnit{amount: c.Param("amount")}, nil
}

func (u *distortionUnit) Process(l, r float32) (float32, float32) {
	drive := 1 + 20*u.amount.Load()
	return shape(l, drive), shape(r, drive)
}

func (u *distortionUnit) Reset() {}

// tapeUnit adds asymmetric saturation followed by a warmth lowpass.
type tapeUnit struct {
	drive, warmth, mix *param.Shared
	sampleRate         float32
	lpL, lpR           float32
}

func newTape(ctx Context, c *Controls) (Unit, error) {
	return &tapeUnit{
		drive:      c.Param("drive"),
		warmth:     c.Param("warmth"),
		mix:        c.Param("mix"),
		sampleRate: ctx.SampleRate,
	}, nil
}

func (u *tapeUnit) Process(l, r float32) (float32, float32) {
	drive := 1 + 6*u.drive.Load()
	// Warmth lowers the lowpass from 18 kHz towards 4 kHz.
	fc := 18000 - 14000*u.warmth.Load()
	a := float32(1 - math.Exp(-2*math.Pi*float64(fc)/float64(u.sampleRate)))
	m := u.mix.Load()

	sl := shape(l+0.1*l*l, drive)
	sr := shape(r+0.1*r*r, drive)
	u.lpL = dsp.FlushDenormals(u.lpL + a*(sl-u.lpL))
	u.lpR = dsp.FlushDenormals(u.lpR + a*(sr-u.lpR))
	return mix(l, u.lpL, m), mix(r, u.lpR, m)
}

func (u *tapeUnit) Reset() { u.lpL, u.lpR = 0, 0 }

func quantize(x, bits float32) float32 {
	steps := float32(math.Exp2(float64(bits) - 1))
	return float32(math.Round(float64(x*steps))) / steps
}

type bitcrusherUnit struct {
	bits *param.Shared
}

func newBitcrusher(_ Context, c *Controls) (Unit, error) {
	return &bitcrusherUnit{bits: c.Param("bits")}, nil
}

func (u *bitcrusherUnit) Process(l, r float32) (float32, float32) {
	b := u.bits.Load()
	return quantize(l, b), quantize(r, b)
}

func (u *bitcrusherUnit) Reset() {}

// decimator holds the input for sampleRate/target samples.
type decimator struct {
	phase      float32
	heldL      float32
	heldR      float32
	sampleRate float32
}

func (d *decimator) next(l, r, target float32) (float32, float32) {
	d.phase += target / d.sampleRate
	if d.phase >= 1 {
		d.phase -= float32(int(d.phase))
		d.heldL, d.heldR = l, r
	}
	return d.heldL, d.heldR
}

func (d *decimator) reset() {
	// Start primed so the first input is captured.
	d.phase = 1
	d.heldL, d.heldR = 0, 0
}

type krushUnit struct {
	bits, rate, mix *param.Shared
	dec             decimator
}

func newKrush(ctx Context, c *Controls) (Unit, error) {
	u := &krushUnit{
		bits: c.Param("bits"),
		rate: c.Param("sample_rate"),
		mix:  c.Param("mix"),
		dec:  decimator{sampleRate: ctx.SampleRate},
	}
	u.dec.reset()
	return u, nil
}

func (u *krushUnit) Process(l, r float32) (float32, float32) {
	hl, hr := u.dec.next(l, r, u.rate.Load())
	b, m := u.bits.Load(), u.mix.Load()
	return mix(l, quantize(hl, b), m), mix(r, quantize(hr, b), m)
}

func (u *krushUnit) Reset() { u.dec.reset() }

// lofiUnit ties bit depth, sample rate and bandwidth to a single amount.
type lofiUnit struct {
	amount, mix *param.Shared
	sampleRate  float32
	dec         decimator
	lpL, lpR    float32
}

func newLofi(ctx Context, c *Controls) (Unit, error) {
	u := &lofiUnit{
		amount:     c.Param("amount"),
		mix:        c.Param("mix"),
		sampleRate: ctx.SampleRate,
		dec:        decimator{sampleRate: ctx.SampleRate},
	}
	u.dec.reset()
	return u, nil
}

func (u *lofiUnit) Process(l, r float32) (float32, float32) {
	amt := u.amount.Load()
	bits := 16 - 12*amt
	target := u.sampleRate * (1 - 0.85*amt)
	fc := 16000 - 13000*amt
	a := float32(1 - math.Exp(-2*math.Pi*float64(fc)/float64(u.sampleRate)))

	hl, hr := u.dec.next(l, r, target)
	u.lpL = dsp.FlushDenormals(u.lpL + a*(quantize(hl, bits)-u.lpL))
	u.lpR = dsp.FlushDenormals(u.lpR + a*(quantize(hr, bits)-u.lpR))
	m := u.mix.Load()
	return mix(l, u.lpL, m), mix(r, u.lpR, m)
}

func (u *lofiUnit) Reset() {
	u.dec.reset()
	u.lpL, u.lpR = 0, 0
}

type ringModUnit struct {
	freq, mix  *param.Shared
	sampleRate float32
	osc        *dsp.Oscillator
}

func newRingMod(ctx Context, c *Controls) (Unit, error) {
	return &ringModUnit{
		freq:       c.Param("freq"),
		mix:        c.Param("mix"),
		sampleRate: ctx.SampleRate,
		osc:        dsp.NewOscillator(dsp.Sine, 0),
	}, nil
}

func (u *ringModUnit) Process(l, r float32) (float32, float32) {
	carrier := u.osc.Next(u.freq.Load(), u.sampleRate)
	m := u.mix.Load()
	return mix(l, l*carrier, m), mix(r, r*carrier, m)
}

func (u *ringModUnit) Reset() { u.osc.Reset(0) }
