package synth

import (
	"math"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

// FilterMode selects the per-voice filter of a Patch.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterLowpass
	FilterHighpass
	FilterBandpass
)

var defaultEnv = dsp.ADSRConfig{Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: DefaultRelease}

// LFOTarget selects what a Patch LFO modulates.
type LFOTarget int

const (
	LFOPitch  LFOTarget = iota // mod_depth in cents
	LFOCutoff                  // mod_depth as a fraction of cutoff
	LFOAmp                     // mod_depth as a fraction of level
	LFODuty                    // mod_depth as a duty offset
)

// Layer is one oscillator of a Patch.
type Layer struct {
	Wave  dsp.Waveform
	Ratio float32 // multiple of the base frequency, 0 means 1
	Cents float32 // detune, scaled by the "detune" parameter
	Level float32
	Pan   float32 // -1 left .. 1 right
	Duty  float32 // pulse width for dsp.Pulse, 0 means 0.5
}

// Patch is a declarative synth voice: oscillator layers, optional noise,
// filter, envelope, LFO, FM and Karplus-Strong pluck. A *Patch is a Builder.
type Patch struct {
	Name        string
	Description string
	Category    Category

	Layers    []Layer
	Noise     float32
	PinkNoise bool

	Filter    FilterMode
	Cutoff    float32
	Res       float32
	FilterEnv float32 // cutoff multiplier added at envelope peak

	Env dsp.ADSRConfig
	Amp float32 // default amp, 0 means 1

	LFOShape  dsp.LFOShape
	LFORate   float32 // 0 disables the LFO
	LFODepth  float32
	LFOTarget LFOTarget

	FMRatio float32 // modulator frequency multiple
	FMIndex float32 // 0 disables FM; layers become sine carriers
	FMDecay float32 // seconds for the index to fall by 1/e, 0 holds

	Pluck   bool
	Damping float32

	Drive float32 // 0 disables the waveshaper
}

// Metadata implements Builder.
func (p *Patch) Metadata() Metadata {
	return Metadata{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Params:      p.defs(),
	}
}

func (p *Patch) defs() []param.Def {
	amp := p.Amp
	if amp == 0 {
		amp = 1
	}
	env := p.Env
	if env == (dsp.ADSRConfig{}) {
		env = defaultEnv
	}
	if env.Release <= 0 {
		env.Release = DefaultRelease
	}
	defs := []param.Def{
		param.NewDef(ParamAmp, amp, 0, 2),
		param.NewDef("attack", env.Attack, 0, 10),
		param.NewDef("decay", env.Decay, 0, 10),
		param.NewDef("sustain", env.Sustain, 0, 1),
		param.NewDef(ParamRelease, env.Release, 0.001, 20),
	}
	if p.Filter != FilterNone {
		defs = append(defs,
			param.NewDef(ParamCutoff, p.Cutoff, 20, 20000),
			param.NewDef(ParamResonance, p.Res, 0, 1),
		)
	}
	if p.detuned() {
		defs = append(defs, param.NewDef("detune", 1, 0, 4))
	}
	if p.pulsed() {
		defs = append(defs, param.NewDef("duty", p.pulseDuty(), 0.01, 0.99))
	}
	if p.LFORate > 0 {
		defs = append(defs,
			param.NewDef("mod_freq", p.LFORate, 0.01, 50),
			param.NewDef("mod_depth", p.LFODepth, 0, p.lfoDepthMax()),
		)
	}
	if p.FMIndex > 0 {
		defs = append(defs,
			param.NewDef("mod_index", p.FMIndex, 0, 20),
			param.NewDef("mod_ratio", p.FMRatio, 0.01, 16),
		)
	}
	if p.Pluck {
		defs = append(defs, param.NewDef("damping", p.Damping, 0, 1))
	}
	if p.Drive > 0 {
		defs = append(defs, param.NewDef("drive", p.Drive, 0, 10))
	}
	return defs
}

func (p *Patch) detuned() bool {
	for _, l := range p.Layers {
		if l.Cents != 0 {
			return true
		}
	}
	return false
}

func (p *Patch) pulsed() bool {
	for _, l := range p.Layers {
		if l.Wave == dsp.Pulse {
			return true
		}
	}
	return false
}

func (p *Patch) pulseDuty() float32 {
	for _, l := range p.Layers {
		if l.Wave == dsp.Pulse && l.Duty > 0 {
			return l.Duty
		}
	}
	return 0.5
}

func (p *Patch) lfoDepthMax() float32 {
	switch p.LFOTarget {
	case LFOPitch:
		return 1200
	case LFODuty:
		return 0.49
	default:
		return 1
	}
}

// Build implements Builder.
func (p *Patch) Build(ctx Context, freq float32, params param.Values) (Unit, *VoiceControls, error) {
	ctx = ctx.normalized()
	controls := NewVoiceControls(freq, p.defs(), params)
	u := &patchUnit{
		p:        p,
		sr:       ctx.SampleRate,
		c:        controls,
		attack:   controls.Params["attack"],
		decay:    controls.Params["decay"],
		sustain:  controls.Params["sustain"],
		detune:   controls.Params["detune"],
		duty:     controls.Params["duty"],
		modFreq:  controls.Params["mod_freq"],
		modDepth: controls.Params["mod_depth"],
		modIndex: controls.Params["mod_index"],
		modRatio: controls.Params["mod_ratio"],
		damping:  controls.Params["damping"],
		drive:    controls.Params["drive"],
	}
	u.env = dsp.NewADSR(u.envConfig(), u.sr)

	sum := p.Noise
	u.oscs = make([]*dsp.Oscillator, len(p.Layers))
	u.ratios = make([]float32, len(p.Layers))
	u.panL = make([]float32, len(p.Layers))
	u.panR = make([]float32, len(p.Layers))
	u.carriers = make([]float64, len(p.Layers))
	for i, l := range p.Layers {
		// Spread start phases so stacked layers do not sum coherently.
		u.oscs[i] = dsp.NewOscillator(l.Wave, float64(i)*0.618034)
		if l.Duty > 0 {
			u.oscs[i].Duty = l.Duty
		}
		u.panL[i] = 1 - maxf(l.Pan, 0)
		u.panR[i] = 1 + minf(l.Pan, 0)
		sum += absf(l.Level)
	}
	u.norm = 1
	if sum > 1 {
		u.norm = 1 / sum
	}
	u.detuneScale = -1
	u.updateDetune()

	if p.Noise > 0 || p.Pluck {
		u.noise = dsp.NewNoise(0x1234567, p.PinkNoise)
	}
	if p.Filter != FilterNone {
		u.filterL = dsp.NewSVF(u.sr, p.Cutoff, p.Res)
		u.filterR = dsp.NewSVF(u.sr, p.Cutoff, p.Res)
	}
	if p.LFORate > 0 {
		u.lfo = dsp.NewLFO(p.LFOShape, 0)
	}
	if p.FMDecay > 0 {
		u.fmDecayCoef = float32(math.Exp(-1 / (float64(p.FMDecay) * float64(u.sr))))
	}
	if p.Pluck {
		u.pluck = dsp.NewDelayLine(int(u.sr/20) + 4)
	}
	return u, controls, nil
}

type patchUnit struct {
	p  *Patch
	sr float32
	c  *VoiceControls

	attack, decay, sustain *param.Shared
	detune, duty           *param.Shared
	modFreq, modDepth      *param.Shared
	modIndex, modRatio     *param.Shared
	damping, drive         *param.Shared

	env  *dsp.ADSR
	gate float32

	oscs        []*dsp.Oscillator
	ratios      []float32
	panL, panR  []float32
	norm        float32
	detuneScale float32

	carriers    []float64
	modPhase    float64
	fmEnv       float32
	fmDecayCoef float32

	noise            *dsp.Noise
	filterL, filterR *dsp.SVF
	lfo              *dsp.LFO

	pluck      *dsp.DelayLine
	exciteLeft int
}

func (u *patchUnit) envConfig() dsp.ADSRConfig {
	return dsp.ADSRConfig{
		Attack:  u.attack.Load(),
		Decay:   u.decay.Load(),
		Sustain: u.sustain.Load(),
		Release: u.c.Release.Load(),
	}
}

func (u *patchUnit) updateDetune() {
	scale := float32(1)
	if u.detune != nil {
		scale = u.detune.Load()
	}
	if scale == u.detuneScale {
		return
	}
	u.detuneScale = scale
	for i, l := range u.p.Layers {
		ratio := l.Ratio
		if ratio == 0 {
			ratio = 1
		}
		u.ratios[i] = ratio * CentsToRatio(l.Cents*scale)
	}
}

func (u *patchUnit) trigger(freq float32) {
	u.env.SetConfig(u.envConfig())
	u.fmEnv = 1
	if u.pluck != nil && freq > 0 {
		u.exciteLeft = int(u.sr / freq)
	}
}

// Tick implements Unit.
func (u *patchUnit) Tick() (float32, float32) {
	c := u.c
	gate := c.Gate.Load()
	freq := c.Freq.Load() * c.PitchBend.Load()
	if gate > 0 && gate != u.gate {
		u.trigger(freq)
	}
	u.gate = gate

	env := u.env.Next(gate, c.Release.Load())
	if env == 0 && u.env.Stage() == dsp.StageIdle {
		return 0, 0
	}

	var lfo float32
	if u.lfo != nil {
		lfo = u.lfo.Next(u.modFreq.Load(), u.sr) * u.modDepth.Load()
		if u.p.LFOTarget == LFOPitch {
			freq *= CentsToRatio(lfo)
		}
	}
	u.updateDetune()

	var l, r float32
	if u.pluck != nil {
		s := u.pluckNext(freq)
		l, r = s, s
	} else {
		l, r = u.layers(freq, lfo)
	}
	if u.p.Noise > 0 && !u.p.Pluck {
		n := u.noise.Next() * u.p.Noise
		l += n
		r += n
	}
	l *= u.norm
	r *= u.norm

	if u.filterL != nil {
		cutoff := c.Cutoff.Load() * (1 + u.p.FilterEnv*env) * (1 + c.Pressure.Load())
		if u.p.LFOTarget == LFOCutoff {
			cutoff *= 1 + lfo
		}
		res := c.Resonance.Load()
		u.filterL.Set(cutoff, res)
		u.filterR.Set(cutoff, res)
		l = u.filterOut(u.filterL, l)
		r = u.filterOut(u.filterR, r)
	}
	if u.drive != nil {
		if d := u.drive.Load(); d > 0 {
			l = softClip(l * (1 + d))
			r = softClip(r * (1 + d))
		}
	}

	gain := env * c.Amp.Load()
	if u.p.LFOTarget == LFOAmp && u.lfo != nil {
		gain *= 1 - 0.5*(lfo+absf(u.modDepth.Load()))
	}
	if u.filterL == nil {
		gain *= 1 + 0.5*c.Pressure.Load()
	}
	return l * gain, r * gain
}

func (u *patchUnit) layers(freq, lfo float32) (float32, float32) {
	var l, r float32
	fm := u.modIndex != nil
	var mod float64
	if fm {
		u.modPhase += float64(freq*u.modRatio.Load()) / float64(u.sr)
		u.modPhase -= math.Floor(u.modPhase)
		mod = float64(u.modIndex.Load()*u.fmEnv) * math.Sin(2*math.Pi*u.modPhase)
		if u.fmDecayCoef > 0 {
			u.fmEnv *= u.fmDecayCoef
		}
	}
	var duty float32
	if u.duty != nil {
		duty = u.duty.Load()
		if u.p.LFOTarget == LFODuty {
			duty += lfo
		}
	}
	for i, layer := range u.p.Layers {
		f := freq * u.ratios[i]
		var s float32
		if fm {
			u.carriers[i] += float64(f) / float64(u.sr)
			u.carriers[i] -= math.Floor(u.carriers[i])
			s = float32(math.Sin(2*math.Pi*u.carriers[i] + mod))
		} else {
			osc := u.oscs[i]
			if layer.Wave == dsp.Pulse && u.duty != nil {
				osc.Duty = duty
			}
			s = osc.Next(f, u.sr)
		}
		s *= layer.Level
		l += s * u.panL[i]
		r += s * u.panR[i]
	}
	return l, r
}

func (u *patchUnit) pluckNext(freq float32) float32 {
	period := float32(1)
	if freq > 0 {
		period = u.sr / freq
	}
	period = dsp.Clamp(period, 2, float32(u.pluck.Len()-3))
	var in float32
	if u.exciteLeft > 0 {
		in = u.noise.White()
		u.exciteLeft--
	}
	fb := 0.4995 - 0.025*u.damping.Load()
	y := in + fb*(u.pluck.ReadFractional(period-0.5)+u.pluck.ReadFractional(period+0.5))
	y = dsp.FlushDenormals(y)
	u.pluck.Write(y)
	return y
}

func (u *patchUnit) filterOut(f *dsp.SVF, x float32) float32 {
	lp, bp, hp := f.Process(x)
	switch u.p.Filter {
	case FilterHighpass:
		return hp
	case FilterBandpass:
		return bp
	default:
		return lp
	}
}

// Reset implements Unit.
func (u *patchUnit) Reset() {
	u.env.Reset()
	u.gate = 0
	u.fmEnv = 1
	u.modPhase = 0
	for i, o := range u.oscs {
		o.Reset(float64(i) * 0.618034)
		u.carriers[i] = 0
	}
	if u.filterL != nil {
		u.filterL.Reset()
		u.filterR.Reset()
	}
	if u.lfo != nil {
		u.lfo.Reset(0)
	}
	if u.pluck != nil {
		u.pluck.Reset()
		u.exciteLeft = 0
	}
}

func softClip(x float32) float32 {
	return x / (1 + absf(x))
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
