package effect

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects"

	"github.com/cwbudde/algo-rack/dsp"
	"github.com/cwbudde/algo-rack/param"
)

func dynamicsEffects() []builtinEntry {
	return []builtinEntry{
		{meta("compressor", "Dynamic range compressor", Dynamics,
			def("threshold", -20, -60, 0), def("ratio", 4, 1, 20),
			def("attack", 0.01, 0.001, 0.1), def("release", 0.1, 0.01, 1),
			def("makeup", 0, 0, 24), def("knee", 0, 0, 24)), newCompressor},
		{meta("limiter", "Limiter (prevents clipping)", Dynamics,
			def("threshold", -1, -24, 0), def("release", 0.1, 0.01, 1)), newLimiter},
		{meta("gate", "Noise gate", Dynamics,
			def("threshold", -40, -80, 0),
			def("attack", 0.001, 0.0001, 0.1), def("release", 0.05, 0.001, 1)), newGate},
		{meta("sidechain_compressor", "Compressor keyed by an external signal", Dynamics,
			def("threshold", -20, -60, 0), def("ratio", 4, 1, 20),
			def("attack", 0.01, 0.001, 0.1), def("release", 0.1, 0.01, 1)), newSidechainCompressor},
		{meta("sidechain_gate", "Gate keyed by an external signal", Dynamics,
			def("threshold", -40, -80, 0),
			def("attack", 0.001, 0.0001, 0.1), def("release", 0.05, 0.001, 1)), newSidechainGate},
	}
}

// cached remembers the last value pushed into a runtime setter so setters run
// only when a control moves.
type cached struct {
	src  *param.Shared
	last float32
}

func track(src *param.Shared) cached {
	return cached{src: src, last: float32(math.NaN())}
}

// changed loads the control and reports whether it differs from the value
// last seen.
func (c *cached) changed() (float64, bool) {
	v := c.src.Load()
	if v == c.last {
		return float64(v), false
	}
	c.last = v
	return float64(v), true
}

func newCompressorPair(sampleRate float32) ([2]*effects.Compressor, error) {
	var pair [2]*effects.Compressor
	for i := range pair {
		fx, err := effects.NewCompressor(float64(sampleRate))
		if err != nil {
			return pair, err
		}
		if err := fx.SetAutoMakeup(false); err != nil {
			return pair, err
		}
		fx.ResetMetrics()
		pair[i] = fx
	}
	return pair, nil
}

// compressorUnit runs one soft-knee compressor per channel.
type compressorUnit struct {
	threshold, ratio, attack, release, makeup, knee cached
	fx                                              [2]*effects.Compressor
}

func newCompressor(ctx Context, c *Controls) (Unit, error) {
	fx, err := newCompressorPair(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	u := &compressorUnit{
		threshold: track(c.Param("threshold")),
		ratio:     track(c.Param("ratio")),
		attack:    track(c.Param("attack")),
		release:   track(c.Param("release")),
		makeup:    track(c.Param("makeup")),
		knee:      track(c.Param("knee")),
		fx:        fx,
	}
	if err := u.sync(); err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	return u, nil
}

// sync pushes moved controls into both runtimes. Times are stored in seconds
// and set in milliseconds.
func (u *compressorUnit) sync() error {
	var errs [6]error
	if v, ok := u.threshold.changed(); ok {
		errs[0] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetThreshold(v) })
	}
	if v, ok := u.ratio.changed(); ok {
		errs[1] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetRatio(v) })
	}
	if v, ok := u.attack.changed(); ok {
		errs[2] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetAttack(v * 1000) })
	}
	if v, ok := u.release.changed(); ok {
		errs[3] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetRelease(v * 1000) })
	}
	if v, ok := u.makeup.changed(); ok {
		errs[4] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetMakeupGain(v) })
	}
	if v, ok := u.knee.changed(); ok {
		errs[5] = eachCompressor(u.fx, func(fx *effects.Compressor) error { return fx.SetKnee(v) })
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func eachCompressor(pair [2]*effects.Compressor, set func(*effects.Compressor) error) error {
	for _, fx := range pair {
		if err := set(fx); err != nil {
			return err
		}
	}
	return nil
}

// Process ignores setter errors: controls are clamped to ranges the runtime
// accepts, and the previous setting stays in force otherwise.
func (u *compressorUnit) Process(l, r float32) (float32, float32) {
	_ = u.sync()
	return float32(u.fx[0].ProcessSample(float64(l))), float32(u.fx[1].ProcessSample(float64(r)))
}

func (u *compressorUnit) Reset() {
	for _, fx := range u.fx {
		fx.Reset()
		fx.ResetMetrics()
	}
}

// GainReductionDB reports the deepest gain reduction either channel applied
// since the last Reset, as a negative dB value.
func (u *compressorUnit) GainReductionDB() float32 {
	g := math.Min(u.fx[0].GetMetrics().GainReduction, u.fx[1].GetMetrics().GainReduction)
	return dsp.GainToDB(float32(g))
}

// limiterUnit runs one fast high-ratio limiter per channel and clips whatever
// overshoots the ceiling during the attack.
type limiterUnit struct {
	threshold, release cached
	fx                 [2]*effects.Limiter
	ceil               float32
}

func newLimiter(ctx Context, c *Controls) (Unit, error) {
	u := &limiterUnit{
		threshold: track(c.Param("threshold")),
		release:   track(c.Param("release")),
	}
	for i := range u.fx {
		fx, err := effects.NewLimiter(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("limiter: %w", err)
		}
		u.fx[i] = fx
	}
	if err := u.sync(); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}
	return u, nil
}

func (u *limiterUnit) sync() error {
	if v, ok := u.threshold.changed(); ok {
		u.ceil = dsp.DBToGain(float32(v))
		for _, fx := range u.fx {
			if err := fx.SetThreshold(v); err != nil {
				return err
			}
		}
	}
	if v, ok := u.release.changed(); ok {
		for _, fx := range u.fx {
			if err := fx.SetRelease(v * 1000); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *limiterUnit) Process(l, r float32) (float32, float32) {
	_ = u.sync()
	l = float32(u.fx[0].ProcessSample(float64(l)))
	r = float32(u.fx[1].ProcessSample(float64(r)))
	return dsp.Clamp(l, -u.ceil, u.ceil), dsp.Clamp(r, -u.ceil, u.ceil)
}

func (u *limiterUnit) Reset() {
	for _, fx := range u.fx {
		fx.Reset()
	}
}

// follower is a stereo-linked peak detector with separate attack and release
// time constants.
type follower struct {
	sampleRate  float32
	attackTime  float32
	releaseTime float32
	attackCoef  float32
	releaseCoef float32
	env         float32
}

func timeCoef(seconds, sampleRate float32) float32 {
	if seconds <= 0 {
		return 0
	}
	return float32(math.Exp(-1 / (float64(seconds) * float64(sampleRate))))
}

func (f *follower) setTimes(attack, release float32) {
	if attack != f.attackTime {
		f.attackTime = attack
		f.attackCoef = timeCoef(attack, f.sampleRate)
	}
	if release != f.releaseTime {
		f.releaseTime = release
		f.releaseCoef = timeCoef(release, f.sampleRate)
	}
}

// follow moves the envelope toward target with the attack coefficient when
// rising and the release coefficient when falling.
func (f *follower) follow(target float32) float32 {
	c := f.releaseCoef
	if target > f.env {
		c = f.attackCoef
	}
	f.env = dsp.FlushDenormals(target + c*(f.env-target))
	return f.env
}

func (f *follower) next(l, r float32) float32 {
	return f.follow(peak(l, r))
}

func peak(l, r float32) float32 {
	return float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
}

func newFollower(sampleRate float32) follower {
	return follower{sampleRate: sampleRate, attackTime: -1, releaseTime: -1}
}

// gateUnit opens when the detector exceeds threshold and ramps its gain with
// the attack and release times.
type gateUnit struct {
	threshold, attack, release *param.Shared
	det                        follower
	ramp                       follower
}

func newGate(ctx Context, c *Controls) (Unit, error) {
	det := newFollower(ctx.SampleRate)
	det.setTimes(0, 0.01)
	return &gateUnit{
		threshold: c.Param("threshold"),
		attack:    c.Param("attack"),
		release:   c.Param("release"),
		det:       det,
		ramp:      newFollower(ctx.SampleRate),
	}, nil
}

// gateGain ramps toward 1 while level is at or above the threshold gain and
// toward 0 below it.
func gateGain(ramp *follower, level, threshold, attack, release float32) float32 {
	ramp.setTimes(attack, release)
	var target float32
	if level >= dsp.DBToGain(threshold) {
		target = 1
	}
	return ramp.follow(target)
}

func (u *gateUnit) Process(l, r float32) (float32, float32) {
	g := gateGain(&u.ramp, u.det.next(l, r), u.threshold.Load(), u.attack.Load(), u.release.Load())
	return l * g, r * g
}

func (u *gateUnit) Reset() {
	u.det.env = 0
	u.ramp.env = 0
}

// sidechainCompressorUnit ducks the program by the key's level. Its envelope
// follows the key only while the key is above threshold, and the gain comes
// from a hard-knee compressor curve.
type sidechainCompressorUnit struct {
	threshold, ratio, attack, release cached
	env                               follower
	curve                             *effects.Compressor
	thr                               float32
}

func newSidechainCompressor(ctx Context, c *Controls) (Unit, error) {
	curve, err := effects.NewCompressor(float64(ctx.SampleRate))
	if err == nil {
		err = curve.SetKnee(0)
	}
	if err == nil {
		err = curve.SetAutoMakeup(false)
	}
	if err == nil {
		err = curve.SetMakeupGain(0)
	}
	if err != nil {
		return nil, fmt.Errorf("sidechain_compressor: %w", err)
	}
	u := &sidechainCompressorUnit{
		threshold: track(c.Param("threshold")),
		ratio:     track(c.Param("ratio")),
		attack:    track(c.Param("attack")),
		release:   track(c.Param("release")),
		env:       newFollower(ctx.SampleRate),
		curve:     curve,
	}
	if err := u.sync(); err != nil {
		return nil, fmt.Errorf("sidechain_compressor: %w", err)
	}
	return u, nil
}

func (u *sidechainCompressorUnit) sync() error {
	if v, ok := u.threshold.changed(); ok {
		u.thr = float32(v)
		if err := u.curve.SetThreshold(v); err != nil {
			return err
		}
	}
	if v, ok := u.ratio.changed(); ok {
		if err := u.curve.SetRatio(v); err != nil {
			return err
		}
	}
	a, _ := u.attack.changed()
	r, _ := u.release.changed()
	u.env.setTimes(float32(a), float32(r))
	return nil
}

// Process without a key leaves the signal untouched.
func (u *sidechainCompressorUnit) Process(l, r float32) (float32, float32) { return l, r }

func (u *sidechainCompressorUnit) ProcessSidechain(l, r, keyL, keyR float32) (float32, float32) {
	_ = u.sync()
	level := peak(keyL, keyR)
	if dsp.GainToDB(level) <= u.thr {
		level = 0
	}
	env := float64(u.env.follow(level))
	if env <= 0 {
		return l, r
	}
	g := float32(u.curve.CalculateOutputLevel(env) / env)
	return l * g, r * g
}

func (u *sidechainCompressorUnit) Reset() { u.env.env = 0 }

// sidechainGateUnit opens while the key is above threshold.
type sidechainGateUnit struct {
	threshold, attack, release *param.Shared
	ramp                       follower
}

func newSidechainGate(ctx Context, c *Controls) (Unit, error) {
	return &sidechainGateUnit{
		threshold: c.Param("threshold"),
		attack:    c.Param("attack"),
		release:   c.Param("release"),
		ramp:      newFollower(ctx.SampleRate),
	}, nil
}

// Process without a key leaves the signal untouched.
func (u *sidechainGateUnit) Process(l, r float32) (float32, float32) { return l, r }

func (u *sidechainGateUnit) ProcessSidechain(l, r, keyL, keyR float32) (float32, float32) {
	g := gateGain(&u.ramp, peak(keyL, keyR), u.threshold.Load(), u.attack.Load(), u.release.Load())
	return l * g, r * g
}

func (u *sidechainGateUnit) Reset() { u.ramp.env = 0 }
