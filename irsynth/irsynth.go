// Package irsynth generates deterministic synthetic stereo impulse responses
// for the convolution reverbs.
package irsynth

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"slices"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Kind selects the reverberation model.
type Kind int

const (
	Room Kind = iota
	Hall
	Plate
)

var kindNames = [...]string{"room", "hall", "plate"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ir kind %q", s)
}

// Config controls IR generation. Generation is a pure function of Config.
type Config struct {
	Kind       Kind
	SampleRate int
	DurationS  float64
	Seed       int64

	PreDelayS   float64
	EarlyCount  int
	EarlySpanS  float64 // early reflections land in [PreDelayS, PreDelayS+EarlySpanS]
	LateLevel   float64
	StereoWidth float64
	Brightness  float64

	LowDecayS  float64
	HighDecayS float64

	// Plate only.
	Modes          int
	PlateRatio     float64 // Lx/Ly
	StiffnessRatio float64 // Dx/Dy

	FadeOutS      float64 // cosine fade at the end; 0 = none
	NormalizePeak float64
}

// DefaultConfig returns the preset for kind at sampleRate.
func DefaultConfig(kind Kind, sampleRate int) Config {
	c := Config{
		Kind:          kind,
		SampleRate:    sampleRate,
		Seed:          1,
		StereoWidth:   0.6,
		FadeOutS:      0.01,
		NormalizePeak: 0.9,
	}
	switch kind {
	case Hall:
		c.DurationS = 2.5
		c.PreDelayS = 0.02
		c.EarlyCount = 32
		c.EarlySpanS = 0.08
		c.LateLevel = 0.08
		c.StereoWidth = 0.8
		c.Brightness = 0.7
		c.LowDecayS = 2.2
		c.HighDecayS = 0.6
	case Plate:
		c.DurationS = 1.8
		c.LateLevel = 0.03
		c.StereoWidth = 0.5
		c.Brightness = 1.2
		c.LowDecayS = 1.6
		c.HighDecayS = 0.5
		c.Modes = 192
		c.PlateRatio = 1.4
		c.StiffnessRatio = 1.0
	default:
		c.DurationS = 0.8
		c.PreDelayS = 0.002
		c.EarlyCount = 24
		c.EarlySpanS = 0.05
		c.LateLevel = 0.06
		c.Brightness = 0.8
		c.LowDecayS = 0.7
		c.HighDecayS = 0.15
	}
	return c
}

func (c *Config) Validate() error {
	if c.Kind < Room || c.Kind > Plate {
		return fmt.Errorf("unknown ir kind %d", int(c.Kind))
	}
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.PreDelayS < 0 || c.PreDelayS >= c.DurationS {
		return fmt.Errorf("pre-delay must be in [0, duration)")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.EarlyCount > 0 && c.EarlySpanS <= 0 {
		return fmt.Errorf("early span must be > 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.StereoWidth < 0 {
		return fmt.Errorf("stereo width must be >= 0")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.Kind == Plate {
		if c.Modes < 1 {
			return fmt.Errorf("modes must be >= 1")
		}
		if c.PlateRatio <= 0 || c.StiffnessRatio <= 0 {
			return fmt.Errorf("plate ratio and stiffness ratio must be > 0")
		}
	}
	if c.FadeOutS < 0 {
		return fmt.Errorf("fade-out must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Length returns the IR length in samples.
func (c *Config) Length() int {
	n := int(math.Round(c.DurationS * float64(c.SampleRate)))
	if n < 1 {
		n = 1
	}
	return n
}

// Generate synthesizes a stereo IR according to cfg.
func Generate(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	ir := newStereo(cfg.Length())
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Kind == Plate {
		ir.addPlateModes(&cfg, rng)
	} else {
		ir.addEarly(&cfg, rng)
	}
	ir.addTail(&cfg, rng)

	left, right := ir.finish(cfg.FadeOutS, cfg.SampleRate, cfg.NormalizePeak)
	return left, right, nil
}

const dcPole = 0.995

// stereo holds the two channels while an IR is built.
type stereo struct {
	l, r []float64
}

func newStereo(n int) stereo {
	return stereo{l: make([]float64, n), r: make([]float64, n)}
}

// add mixes amp into both channels at i, panned by pan in [-1, 1] with the
// given pan law slope.
func (s stereo) add(i int, amp, pan, slope float64) {
	s.l[i] += amp * (1 - slope*pan)
	s.r[i] += amp * (1 + slope*pan)
}

// finish removes DC, fades out the last fadeS seconds and scales the larger
// channel peak to target.
func (s stereo) finish(fadeS float64, sampleRate int, target float64) ([]float32, []float32) {
	fade := int(math.Round(fadeS * float64(sampleRate)))
	peak := 1e-12
	for _, ch := range [][]float64{s.l, s.r} {
		blockDC(ch, dcPole)
		fadeOut(ch, fade)
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	g := target / peak
	return scaled(s.l, g), scaled(s.r, g)
}

// addEarly places a direct impulse after the pre-delay followed by sparse
// reflections that grow quieter and darker with time.
func (s stereo) addEarly(cfg *Config, rng *rand.Rand) {
	sr := float64(cfg.SampleRate)
	n := len(s.l)
	if d := int(cfg.PreDelayS * sr); d < n {
		s.add(d, 1, cfg.StereoWidth, 0.05)
	}
	for range cfg.EarlyCount {
		t := cfg.PreDelayS + 0.001 + cfg.EarlySpanS*rng.Float64()
		idx := int(t * sr)
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.15 + 0.45*rng.Float64()) * math.Exp(-(t-cfg.PreDelayS)/cfg.EarlySpanS)
		amp *= math.Pow(0.5+0.5*rng.Float64(), 1/cfg.Brightness)
		s.add(idx, amp, (2*rng.Float64()-1)*cfg.StereoWidth, 0.5)
	}
}

// addPlateModes sums decaying sinusoids at the eigenfrequencies of a
// simply-supported orthotropic plate.
func (s stereo) addPlateModes(cfg *Config, rng *rand.Rand) {
	sr := float64(cfg.SampleRate)
	maxF := 0.47 * sr
	tilt := math.Max(0.1, 1.1-0.4*cfg.Brightness)
	for _, f := range plateEigenfreqs(60, maxF, cfg.Modes, cfg.PlateRatio, cfg.StiffnessRatio) {
		amp := (0.7 + 0.6*rng.Float64()) / math.Pow(1+f/400, tilt)
		pos := dspcore.Clamp(math.Sqrt(f/maxF), 0, 1)
		tau := cfg.LowDecayS + (cfg.HighDecayS-cfg.LowDecayS)*pos
		decay := math.Exp(-1 / (tau * sr))

		pan := (2*rng.Float64() - 1) * cfg.StereoWidth
		phase := 2 * math.Pi * rng.Float64()
		addMode(s.l, amp*(1-0.45*pan), f*(1-0.004*pan), phase, decay, sr)
		addMode(s.r, amp*(1+0.45*pan), f*(1+0.004*pan), phase+0.01*pan, decay, sr)
	}
}

// tailBands splits noise into a slow lowpass band and a thin highpass band.
type tailBands struct {
	lo, hi float64
}

func (b *tailBands) next(x float64) (lo, hi float64) {
	b.lo = 0.985*b.lo + 0.015*x
	b.hi = 0.15*x - 0.15*b.hi
	return b.lo, b.hi
}

// addTail adds two-band filtered noise with frequency-dependent decay,
// starting halfway through the early segment.
func (s stereo) addTail(cfg *Config, rng *rand.Rand) {
	if cfg.LateLevel <= 0 {
		return
	}
	sr := float64(cfg.SampleRate)
	start := int((cfg.PreDelayS + 0.5*cfg.EarlySpanS) * sr)
	air := math.Max(0, 0.3*(cfg.Brightness-0.3))
	w := cfg.StereoWidth
	var bl, br tailBands
	for i := start; i < len(s.l); i++ {
		t := float64(i-start) / sr
		lowEnv := math.Exp(-t / (0.75 * cfg.LowDecayS))
		highEnv := math.Exp(-t / (0.75 * cfg.HighDecayS)) * air

		nl := rng.NormFloat64()
		nr := (1-w)*nl + w*rng.NormFloat64()
		ll, lh := bl.next(nl)
		rl, rh := br.next(nr)
		s.l[i] += cfg.LateLevel * (lowEnv*ll + highEnv*lh)
		s.r[i] += cfg.LateLevel * (lowEnv*rl + highEnv*rh)
	}
}

// plateEigenfreqs returns up to maxModes eigenfrequencies in [f11, maxF] of
// a simply-supported orthotropic rectangular plate, ascending. R is the
// aspect ratio Lx/Ly and S the stiffness ratio Dx/Dy; mode (1,1) maps to f11.
func plateEigenfreqs(f11, maxF float64, maxModes int, R, S float64) []float64 {
	rs := math.Sqrt(S)
	r2 := R * R
	norm := f11 / math.Sqrt(S+2*rs*r2+r2*r2)
	freq := func(m, n float64) float64 {
		a, b := m*m, n*n*r2
		return norm * math.Sqrt(S*a*a+2*rs*a*b+b*b)
	}

	var freqs []float64
	for m := 1.0; freq(m, 1) <= maxF; m++ {
		for n := 1.0; ; n++ {
			f := freq(m, n)
			if f > maxF {
				break
			}
			freqs = append(freqs, f)
		}
	}
	slices.Sort(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs
}

// addMode adds amp * decay^i * cos(phase + i*w) to out by rotating a complex
// phasor once per sample.
func addMode(out []float64, amp, freq, phase, decay, sampleRate float64) {
	rot := cmplx.Rect(decay, 2*math.Pi*freq/sampleRate)
	z := cmplx.Rect(amp, phase)
	for i := range out {
		out[i] += real(z)
		z *= rot
	}
}

// blockDC is a one-pole DC blocker applied in place.
func blockDC(x []float64, pole float64) {
	var x1, y1 float64
	for i, v := range x {
		y1 = v - x1 + pole*y1
		x1 = v
		x[i] = y1
	}
}

// fadeOut applies a raised-cosine fade to the last n samples of x.
func fadeOut(x []float64, n int) {
	n = min(n, len(x))
	if n <= 0 {
		return
	}
	start := len(x) - n
	for i := range n {
		x[start+i] *= 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
}

func scaled(x []float64, g float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v * g)
	}
	return out
}
