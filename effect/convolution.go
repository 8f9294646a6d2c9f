package effect

import (
	"fmt"
	"sync"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"

	"github.com/cwbudde/algo-rack/irsynth"
	"github.com/cwbudde/algo-rack/param"
)

// ConvolutionPartSize is the partition size of the convolution reverbs and
// also their latency in samples.
const ConvolutionPartSize = 128

func convolutionMeta(name, desc string, defs ...param.Def) Metadata {
	m := meta(name, desc, Time, defs...)
	m.LatencySamples = ConvolutionPartSize
	return m
}

type irKey struct {
	kind       irsynth.Kind
	sampleRate int
	decay      float32
}

type irPair struct {
	left, right []float32
}

var irCache sync.Map // irKey -> irPair

// synthesizedIR returns the cached IR of kind at sampleRate. decay is only
// used by plates and scales their decay times around the 2 s default.
func synthesizedIR(kind irsynth.Kind, sampleRate int, decay float32) (irPair, error) {
	if kind != irsynth.Plate {
		decay = 0
	}
	key := irKey{kind: kind, sampleRate: sampleRate, decay: decay}
	if v, ok := irCache.Load(key); ok {
		return v.(irPair), nil
	}
	cfg := irsynth.DefaultConfig(kind, sampleRate)
	if kind == irsynth.Plate {
		s := float64(decay) / 2
		cfg.DurationS *= s
		cfg.LowDecayS *= s
		cfg.HighDecayS *= s
	}
	l, r, err := irsynth.Generate(cfg)
	if err != nil {
		return irPair{}, fmt.Errorf("generate %s ir: %w", kind, err)
	}
	v, _ := irCache.LoadOrStore(key, irPair{left: l, right: r})
	return v.(irPair), nil
}

func synthIR(kind irsynth.Kind) unitFunc {
	return func(ctx Context, c *Controls) (Unit, error) {
		var decay float32
		if p := c.Param("decay"); p != nil {
			decay = p.Load()
		}
		ir, err := synthesizedIR(kind, int(ctx.SampleRate), decay)
		if err != nil {
			return nil, err
		}
		return newConvolver(ir.left, ir.right, c.Param("mix"))
	}
}

// NewConvolutionBuilder creates a convolution reverb preset from a stereo
// impulse response recorded at irRate. The IR is resampled to the build
// sample rate. The preset declares a single "mix" parameter.
func NewConvolutionBuilder(name, desc string, left, right []float32, irRate float64) (Builder, error) {
	if len(left) == 0 {
		return nil, fmt.Errorf("impulse response for %q is empty", name)
	}
	if len(right) == 0 {
		right = left
	}
	if irRate <= 0 {
		return nil, fmt.Errorf("invalid impulse response rate: %v", irRate)
	}
	m := convolutionMeta(name, desc, def("mix", 1, 0, 1))
	left = append([]float32(nil), left...)
	right = append([]float32(nil), right...)
	return builtin(m, func(ctx Context, c *Controls) (Unit, error) {
		l, err := resampleIR(left, irRate, float64(ctx.SampleRate))
		if err != nil {
			return nil, err
		}
		r, err := resampleIR(right, irRate, float64(ctx.SampleRate))
		if err != nil {
			return nil, err
		}
		return newConvolver(l, r, c.Param("mix"))
	}), nil
}

func resampleIR(in []float32, inRate, outRate float64) ([]float32, error) {
	if inRate == outRate {
		return in, nil
	}
	rs, err := dspresample.NewForRates(inRate, outRate, dspresample.WithQuality(dspresample.QualityBest))
	if err != nil {
		return nil, fmt.Errorf("resample impulse response: %w", err)
	}
	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := rs.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}

// convolver runs a partitioned stereo convolution. Input is collected into
// blocks of ConvolutionPartSize frames, so both the wet and the dry path are
// delayed by one block.
type convolver struct {
	mix        *param.Shared
	left       *dspconv.StreamingOverlapAddT[float32, complex64]
	right      *dspconv.StreamingOverlapAddT[float32, complex64]
	inL, inR   []float32
	dryL, dryR []float32
	outL, outR []float32
	pos        int
}

func newConvolver(left, right []float32, mix *param.Shared) (*convolver, error) {
	l, err := dspconv.NewStreamingOverlapAdd32(left, ConvolutionPartSize)
	if err != nil {
		return nil, fmt.Errorf("create left convolver: %w", err)
	}
	r, err := dspconv.NewStreamingOverlapAdd32(right, ConvolutionPartSize)
	if err != nil {
		return nil, fmt.Errorf("create right convolver: %w", err)
	}
	n := ConvolutionPartSize
	return &convolver{
		mix:   mix,
		left:  l,
		right: r,
		inL:   make([]float32, n),
		inR:   make([]float32, n),
		dryL:  make([]float32, n),
		dryR:  make([]float32, n),
		outL:  make([]float32, n),
		outR:  make([]float32, n),
	}, nil
}

func (c *convolver) frame(l, r, m float32) (float32, float32) {
	i := c.pos
	ol := mix(c.dryL[i], c.outL[i], m)
	or := mix(c.dryR[i], c.outR[i], m)
	c.inL[i], c.inR[i] = l, r
	c.pos++
	if c.pos == len(c.inL) {
		c.pos = 0
		c.flush()
	}
	return ol, or
}

func (c *convolver) flush() {
	copy(c.dryL, c.inL)
	copy(c.dryR, c.inR)
	errL := c.left.ProcessBlockTo(c.outL, c.inL)
	errR := c.right.ProcessBlockTo(c.outR, c.inR)
	if errL != nil || errR != nil {
		// Pass the block through dry.
		copy(c.outL, c.inL)
		copy(c.outR, c.inR)
	}
}

func (c *convolver) Process(l, r float32) (float32, float32) {
	return c.frame(l, r, c.mix.Load())
}

func (c *convolver) ProcessBlock(left, right []float32) {
	m := c.mix.Load()
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		left[i], right[i] = c.frame(left[i], right[i], m)
	}
}

func (c *convolver) Reset() {
	c.left.Reset()
	c.right.Reset()
	for _, b := range [][]float32{c.inL, c.inR, c.dryL, c.dryR, c.outL, c.outR} {
		clear(b)
	}
	c.pos = 0
}
