package dsp

import "math"

// Waveform selects an oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Saw
	Square
	Triangle
	Pulse
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Pulse:
		return "pulse"
	default:
		return "unknown"
	}
}

// Oscillator is a band-limited (PolyBLEP) phase-accumulating oscillator.
type Oscillator struct {
	Wave  Waveform
	Duty  float32 // pulse width for Pulse, 0..1
	phase float64
}

// NewOscillator creates an oscillator starting at phase (0..1).
func NewOscillator(wave Waveform, phase float64) *Oscillator {
	return &Oscillator{Wave: wave, Duty: 0.5, phase: wrapPhase(phase)}
}

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Reset sets the phase.
func (o *Oscillator) Reset(phase float64) {
	o.phase = wrapPhase(phase)
}

// Next returns one sample at freq Hz and advances the phase.
func (o *Oscillator) Next(freq, sampleRate float32) float32 {
	dt := float64(freq) / float64(sampleRate)
	if dt < 0 {
		dt = -dt
	}
	if dt > 0.5 {
		dt = 0.5
	}
	var out float32
	switch o.Wave {
	case Saw:
		out = float32(2*o.phase-1) - polyBLEP(o.phase, dt)
	case Square:
		out = o.pulse(0.5, dt)
	case Pulse:
		out = o.pulse(float64(Clamp(o.Duty, 0.01, 0.99)), dt)
	case Triangle:
		out = float32(1 - 4*math.Abs(o.phase-0.5))
	default:
		out = float32(math.Sin(2 * math.Pi * o.phase))
	}
	o.phase = wrapPhase(o.phase + dt)
	return out
}

func (o *Oscillator) pulse(duty, dt float64) float32 {
	var v float32 = -1
	if o.phase < duty {
		v = 1
	}
	v += polyBLEP(o.phase, dt)
	v -= polyBLEP(wrapPhase(o.phase+1-duty), dt)
	return v
}

// polyBLEP returns the band-limited step correction at phase t.
func polyBLEP(t, dt float64) float32 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return float32(t + t - t*t - 1)
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return float32(t*t + t + t + 1)
	}
	return 0
}

func wrapPhase(p float64) float64 {
	p -= math.Floor(p)
	if p >= 1 {
		p = 0
	}
	return p
}

// Noise is a deterministic white/pink noise source (xorshift32).
type Noise struct {
	state uint32
	pink  bool
	b     [7]float32
}

// NewNoise creates a noise source. A zero seed is replaced by a fixed one.
func NewNoise(seed uint32, pink bool) *Noise {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &Noise{state: seed, pink: pink}
}

// White returns a uniform sample in [-1, 1).
func (n *Noise) White() float32 {
	x := n.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float32(x)/float32(1<<31) - 1
}

// Next returns white or pink noise depending on the configuration.
func (n *Noise) Next() float32 {
	w := n.White()
	if !n.pink {
		return w
	}
	// Paul Kellet's refined pink filter.
	n.b[0] = 0.99886*n.b[0] + w*0.0555179
	n.b[1] = 0.99332*n.b[1] + w*0.0750759
	n.b[2] = 0.96900*n.b[2] + w*0.1538520
	n.b[3] = 0.86650*n.b[3] + w*0.3104856
	n.b[4] = 0.55000*n.b[4] + w*0.5329522
	n.b[5] = -0.7616*n.b[5] - w*0.0168980
	out := n.b[0] + n.b[1] + n.b[2] + n.b[3] + n.b[4] + n.b[5] + n.b[6] + w*0.5362
	n.b[6] = w * 0.115926
	return out * 0.11
}
