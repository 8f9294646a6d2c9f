package dsp

// ADSRConfig holds envelope times in seconds and the sustain level (0..1).
type ADSRConfig struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// Envelope presets.
var (
	EnvPluck      = ADSRConfig{Attack: 0.001, Decay: 0.1, Sustain: 0.0, Release: 0.5}
	EnvPad        = ADSRConfig{Attack: 0.5, Decay: 0.2, Sustain: 0.8, Release: 1.0}
	EnvPercussive = ADSRConfig{Attack: 0.001, Decay: 0.1, Sustain: 0.0, Release: 0.1}
	EnvPiano      = ADSRConfig{Attack: 0.002, Decay: 0.1, Sustain: 0.7, Release: 0.3}
	EnvOrgan      = ADSRConfig{Attack: 0.001, Decay: 0.001, Sustain: 1.0, Release: 0.05}
	EnvBass       = ADSRConfig{Attack: 0.005, Decay: 0.2, Sustain: 0.6, Release: 0.2}
)

// Stage is the current envelope segment.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// ADSR is a gate-driven linear envelope. A positive gate value that differs
// from the previous one retriggers the attack; a zero gate starts the
// release. The release always reaches exactly zero after
// SecondsToSamples(release) samples.
type ADSR struct {
	cfg        ADSRConfig
	sampleRate float32

	stage    Stage
	level    float32
	step     float32
	left     int
	lastGate float32
}

// NewADSR creates an idle envelope.
func NewADSR(cfg ADSRConfig, sampleRate float32) *ADSR {
	return &ADSR{cfg: cfg, sampleRate: sampleRate}
}

// Config returns the envelope configuration.
func (e *ADSR) Config() ADSRConfig {
	return e.cfg
}

// SetConfig replaces the configuration. It applies from the next segment.
func (e *ADSR) SetConfig(cfg ADSRConfig) {
	e.cfg = cfg
}

// Stage returns the current segment.
func (e *ADSR) Stage() Stage {
	return e.stage
}

// Level returns the last output level.
func (e *ADSR) Level() float32 {
	return e.level
}

// Reset returns the envelope to idle at zero.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.step = 0
	e.left = 0
	e.lastGate = 0
}

// Next advances one sample. release overrides the configured release time
// when > 0; it is sampled when the release segment starts.
func (e *ADSR) Next(gate, release float32) float32 {
	if gate > 0 && gate != e.lastGate {
		e.enter(StageAttack, 1, e.cfg.Attack)
	} else if gate <= 0 && e.stage != StageIdle && e.stage != StageRelease {
		if release <= 0 {
			release = e.cfg.Release
		}
		e.enter(StageRelease, 0, release)
	}
	e.lastGate = gate

	switch e.stage {
	case StageAttack, StageDecay, StageRelease:
		e.level += e.step
		e.left--
		if e.left <= 0 {
			e.finishSegment()
		}
	case StageSustain:
		e.level = e.cfg.Sustain
	}
	return e.level
}

func (e *ADSR) enter(stage Stage, target, seconds float32) {
	e.stage = stage
	e.left = SecondsToSamples(seconds, e.sampleRate)
	if e.left < 1 {
		e.left = 1
	}
	e.step = (target - e.level) / float32(e.left)
}

func (e *ADSR) finishSegment() {
	switch e.stage {
	case StageAttack:
		e.level = 1
		e.enter(StageDecay, Clamp(e.cfg.Sustain, 0, 1), e.cfg.Decay)
	case StageDecay:
		e.level = Clamp(e.cfg.Sustain, 0, 1)
		if e.level <= 0 {
			e.stage = StageIdle
			e.level = 0
			return
		}
		e.stage = StageSustain
	case StageRelease:
		e.level = 0
		e.stage = StageIdle
	}
}
