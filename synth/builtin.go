package synth

import "github.com/cwbudde/algo-rack/dsp"

func saw(level float32) Layer    { return Layer{Wave: dsp.Saw, Level: level} }
func square(level float32) Layer { return Layer{Wave: dsp.Square, Level: level} }
func sine(level float32) Layer   { return Layer{Wave: dsp.Sine, Level: level} }
func tri(level float32) Layer    { return Layer{Wave: dsp.Triangle, Level: level} }

func detuned(wave dsp.Waveform, cents ...float32) []Layer {
	out := make([]Layer, len(cents))
	for i, c := range cents {
		pan := float32(0)
		if len(cents) > 1 {
			pan = -0.6 + 1.2*float32(i)/float32(len(cents)-1)
		}
		out[i] = Layer{Wave: wave, Cents: c, Level: 1, Pan: pan}
	}
	return out
}

// builtinPatches is the built-in catalog in registration order.
func builtinPatches() []*Patch {
	return []*Patch{
		// Basic
		{Name: "sine", Description: "Pure sine wave", Category: Basic,
			Layers: []Layer{sine(1)}, Env: defaultEnv},
		{Name: "beep", Description: "Short sine beep", Category: Basic,
			Layers: []Layer{sine(1)}, Env: dsp.EnvPercussive},
		{Name: "saw", Description: "Band-limited sawtooth", Category: Basic,
			Layers: []Layer{saw(1)}, Env: defaultEnv},
		{Name: "square", Description: "Band-limited square wave", Category: Basic,
			Layers: []Layer{square(1)}, Env: defaultEnv},
		{Name: "tri", Description: "Triangle wave", Category: Basic,
			Layers: []Layer{tri(1)}, Env: defaultEnv},
		{Name: "pulse", Description: "Variable width pulse wave", Category: Basic,
			Layers: []Layer{{Wave: dsp.Pulse, Level: 1, Duty: 0.25}}, Env: defaultEnv},
		{Name: "sub", Description: "Sine sub bass with a little octave", Category: Basic,
			Layers: []Layer{sine(1), {Wave: dsp.Sine, Ratio: 2, Level: 0.15}}, Env: dsp.EnvBass},

		// Analog
		{Name: "tb303", Description: "Acid bass: saw into a resonant lowpass with envelope sweep", Category: Analog,
			Layers: []Layer{saw(1)}, Filter: FilterLowpass, Cutoff: 500, Res: 0.8, FilterEnv: 4,
			Env: dsp.ADSRConfig{Attack: 0.002, Decay: 0.2, Sustain: 0.4, Release: 0.1}},
		{Name: "prophet", Description: "Two detuned pulses through a warm lowpass", Category: Analog,
			Layers: []Layer{{Wave: dsp.Pulse, Level: 1, Duty: 0.4, Cents: -6, Pan: -0.3}, {Wave: dsp.Saw, Level: 0.8, Cents: 6, Pan: 0.3}},
			Filter: FilterLowpass, Cutoff: 2000, Res: 0.3, FilterEnv: 1,
			Env: dsp.ADSRConfig{Attack: 0.01, Decay: 0.3, Sustain: 0.7, Release: 0.4}},
		{Name: "supersaw", Description: "Seven detuned saws spread across the stereo field", Category: Analog,
			Layers: detuned(dsp.Saw, -24, -14, -6, 0, 6, 14, 24),
			Filter: FilterLowpass, Cutoff: 6000, Res: 0.1,
			Env: dsp.ADSRConfig{Attack: 0.02, Decay: 0.3, Sustain: 0.8, Release: 0.5}},
		{Name: "hoover", Description: "Detuned saws with pitch wobble", Category: Analog,
			Layers: append(detuned(dsp.Saw, -30, 0, 30), Layer{Wave: dsp.Saw, Ratio: 0.5, Level: 0.6}),
			Filter: FilterLowpass, Cutoff: 3000, Res: 0.2,
			LFORate: 5, LFODepth: 25, LFOTarget: LFOPitch,
			Env: dsp.ADSRConfig{Attack: 0.05, Decay: 0.2, Sustain: 0.9, Release: 0.4}},
		{Name: "dsaw", Description: "Pair of detuned saws", Category: Analog,
			Layers: detuned(dsp.Saw, -10, 10), Filter: FilterLowpass, Cutoff: 3000, Res: 0.3, Env: defaultEnv},
		{Name: "dpulse", Description: "Pair of detuned pulses", Category: Analog,
			Layers: []Layer{{Wave: dsp.Pulse, Level: 1, Cents: -10, Pan: -0.5, Duty: 0.3}, {Wave: dsp.Pulse, Level: 1, Cents: 10, Pan: 0.5, Duty: 0.3}},
			Filter: FilterLowpass, Cutoff: 3000, Res: 0.3, Env: defaultEnv},
		{Name: "dtri", Description: "Pair of detuned triangles", Category: Analog,
			Layers: detuned(dsp.Triangle, -10, 10), Env: defaultEnv},
		{Name: "mod_saw", Description: "Saw with LFO filter sweep", Category: Analog,
			Layers: []Layer{saw(1)}, Filter: FilterLowpass, Cutoff: 1500, Res: 0.5,
			LFORate: 1, LFODepth: 0.8, LFOTarget: LFOCutoff, Env: defaultEnv},
		{Name: "mod_pulse", Description: "Pulse with LFO width modulation", Category: Analog,
			Layers: []Layer{{Wave: dsp.Pulse, Level: 1, Duty: 0.5}}, Filter: FilterLowpass, Cutoff: 3000, Res: 0.3,
			LFORate: 0.5, LFODepth: 0.35, LFOTarget: LFODuty, Env: defaultEnv},
		{Name: "mod_tri", Description: "Triangle with vibrato", Category: Analog,
			Layers: []Layer{tri(1)}, LFORate: 5, LFODepth: 20, LFOTarget: LFOPitch, Env: defaultEnv},
		{Name: "mod_sine", Description: "Sine with tremolo", Category: Analog,
			Layers: []Layer{sine(1)}, LFORate: 4, LFODepth: 0.5, LFOTarget: LFOAmp, Env: defaultEnv},
		{Name: "lead", Description: "Monophonic style lead: saw and square with vibrato", Category: Analog,
			Layers: []Layer{saw(1), {Wave: dsp.Square, Level: 0.5, Cents: 5}},
			Filter: FilterLowpass, Cutoff: 2500, Res: 0.4, FilterEnv: 1,
			LFORate: 5.5, LFODepth: 12, LFOTarget: LFOPitch,
			Env: dsp.ADSRConfig{Attack: 0.005, Decay: 0.1, Sustain: 0.8, Release: 0.15}},
		{Name: "pad", Description: "Slow detuned saw pad", Category: Analog,
			Layers: detuned(dsp.Saw, -12, 0, 12), Filter: FilterLowpass, Cutoff: 1200, Res: 0.2,
			Env: dsp.EnvPad},
		{Name: "bass_foundation", Description: "Round saw bass with sub", Category: Analog,
			Layers: []Layer{saw(0.7), {Wave: dsp.Sine, Ratio: 0.5, Level: 0.6}},
			Filter: FilterLowpass, Cutoff: 800, Res: 0.3, FilterEnv: 1.5, Env: dsp.EnvBass},
		{Name: "bass_highend", Description: "Bright driven bass", Category: Analog,
			Layers: []Layer{saw(1), square(0.5)}, Filter: FilterLowpass, Cutoff: 2500, Res: 0.5, FilterEnv: 2,
			Drive: 2, Env: dsp.EnvBass},
		{Name: "subpulse", Description: "Narrow pulse over a sine sub", Category: Analog,
			Layers: []Layer{{Wave: dsp.Pulse, Level: 0.6, Duty: 0.1}, {Wave: dsp.Sine, Ratio: 0.5, Level: 1}},
			Env: dsp.EnvBass},

		// Digital
		{Name: "fm", Description: "Two-operator FM", Category: Digital,
			Layers: []Layer{sine(1)}, FMRatio: 2, FMIndex: 2, Env: defaultEnv},
		{Name: "pretty_bell", Description: "Bright inharmonic FM bell", Category: Digital,
			Layers: []Layer{sine(1), {Wave: dsp.Sine, Ratio: 2.76, Level: 0.3}}, FMRatio: 3.5, FMIndex: 4, FMDecay: 0.6,
			Env: dsp.ADSRConfig{Attack: 0.001, Decay: 2, Sustain: 0, Release: 1.5}},
		{Name: "dull_bell", Description: "Soft low-index FM bell", Category: Digital,
			Layers: []Layer{sine(1)}, FMRatio: 1.4, FMIndex: 1.5, FMDecay: 0.4,
			Env: dsp.ADSRConfig{Attack: 0.002, Decay: 1.5, Sustain: 0, Release: 1}},
		{Name: "tech_saws", Description: "Octave-stacked saws through a bandpass", Category: Digital,
			Layers: []Layer{saw(1), {Wave: dsp.Saw, Ratio: 2, Level: 0.5, Cents: 7}},
			Filter: FilterBandpass, Cutoff: 1800, Res: 0.5, Env: dsp.EnvPluck},
		{Name: "blade", Description: "Vibrato saw lead with a highpass", Category: Digital,
			Layers: []Layer{saw(1)}, Filter: FilterHighpass, Cutoff: 400, Res: 0.2,
			LFORate: 6, LFODepth: 30, LFOTarget: LFOPitch, Env: defaultEnv},
		{Name: "zawa", Description: "Square with a fast resonant filter wobble", Category: Digital,
			Layers: []Layer{square(1)}, Filter: FilterLowpass, Cutoff: 1000, Res: 0.7,
			LFOShape: dsp.LFOTriangle, LFORate: 3, LFODepth: 0.9, LFOTarget: LFOCutoff, Env: defaultEnv},
		{Name: "growl", Description: "Driven FM growl", Category: Digital,
			Layers: []Layer{sine(1)}, FMRatio: 0.5, FMIndex: 5, Drive: 3,
			LFORate: 2, LFODepth: 0.5, LFOTarget: LFOAmp, Env: dsp.EnvBass},
		{Name: "dark_ambience", Description: "Filtered noise and low sines", Category: Digital,
			Layers: []Layer{sine(0.6), {Wave: dsp.Sine, Ratio: 1.5, Cents: 4, Level: 0.3}}, Noise: 0.2, PinkNoise: true,
			Filter: FilterLowpass, Cutoff: 600, Res: 0.4, Env: dsp.EnvPad},
		{Name: "hollow", Description: "Resonant bandpassed noise", Category: Digital,
			Noise: 1, PinkNoise: true, Filter: FilterBandpass, Cutoff: 800, Res: 0.9, Env: dsp.EnvPad},

		// Physical
		{Name: "pluck", Description: "Karplus-Strong plucked string", Category: Physical,
			Pluck: true, Damping: 0.3, Env: dsp.ADSRConfig{Attack: 0.001, Decay: 0, Sustain: 1, Release: 0.5}},
		{Name: "piano", Description: "Simple struck piano tone", Category: Physical,
			Layers: []Layer{sine(1), {Wave: dsp.Sine, Ratio: 2, Level: 0.4}, {Wave: dsp.Sine, Ratio: 3, Level: 0.15}, {Wave: dsp.Triangle, Ratio: 4, Level: 0.05}},
			Filter: FilterLowpass, Cutoff: 5000, Res: 0, FilterEnv: 0.5, Env: dsp.EnvPiano},
		{Name: "electric_piano", Description: "Tine-style FM electric piano", Category: Physical,
			Layers: []Layer{sine(1)}, FMRatio: 1, FMIndex: 1.2, FMDecay: 0.3,
			LFORate: 4.5, LFODepth: 0.2, LFOTarget: LFOAmp,
			Env: dsp.ADSRConfig{Attack: 0.002, Decay: 1.2, Sustain: 0.3, Release: 0.4}},
		{Name: "organ", Description: "Drawbar organ", Category: Physical,
			Layers: []Layer{sine(1), {Wave: dsp.Sine, Ratio: 2, Level: 0.6}, {Wave: dsp.Sine, Ratio: 3, Level: 0.4}, {Wave: dsp.Sine, Ratio: 4, Level: 0.3}, {Wave: dsp.Sine, Ratio: 0.5, Level: 0.5}},
			LFORate: 6.5, LFODepth: 6, LFOTarget: LFOPitch, Env: dsp.EnvOrgan},
		{Name: "brass", Description: "Brassy saws with a slow filter swell", Category: Physical,
			Layers: []Layer{saw(1), {Wave: dsp.Saw, Level: 0.6, Cents: 8}},
			Filter: FilterLowpass, Cutoff: 900, Res: 0.2, FilterEnv: 3,
			Env: dsp.ADSRConfig{Attack: 0.08, Decay: 0.2, Sustain: 0.8, Release: 0.25}},
		{Name: "strings", Description: "Ensemble strings", Category: Physical,
			Layers: detuned(dsp.Saw, -8, -3, 3, 8), Filter: FilterLowpass, Cutoff: 3500, Res: 0.1,
			LFORate: 5, LFODepth: 8, LFOTarget: LFOPitch,
			Env: dsp.ADSRConfig{Attack: 0.3, Decay: 0.2, Sustain: 0.9, Release: 0.8}},

		// Noise
		{Name: "noise", Description: "White noise through a lowpass", Category: Noise,
			Noise: 1, Filter: FilterLowpass, Cutoff: 8000, Res: 0, Env: defaultEnv},
	}
}

// builtinAliases maps alias -> target.
var builtinAliases = [][2]string{
	{"triangle", "tri"},
	{"subbass", "sub"},
	{"acid", "tb303"},
	{"mono_lead", "lead"},
	{"rhodes", "electric_piano"},
	{"ep", "electric_piano"},
	{"hammond", "organ"},
}

func registerBuiltins(r *Registry) {
	for _, p := range builtinPatches() {
		r.Register(p.Name, p)
	}
	for _, a := range builtinAliases {
		_ = r.Alias(a[0], a[1])
	}
}
