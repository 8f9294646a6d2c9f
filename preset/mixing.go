package preset

import "github.com/cwbudde/algo-rack/param"

// MixingBank returns the built-in per-instrument mixing chains.
func MixingBank() *EffectBank {
	return NewEffectBank("Mixing",
		VocalClean(),
		VocalWarm(),
		VocalTelephone(),
		GuitarClean(),
		GuitarCrunch(),
		GuitarDistorted(),
		DrumBus(),
		DrumParallel(),
		SynthPad(),
		SynthLead(),
		BassClean(),
		BassGrowl(),
	)
}

func VocalClean() *EffectPreset {
	return NewEffectPreset("Clean Vocal").
		With("hpf", param.Values{"cutoff": 100, "res": 0.5}).
		With("eq_3band", param.Values{"low": -2, "mid": 1, "high": 1.5}).
		With("compressor", param.Values{"attack": 0.01, "release": 0.15}).
		Describe("Clean vocal processing with clarity boost").
		Tag("vocal", "clean")
}

func VocalWarm() *EffectPreset {
	return NewEffectPreset("Warm Vocal").
		With("hpf", param.Values{"cutoff": 80, "res": 0.5}).
		With("eq_3band", param.Values{"low": 1, "mid": 0.5, "high": -0.5}).
		With("tape_saturation", param.Values{"drive": 0.2}).
		With("compressor", param.Values{"attack": 0.015, "release": 0.2}).
		With("reverb", param.Values{"room": 0.2, "time": 1}).
		Describe("Warm vocal with tape saturation and light reverb").
		Tag("vocal", "warm")
}

func VocalTelephone() *EffectPreset {
	return NewEffectPreset("Telephone Vocal").
		With("hpf", param.Values{"cutoff": 500, "res": 0.7}).
		With("lpf", param.Values{"cutoff": 3000, "res": 0.7}).
		With("bitcrusher", param.Values{"bits": 10}).
		With("distortion", param.Values{"amount": 0.4}).
		Describe("Telephone/radio effect for vocals").
		Tag("vocal", "telephone", "lofi")
}

func GuitarClean() *EffectPreset {
	return NewEffectPreset("Clean Guitar").
		With("eq_3band", param.Values{"low": -1, "mid": 0.5, "high": 1}).
		With("chorus", param.Values{"separation": 0.015, "variation": 0.3}).
		With("reverb", param.Values{"room": 0.3, "time": 1.5}).
		Describe("Clean guitar with chorus and reverb").
		Tag("guitar", "clean")
}

func GuitarCrunch() *EffectPreset {
	return NewEffectPreset("Crunch Guitar").
		With("eq_3band", param.Values{"low": 1, "mid": 2, "high": 0.5}).
		With("distortion", param.Values{"amount": 0.5}).
		With("lpf", param.Values{"cutoff": 6000, "res": 0.3}).
		With("delay", param.Values{"time": 0.3, "mix": 0.2}).
		Describe("Crunchy overdrive guitar tone").
		Tag("guitar", "crunch", "overdrive")
}

func GuitarDistorted() *EffectPreset {
	return NewEffectPreset("Distorted Guitar").
		With("eq_3band", param.Values{"low": 2, "mid": 3, "high": 1}).
		With("distortion", param.Values{"amount": 0.7}).
		With("lpf", param.Values{"cutoff": 5000, "res": 0.4}).
		With("gate", param.Values{"threshold": -40}).
		Describe("High-gain distorted guitar with gate").
		Tag("guitar", "distortion", "metal")
}

func DrumBus() *EffectPreset {
	return NewEffectPreset("Drum Bus").
		With("eq_3band", param.Values{"low": 2, "mid": -1, "high": 1}).
		With("compressor", param.Values{"attack": 0.005, "release": 0.08}).
		With("distortion", param.Values{"amount": 0.15}).
		Describe("Punchy drum bus processing").
		Tag("drums", "bus")
}

func DrumParallel() *EffectPreset {
	return NewEffectPreset("Parallel Drums").
		With("compressor", param.Values{"attack": 0.001, "release": 0.05}).
		With("eq_3band", param.Values{"low": 3, "mid": 1, "high": 2}).
		With("distortion", param.Values{"amount": 0.2}).
		Describe("Heavy parallel compression for drums (NY style)").
		Tag("drums", "parallel", "compression")
}

func SynthPad() *EffectPreset {
	return NewEffectPreset("Synth Pad").
		With("chorus", param.Values{"separation": 0.025, "variation": 0.5}).
		With("reverb", param.Values{"room": 0.6, "time": 3}).
		With("delay", param.Values{"time": 0.4, "mix": 0.3}).
		With("lpf", param.Values{"cutoff": 8000, "res": 0.2}).
		Describe("Wide, spacious synth pad processing").
		Tag("synth", "pad", "ambient")
}

func SynthLead() *EffectPreset {
	return NewEffectPreset("Synth Lead").
		With("eq_3band", param.Values{"low": -2, "mid": 2, "high": 1}).
		With("distortion", param.Values{"amount": 0.3}).
		With("delay", param.Values{"time": 0.15, "mix": 0.25}).
		With("reverb", param.Values{"room": 0.2, "time": 0.8}).
		Describe("Cutting synth lead with presence").
		Tag("synth", "lead")
}

func BassClean() *EffectPreset {
	return NewEffectPreset("Clean Bass").
		With("hpf", param.Values{"cutoff": 40, "res": 0.5}).
		With("eq_3band", param.Values{"low": 2, "mid": 0, "high": -1}).
		With("compressor", param.Values{"attack": 0.01, "release": 0.1}).
		Describe("Clean, tight bass processing").
		Tag("bass", "clean")
}

func BassGrowl() *EffectPreset {
	return NewEffectPreset("Growl Bass").
		With("hpf", param.Values{"cutoff": 50, "res": 0.5}).
		With("eq_3band", param.Values{"low": 1, "mid": 2, "high": 0}).
		With("distortion", param.Values{"amount": 0.5}).
		With("lpf", param.Values{"cutoff": 4000, "res": 0.4}).
		With("compressor", param.Values{"attack": 0.008, "release": 0.08}).
		Describe("Aggressive growly bass with midrange bite").
		Tag("bass", "growl", "distortion")
}
