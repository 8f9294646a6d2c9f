package preset

import "github.com/cwbudde/algo-rack/param"

// MasteringBank returns the built-in mastering chains, all tagged
// "mastering".
func MasteringBank() *EffectBank {
	return NewEffectBank("Mastering",
		MasteringTransparent(),
		MasteringWarm(),
		MasteringLoud(),
		MasteringBroadcast(),
		MasteringLofi(),
	)
}

// MasteringTransparent is a subtle EQ, compressor and limiter chain.
func MasteringTransparent() *EffectPreset {
	return NewEffectPreset("Transparent Master").
		With("eq_3band", param.Values{"low": 0.5, "mid": 0, "high": 0.5}).
		With("compressor", param.Values{"attack": 0.03, "release": 0.2}).
		With("limiter", param.Values{"release": 0.1}).
		Describe("Subtle, transparent mastering chain").
		Tag("mastering", "transparent")
}

// MasteringWarm adds tape saturation before the dynamics.
func MasteringWarm() *EffectPreset {
	return NewEffectPreset("Warm Master").
		With("eq_3band", param.Values{"low": 1.5, "mid": -0.5, "high": -1}).
		With("tape_saturation", param.Values{"drive": 0.3}).
		With("compressor", param.Values{"attack": 0.02, "release": 0.15}).
		With("limiter", param.Values{"release": 0.1}).
		Describe("Warm, analog-style mastering with tape saturation").
		Tag("mastering", "warm", "analog")
}

// MasteringLoud drives a fast compressor into soft clipping.
func MasteringLoud() *EffectPreset {
	return NewEffectPreset("Loud Master").
		With("eq_3band", param.Values{"low": 2, "mid": 0, "high": 1.5}).
		With("compressor", param.Values{"attack": 0.005, "release": 0.1}).
		With("distortion", param.Values{"amount": 0.2}).
		With("limiter", param.Values{"release": 0.05}).
		Describe("Loud, punchy mastering for electronic music").
		Tag("mastering", "loud", "edm")
}

// MasteringBroadcast is tuned for speech.
func MasteringBroadcast() *EffectPreset {
	return NewEffectPreset("Broadcast Master").
		With("hpf", param.Values{"cutoff": 80, "res": 0.5}).
		With("eq_3band", param.Values{"low": -1, "mid": 1, "high": 0.5}).
		With("compressor", param.Values{"attack": 0.01, "release": 0.15}).
		With("limiter", param.Values{"release": 0.1}).
		Describe("Broadcast-ready mastering for podcasts and radio").
		Tag("mastering", "broadcast", "podcast")
}

// MasteringLofi band-limits and crushes the mix.
func MasteringLofi() *EffectPreset {
	return NewEffectPreset("Lo-Fi Master").
		With("lpf", param.Values{"cutoff": 8000, "res": 0.3}).
		With("bitcrusher", param.Values{"bits": 12}).
		With("tape_saturation", param.Values{"drive": 0.5}).
		With("eq_3band", param.Values{"low": 1, "mid": -1, "high": -2}).
		With("compressor", param.Values{"attack": 0.02, "release": 0.2}).
		Describe("Lo-fi, vintage-style mastering").
		Tag("mastering", "lofi", "vintage")
}
