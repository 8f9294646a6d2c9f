package preset

import (
	"strings"

	"github.com/cwbudde/algo-rack/dsp"
)

func drum(name, synthName, desc string, amp, decay float32) *SynthPreset {
	return NewSynthPreset(name, synthName).
		Describe(desc).
		Tag("drum").
		Param("amp", amp).
		WithEnvelope(dsp.ADSRConfig{Attack: 0.001, Decay: decay, Sustain: 0, Release: decay})
}

// Kick is a low sine thump.
func Kick() *SynthPreset {
	p := drum("kick", "sine", "Bass drum with pitch drop", 0.8, 0.15)
	p.Envelope.Release = 0.1
	p.Freq = 60
	return p
}

// Snare is filtered noise.
func Snare() *SynthPreset {
	return drum("snare", "noise", "Snare with noise and tone", 0.7, 0.1).Param("cutoff", 6000)
}

// HiHat is a short burst of bright noise.
func HiHat() *SynthPreset {
	return drum("hihat", "noise", "Closed hi-hat", 0.4, 0.025).Param("cutoff", 16000)
}

// OpenHiHat is HiHat with a longer tail.
func OpenHiHat() *SynthPreset {
	return drum("open_hihat", "noise", "Open hi-hat", 0.4, 0.15).Param("cutoff", 16000)
}

// Clap is dark, short noise.
func Clap() *SynthPreset {
	return drum("clap", "noise", "Hand clap", 0.6, 0.075).Param("cutoff", 1500)
}

// Tom is a pitched sine drum.
func Tom() *SynthPreset {
	p := drum("tom", "sine", "Tom drum", 0.7, 0.125)
	p.Freq = 100
	return p
}

// Crash is long bright noise.
func Crash() *SynthPreset {
	return drum("crash", "noise", "Crash cymbal", 0.5, 0.5).Param("cutoff", 12000)
}

// Ride is an inharmonic FM tone.
func Ride() *SynthPreset {
	return drum("ride", "fm", "Ride cymbal", 0.5, 0.4).Param("mod_ratio", 2.5)
}

// Cowbell is a short FM tone at 560 Hz.
func Cowbell() *SynthPreset {
	p := drum("cowbell", "fm", "Cowbell", 0.5, 0.2).Param("mod_ratio", 1.5)
	p.Freq = 560
	return p
}

// DrumBank returns the built-in drum kit.
func DrumBank() *SynthBank {
	return NewSynthBank("Drums",
		Kick(), Snare(), HiHat(), OpenHiHat(), Clap(), Tom(), Crash(), Ride(), Cowbell())
}

var drumTokens = map[string]func() *SynthPreset{
	"kick": Kick, "bd": Kick, "bass": Kick,
	"snare": Snare, "sd": Snare,
	"hihat": HiHat, "hh": HiHat, "ch": HiHat,
	"open_hihat": OpenHiHat, "oh": OpenHiHat,
	"clap": Clap, "cp": Clap,
	"tom": Tom, "tom1": Tom, "tom2": Tom, "tom3": Tom, "lt": Tom, "mt": Tom, "ht": Tom,
	"crash": Crash, "cr": Crash, "cy": Crash, "cymbal": Crash,
	"ride": Ride, "rd": Ride,
	"cowbell": Cowbell, "cb": Cowbell,
}

// DrumForToken returns the drum preset for a pattern token such as "bd"
// or "hh". Matching is case-insensitive.
func DrumForToken(token string) (*SynthPreset, bool) {
	fn, ok := drumTokens[strings.ToLower(token)]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// General MIDI percussion notes.
var drumNotes = map[string]int{
	"bd": 36, "kick": 36, "bass": 36,
	"rs": 37, "rim": 37, "rimshot": 37,
	"sd": 38, "snare": 38, "sn": 38,
	"cp": 39, "clap": 39, "handclap": 39,
	"hh": 42, "hihat": 42, "hat": 42, "ch": 42,
	"ph": 44, "pedal": 44,
	"lt": 45, "lowtom": 45, "tom": 45, "tom1": 45,
	"oh": 46, "open": 46, "openhat": 46, "open_hihat": 46,
	"mt": 47, "midtom": 47, "tom2": 47,
	"cr": 49, "crash": 49, "cy": 49, "cymbal": 49,
	"ht": 50, "hightom": 50, "tom3": 50,
	"rd": 51, "ride": 51,
	"ta": 54, "tambourine": 54,
	"cb": 56, "cowbell": 56,
	"ma": 70, "maracas": 70,
	"cl": 75, "claves": 75,
}

// DrumNote returns the General MIDI percussion note for token. Matching is
// case-sensitive.
func DrumNote(token string) (int, bool) {
	n, ok := drumNotes[token]
	return n, ok
}
