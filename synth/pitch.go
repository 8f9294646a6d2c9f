package synth

import (
	approx "github.com/cwbudde/algo-approx"
)

// MidiToFreq converts a MIDI note number to Hz (A4 = note 69 = 440 Hz).
func MidiToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	return a4Freq * pow2Approx(float32(note-a4Note)/12.0)
}

// SemitonesToRatio converts a pitch offset to a frequency multiplier.
func SemitonesToRatio(semitones float32) float32 {
	return pow2Approx(semitones / 12.0)
}

// CentsToRatio converts a detune in cents to a frequency multiplier.
func CentsToRatio(cents float32) float32 {
	return pow2Approx(cents / 1200.0)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}
