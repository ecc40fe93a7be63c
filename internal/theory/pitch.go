// Package theory holds the pitch, key, and chord vocabulary shared by the
// harmony, progression, and orchestrator packages.
package theory

import "math"

// PitchClasses names the twelve chromatic pitch classes starting at C.
var PitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// A4Freq and A4MIDI anchor the frequency-to-MIDI conversion.
const (
	A4Freq = 440.0
	A4MIDI = 69
)

// FreqToMIDI converts a frequency in Hz to a (possibly fractional) MIDI
// note number. Frequencies <= 0 (rests) return -1.
func FreqToMIDI(freqHz float64) float64 {
	if freqHz <= 0 {
		return -1
	}
	return A4MIDI + 12*math.Log2(freqHz/A4Freq)
}

// MIDIToFreq converts a MIDI note number to a frequency in Hz.
func MIDIToFreq(midi float64) float64 {
	return A4Freq * math.Pow(2, (midi-A4MIDI)/12)
}

// PitchClass returns the chromatic pitch class (0-11) of a frequency,
// rounding to the nearest semitone. Rests (freq <= 0) return -1.
func PitchClass(freqHz float64) int {
	midi := FreqToMIDI(freqHz)
	if midi < 0 {
		return -1
	}
	pc := int(math.Round(midi)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// FoldToRange shifts a MIDI note number by octaves (+/-12) until it falls
// within [lo, hi] inclusive. Used by the orchestrator to fold chord tones
// into instrumental registers.
func FoldToRange(midi, lo, hi int) int {
	for midi < lo {
		midi += 12
	}
	for midi > hi {
		midi -= 12
	}
	return midi
}
