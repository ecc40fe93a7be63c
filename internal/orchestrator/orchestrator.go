// Package orchestrator folds a chord progression into instrumental parts
// (bass, piano). See spec §4.5 step 4.
package orchestrator

import (
	"github.com/cartomix/maestro/internal/theory"
)

const (
	BassLow, BassHigh   = 28, 48
	PianoLow, PianoHigh = 50, 96
)

// DefaultIntensity is used for orchestrated parts, which have no source
// intensity of their own (unlike the melody part, which carries the
// compositor's values).
const DefaultIntensity = 0.8

// Part mirrors spec §3's Part: equal-length notes/durations/intensity.
type Part struct {
	Notes      []float64
	Durations  []float64
	Intensity  []float64
	GainDB     float64
	HasGain    bool
	EnableReverb bool
	EnableChorus bool
}

// octaveBase places a pitch class near the middle of the piano before
// register folding.
const octaveBase = 60

// Voice builds {bass, piano} parts from a chord-symbol sequence and their
// durations (spec §4.5 step 4 / §8 scenario S4).
func Voice(chordSymbols []string, durations []float64) map[string]*Part {
	bass := &Part{}
	piano := &Part{}

	n := len(chordSymbols)
	if len(durations) < n {
		n = len(durations)
	}

	for i := 0; i < n; i++ {
		chord := theory.ParseChord(chordSymbols[i])
		dur := durations[i]

		bassPitch := theory.FoldToRange(chord.Root+octaveBase, BassLow, BassHigh)
		bass.Notes = append(bass.Notes, theory.MIDIToFreq(float64(bassPitch)))
		bass.Durations = append(bass.Durations, dur)
		bass.Intensity = append(bass.Intensity, DefaultIntensity)

		tones := chord.Tones()
		perTone := dur / float64(len(tones))
		for _, pc := range tones {
			pianoPitch := theory.FoldToRange(pc+octaveBase, PianoLow, PianoHigh)
			piano.Notes = append(piano.Notes, theory.MIDIToFreq(float64(pianoPitch)))
			piano.Durations = append(piano.Durations, perTone)
			piano.Intensity = append(piano.Intensity, DefaultIntensity)
		}
	}

	return map[string]*Part{"bass": bass, "piano": piano}
}
