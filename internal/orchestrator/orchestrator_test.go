package orchestrator

import (
	"math"
	"testing"

	"github.com/cartomix/maestro/internal/theory"
)

// TestVoiceScenario implements spec §8 scenario S4.
func TestVoiceScenario(t *testing.T) {
	parts := Voice([]string{"C", "G"}, []float64{2.0, 2.0})

	bass, ok := parts["bass"]
	if !ok || len(bass.Notes) != 2 {
		t.Fatalf("expected a bass part with 2 notes, got %+v", bass)
	}
	for _, freq := range bass.Notes {
		midi := theory.FreqToMIDI(freq)
		if midi < BassLow || midi > BassHigh {
			t.Errorf("bass note midi=%v out of [%d,%d]", midi, BassLow, BassHigh)
		}
	}

	piano, ok := parts["piano"]
	if !ok || len(piano.Notes) < 4 {
		t.Fatalf("expected >= 2 piano notes per chord (4 total), got %+v", piano)
	}
	for _, freq := range piano.Notes {
		midi := theory.FreqToMIDI(freq)
		if midi < PianoLow || midi > PianoHigh {
			t.Errorf("piano note midi=%v out of [%d,%d]", midi, PianoLow, PianoHigh)
		}
	}
}

// TestVoiceDurationLaw implements spec §8 invariant 4 for the piano part:
// its chord-tone durations should sum back to the chord's duration.
func TestVoiceDurationLaw(t *testing.T) {
	parts := Voice([]string{"C", "Am", "F", "G7"}, []float64{1.5, 2.5, 1.0, 3.0})
	piano := parts["piano"]
	bass := parts["bass"]

	var bassSum float64
	for _, d := range bass.Durations {
		bassSum += d
	}
	if math.Abs(bassSum-8.0) > 1e-6 {
		t.Errorf("bass duration sum = %v, want 8.0", bassSum)
	}

	var pianoSum float64
	for _, d := range piano.Durations {
		pianoSum += d
	}
	if math.Abs(pianoSum-8.0) > 1e-6 {
		t.Errorf("piano duration sum = %v, want 8.0", pianoSum)
	}
}

func TestVoicePartsHaveEqualLengthFields(t *testing.T) {
	parts := Voice([]string{"Dm", "G7", "C"}, []float64{2, 2, 4})
	for name, p := range parts {
		if len(p.Notes) != len(p.Durations) || len(p.Notes) != len(p.Intensity) {
			t.Errorf("part %s has mismatched field lengths: %d/%d/%d",
				name, len(p.Notes), len(p.Durations), len(p.Intensity))
		}
	}
}
