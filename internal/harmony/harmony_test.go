package harmony

import (
	"math"
	"testing"

	"github.com/cartomix/maestro/internal/theory"
)

// TestDescribeCMajorTriad implements spec §8 scenario S2.
func TestDescribeCMajorTriad(t *testing.T) {
	notes := []Note{
		{FrequencyHz: 261.63, DurationBeats: 1.0},
		{FrequencyHz: 329.63, DurationBeats: 1.0},
		{FrequencyHz: 392.0, DurationBeats: 1.0},
	}

	analysis := Describe(notes)

	if analysis.Key.Symbol() != "C major" {
		t.Errorf("key = %s, want C major", analysis.Key.Symbol())
	}
	wantChords := []string{"C", "C", "C"}
	if len(analysis.Chords) != len(wantChords) {
		t.Fatalf("chords = %v, want len %d", analysis.Chords, len(wantChords))
	}
	for i, want := range wantChords {
		if got := analysis.Chords[i].Symbol(); got != want {
			t.Errorf("chord[%d] = %s, want %s", i, got, want)
		}
	}
	for i, fn := range analysis.Functions {
		if fn != theory.FunctionTonic {
			t.Errorf("function[%d] = %v, want Tonic", i, fn)
		}
	}
}

func TestDescribeLengthInvariant(t *testing.T) {
	notes := []Note{
		{FrequencyHz: 220, DurationBeats: 3},
		{FrequencyHz: 440, DurationBeats: 5},
	}
	analysis := Describe(notes)
	if len(analysis.Chords) != len(analysis.Functions) || len(analysis.Chords) != len(analysis.Durations) {
		t.Fatalf("mismatched lengths: %d chords, %d functions, %d durations",
			len(analysis.Chords), len(analysis.Functions), len(analysis.Durations))
	}
	var sum float64
	for _, d := range analysis.Durations {
		sum += d
	}
	if math.Abs(sum-8) > 1e-6 {
		t.Errorf("duration sum = %v, want 8", sum)
	}
}

func TestDescribeDegenerateEmptySpan(t *testing.T) {
	analysis := Describe(nil)
	if len(analysis.Chords) != 1 {
		t.Fatalf("expected one tonic-triad window, got %d", len(analysis.Chords))
	}
	if analysis.Chords[0].Root != analysis.Key.Tonic || analysis.Chords[0].Quality != theory.QualityMajor {
		t.Errorf("degenerate analysis should resolve to tonic major triad, got %+v", analysis.Chords[0])
	}
}

func TestEstimateKeyRestsIgnored(t *testing.T) {
	notes := []Note{
		{FrequencyHz: 0, DurationBeats: 2}, // rest
		{FrequencyHz: 261.63, DurationBeats: 1},
		{FrequencyHz: 329.63, DurationBeats: 1},
		{FrequencyHz: 392.0, DurationBeats: 1},
	}
	key := EstimateKey(notes)
	if key.Symbol() != "C major" {
		t.Errorf("key with rests = %s, want C major", key.Symbol())
	}
}
