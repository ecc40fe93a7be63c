package progression

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cartomix/maestro/internal/theory"
)

// TestPopProgressionScenario implements spec §8 scenario S3.
func TestPopProgressionScenario(t *testing.T) {
	s := New("pop", 0, rand.New(rand.NewSource(1)))
	key := theory.Key{Tonic: 0, Minor: false}

	got := s.Next(key, 16)
	want := []string{"C", "G", "Am", "F"}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chord[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestProgressionCoverage implements spec §8 invariant 5: every genre and
// every beat count 1..64 yields a non-empty sequence of the right length.
func TestProgressionCoverage(t *testing.T) {
	key := theory.Key{Tonic: 3, Minor: false}
	genres := []string{"pop", "rock", "blues", "jazz", "classical", "funk", "unknown-markov"}

	for _, genre := range genres {
		s := New(genre, 0.5, rand.New(rand.NewSource(7)))
		for beats := 1; beats <= 64; beats++ {
			got := s.Next(key, float64(beats))
			wantLen := int(math.Round(float64(beats) / defaultBarBeats))
			if wantLen < 1 {
				wantLen = 1
			}
			if len(got) != wantLen {
				t.Fatalf("genre=%s beats=%d: len=%d, want %d", genre, beats, len(got), wantLen)
			}
			for _, sym := range got {
				if sym == "" {
					t.Fatalf("genre=%s beats=%d: empty symbol in %v", genre, beats, got)
				}
			}
		}
	}
}

func TestMarkovFallbackStaysWithinFunctionPools(t *testing.T) {
	s := New("not-a-genre", 1.0, rand.New(rand.NewSource(3)))
	key := theory.Key{Tonic: 0, Minor: false}

	allowed := map[string]bool{}
	for _, pool := range [][]string{tonicNumerals, subdominantNumerals, dominantNumerals} {
		for _, numeral := range pool {
			allowed[theory.ResolveRoman(key, numeral).Symbol()] = true
		}
	}

	for trial := 0; trial < 50; trial++ {
		got := s.Next(key, 8)
		if len(got) == 0 {
			t.Fatalf("markov fallback returned empty sequence")
		}
		for _, sym := range got {
			if !allowed[sym] {
				t.Fatalf("markov fallback chord %q is outside the T/S/D numeral pools", sym)
			}
		}
	}
}

func TestFunkTemplateUsesFlatSeven(t *testing.T) {
	s := New("funk", 0, nil)
	key := theory.Key{Tonic: 0, Minor: false}
	got := s.Next(key, 16)
	if len(got) != 4 || got[1] != "A#" {
		t.Errorf("funk progression = %v, want [C A# F C]-shaped with bVII=A#", got)
	}
}
