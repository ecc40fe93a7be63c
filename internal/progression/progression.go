// Package progression implements ProgressionSynth: given a key and a
// target beat count, produces a chord-symbol sequence either from a genre
// template or via a function Markov-chain fallback. See spec §4.5 step 3.
package progression

import (
	"math"
	"math/rand"

	"github.com/cartomix/maestro/internal/theory"
)

const defaultBarBeats = 4.0

// Templates are Roman-numeral progressions per genre, repeated/truncated
// to the target bar count.
var Templates = map[string][]string{
	"pop":       {"I", "V", "vi", "IV"},
	"rock":      {"I", "IV", "V"},
	"blues":     {"I", "IV", "I", "V"},
	"jazz":      {"ii", "V", "I"},
	"classical": {"I", "vi", "ii", "V"},
	"funk":      {"I", "bVII", "IV", "I"},
}

var tonicNumerals = []string{"I", "vi"}
var subdominantNumerals = []string{"ii", "IV"}
var dominantNumerals = []string{"V", "vii°"}

// Synth generates chord progressions for a genre with a given Markov
// fallback temperature.
type Synth struct {
	Genre       string
	Temperature float64
	BarBeats    float64
	rng         *rand.Rand
}

// New constructs a Synth. rng may be nil, in which case a fresh
// default-seeded source is used.
func New(genre string, temperature float64, rng *rand.Rand) *Synth {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Synth{Genre: genre, Temperature: temperature, BarBeats: defaultBarBeats, rng: rng}
}

// Next computes the bar count n = round(beats/barBeats) and returns a
// chord-symbol sequence of length n for key, using the genre template when
// known, falling back to the Markov chain otherwise.
func (s *Synth) Next(key theory.Key, beats float64) []string {
	barBeats := s.BarBeats
	if barBeats <= 0 {
		barBeats = defaultBarBeats
	}
	n := int(math.Round(beats / barBeats))
	if n < 1 {
		n = 1
	}

	var numerals []string
	if template, ok := Templates[s.Genre]; ok {
		numerals = repeatTruncate(template, n)
	} else {
		numerals = s.markovChain(n)
	}

	symbols := make([]string, len(numerals))
	for i, numeral := range numerals {
		symbols[i] = theory.ResolveRoman(key, numeral).Symbol()
	}
	return symbols
}

func repeatTruncate(template []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = template[i%len(template)]
	}
	return out
}

// markovChain walks the T->{S,D,T} (3:2:1), S->{D,T} (4:1), D->{T,S}
// (5:1) function chain for n steps starting from T, then samples a
// Roman numeral uniformly within the chosen function at each step.
func (s *Synth) markovChain(n int) []string {
	current := theory.FunctionTonic
	out := make([]string, n)

	for i := 0; i < n; i++ {
		current = s.nextFunction(current)
		out[i] = s.sampleNumeral(current)
	}
	return out
}

type weightedFunction struct {
	fn     theory.Function
	weight float64
}

func (s *Synth) nextFunction(current theory.Function) theory.Function {
	var options []weightedFunction
	switch current {
	case theory.FunctionTonic:
		options = []weightedFunction{
			{theory.FunctionSubdominant, 3},
			{theory.FunctionDominant, 2},
			{theory.FunctionTonic, 1},
		}
	case theory.FunctionSubdominant:
		options = []weightedFunction{
			{theory.FunctionDominant, 4},
			{theory.FunctionTonic, 1},
		}
	case theory.FunctionDominant:
		options = []weightedFunction{
			{theory.FunctionTonic, 5},
			{theory.FunctionSubdominant, 1},
		}
	}

	// Temperature scales tie-breaking randomness: with probability
	// (1-temperature), deterministically take the heaviest option;
	// otherwise sample proportionally to the weights.
	if s.rng.Float64() >= clamp01(s.Temperature) {
		best := options[0]
		for _, o := range options[1:] {
			if o.weight > best.weight {
				best = o
			}
		}
		return best.fn
	}

	total := 0.0
	for _, o := range options {
		total += o.weight
	}
	roll := s.rng.Float64() * total
	for _, o := range options {
		if roll < o.weight {
			return o.fn
		}
		roll -= o.weight
	}
	return options[len(options)-1].fn
}

func (s *Synth) sampleNumeral(fn theory.Function) string {
	var pool []string
	switch fn {
	case theory.FunctionSubdominant:
		pool = subdominantNumerals
	case theory.FunctionDominant:
		pool = dominantNumerals
	default:
		pool = tonicNumerals
	}
	return pool[s.rng.Intn(len(pool))]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
