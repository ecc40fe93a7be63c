// Package harmony implements the HarmonicAnalyser: key estimation via the
// Krumhansl-Schmuckler correlation and per-window chord/function analysis.
// See spec §4.5 step 2.
package harmony

import (
	"math"

	"github.com/cartomix/maestro/internal/theory"
)

// Note is the minimal (frequency, duration) pair the analyser consumes —
// decoupled from compositor.NoteEvent so this package has no upward
// dependency on the melody loader.
type Note struct {
	FrequencyHz   float64
	DurationBeats float64
}

// Analysis is the result of analyzing one melodic span, per spec §3.
type Analysis struct {
	Key       theory.Key
	Chords    []theory.Chord
	Functions []theory.Function
	Durations []float64
}

// Krumhansl-Schmuckler key profiles (Krumhansl & Kessler 1982).
var majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
var minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}

// EstimateKey correlates the duration-weighted pitch-class histogram of
// notes against all 24 rotations of the major/minor KS profiles and
// returns the best-correlating key.
func EstimateKey(notes []Note) theory.Key {
	histogram := pitchClassHistogram(notes)

	bestKey := theory.Key{Tonic: 0, Minor: false}
	bestScore := math.Inf(-1)

	for tonic := 0; tonic < 12; tonic++ {
		for _, minor := range []bool{false, true} {
			profile := majorProfile
			if minor {
				profile = minorProfile
			}
			score := correlate(histogram, rotate(profile, tonic))
			if score > bestScore {
				bestScore = score
				bestKey = theory.Key{Tonic: tonic, Minor: minor}
			}
		}
	}

	return bestKey
}

func pitchClassHistogram(notes []Note) [12]float64 {
	var hist [12]float64
	for _, n := range notes {
		pc := theory.PitchClass(n.FrequencyHz)
		if pc < 0 {
			continue // rest
		}
		hist[pc] += n.DurationBeats
	}
	return hist
}

func rotate(profile [12]float64, by int) [12]float64 {
	var out [12]float64
	for i := 0; i < 12; i++ {
		out[(i+by)%12] = profile[i]
	}
	return out
}

// correlate computes the Pearson correlation coefficient between two
// 12-bin vectors.
func correlate(a, b [12]float64) float64 {
	var meanA, meanB float64
	for i := 0; i < 12; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= 12
	meanB /= 12

	var num, denomA, denomB float64
	for i := 0; i < 12; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		denomA += da * da
		denomB += db * db
	}
	denom := math.Sqrt(denomA) * math.Sqrt(denomB)
	if denom == 0 {
		return 0
	}
	return num / denom
}

// Describe performs the full harmonic analysis of a melodic span: key
// estimation, per-beat-window triad matching, and function assignment.
func Describe(notes []Note) Analysis {
	key := EstimateKey(notes)

	totalBeats := 0.0
	for _, n := range notes {
		totalBeats += n.DurationBeats
	}
	windows := int(math.Round(totalBeats))
	if windows < 1 {
		windows = 1
	}

	chords := make([]theory.Chord, 0, windows)
	functions := make([]theory.Function, 0, windows)
	durations := make([]float64, 0, windows)

	cursor := 0.0
	for w := 0; w < windows; w++ {
		windowStart := cursor
		windowEnd := cursor + 1.0
		cursor = windowEnd

		chord := bestTriadForWindow(notes, key, windowStart, windowEnd)
		chords = append(chords, chord)
		functions = append(functions, classifyAgainstKey(chord, key))
		durations = append(durations, 1.0)
	}

	// The last window may be partial; size it to the remaining span so
	// sum(durations) == totalBeats within tolerance (spec §8 invariant 4).
	if windows > 0 {
		remainder := totalBeats - float64(windows-1)
		if remainder > 0 {
			durations[len(durations)-1] = remainder
		}
	}

	return Analysis{Key: key, Chords: chords, Functions: functions, Durations: durations}
}

// bestTriadForWindow histograms the pitch classes sounding within
// [start,end) and scores all 24 major/minor triad templates, picking the
// maximum; ties prefer the tonic-containing template. Empty windows
// resolve to the tonic triad (spec §4.5 step 2, §7 AnalysisDegenerate).
func bestTriadForWindow(notes []Note, key theory.Key, start, end float64) theory.Chord {
	var hist [12]float64
	cursor := 0.0
	any := false
	for _, n := range notes {
		noteStart := cursor
		noteEnd := cursor + n.DurationBeats
		cursor = noteEnd

		overlap := math.Min(noteEnd, end) - math.Max(noteStart, start)
		if overlap <= 0 {
			continue
		}
		pc := theory.PitchClass(n.FrequencyHz)
		if pc < 0 {
			continue
		}
		hist[pc] += overlap
		any = true
	}

	if !any {
		return theory.Chord{Root: key.Tonic, Quality: theory.QualityMajor}
	}

	bestScore := math.Inf(-1)
	best := theory.Chord{Root: key.Tonic, Quality: theory.QualityMajor}

	for root := 0; root < 12; root++ {
		for _, minor := range []bool{false, true} {
			quality := theory.QualityMajor
			intervals := theory.MajorTriadIntervals
			if minor {
				quality = theory.QualityMinor
				intervals = theory.MinorTriadIntervals
			}
			score := 0.0
			for _, iv := range intervals {
				score += hist[(root+iv)%12]
			}
			candidate := theory.Chord{Root: root, Quality: quality}
			better := score > bestScore
			tie := score == bestScore && root == key.Tonic && best.Root != key.Tonic
			if better || tie {
				bestScore = score
				best = candidate
			}
		}
	}

	return best
}

// classifyAgainstKey determines T/S/D by locating the chord's root as a
// diatonic scale degree of key and mapping per spec §4.2.
func classifyAgainstKey(chord theory.Chord, key theory.Key) theory.Function {
	for degree := 1; degree <= 7; degree++ {
		if key.Degree(degree) != chord.Root {
			continue
		}
		switch degree {
		case 5:
			return theory.FunctionDominant
		case 7:
			if chord.Quality == theory.QualityDim {
				return theory.FunctionDominant
			}
		case 2, 4:
			return theory.FunctionSubdominant
		}
		return theory.FunctionTonic
	}
	return theory.FunctionTonic
}
