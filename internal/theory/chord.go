package theory

import "fmt"

// Quality is a chord quality suffix per spec §3: "" major, "m" minor,
// "7" dominant. "dim" (°) is also supported for Roman-numeral
// resolution even though the base spec only names three.
type Quality string

const (
	QualityMajor Quality = ""
	QualityMinor Quality = "m"
	QualityDom7  Quality = "7"
	QualityDim   Quality = "dim"
)

// Chord is a root pitch class (0-11, C=0) with a quality suffix.
type Chord struct {
	Root    int
	Quality Quality
}

// Symbol renders the chord as e.g. "C", "Am", "G7".
func (c Chord) Symbol() string {
	return fmt.Sprintf("%s%s", PitchClasses[((c.Root%12)+12)%12], c.Quality)
}

// Tones returns the chord's tones as absolute pitch classes 0-11 (root
// plus each interval, mod 12; not register-folded).
func (c Chord) Tones() []int {
	var intervals []int
	switch c.Quality {
	case QualityMinor:
		intervals = []int{0, 3, 7}
	case QualityDom7:
		intervals = []int{0, 4, 7, 10}
	case QualityDim:
		intervals = []int{0, 3, 6}
	default:
		intervals = []int{0, 4, 7}
	}
	tones := make([]int, len(intervals))
	for i, iv := range intervals {
		tones[i] = (c.Root + iv) % 12
	}
	return tones
}

// MajorTriadIntervals and MinorTriadIntervals are the semitone offsets
// from the root of each triad template, used by the HarmonicAnalyser's
// per-window chord matching (spec §4.5 step 2).
var (
	MajorTriadIntervals = []int{0, 4, 7}
	MinorTriadIntervals = []int{0, 3, 7}
)

// Key names a tonic pitch class and a mode (major or minor).
type Key struct {
	Tonic int  // pitch class 0-11
	Minor bool
}

// Symbol renders e.g. "C major", "A minor".
func (k Key) Symbol() string {
	mode := "major"
	if k.Minor {
		mode = "minor"
	}
	return fmt.Sprintf("%s %s", PitchClasses[((k.Tonic%12)+12)%12], mode)
}

// Degree returns the pitch class of the scale's nth degree (1-indexed,
// diatonic) within the key, using the major or natural-minor scale.
func (k Key) Degree(n int) int {
	majorSteps := []int{0, 2, 4, 5, 7, 9, 11}
	minorSteps := []int{0, 2, 3, 5, 7, 8, 10}
	steps := majorSteps
	if k.Minor {
		steps = minorSteps
	}
	idx := ((n - 1) % 7 + 7) % 7
	return (k.Tonic + steps[idx]) % 12
}
