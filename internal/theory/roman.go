package theory

import "strings"

// romanDegree maps an upper-cased roman numeral body to its scale degree
// (1-indexed).
var romanDegree = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6, "VII": 7,
}

// ResolveRoman converts a Roman numeral chord symbol (e.g. "I", "ii", "V7",
// "vii°", "bVII") to a concrete Chord within key, per spec §4.3:
//
//	uppercase   -> major
//	lowercase   -> minor
//	trailing °  -> diminished
//	trailing 7  -> dominant seventh
//	bVII        -> root = (tonic+10) mod 12, quality major (§9 open question)
func ResolveRoman(key Key, numeral string) Chord {
	n := strings.TrimSpace(numeral)

	if strings.HasPrefix(n, "b") || strings.HasPrefix(n, "♭") {
		body := strings.TrimPrefix(strings.TrimPrefix(n, "b"), "♭")
		if strings.EqualFold(body, "VII") {
			return Chord{Root: (key.Tonic + 10) % 12, Quality: QualityMajor}
		}
	}

	dim := strings.Contains(n, "°") || strings.Contains(n, "o")
	n = strings.TrimSuffix(n, "°")
	dom7 := strings.HasSuffix(n, "7")
	n = strings.TrimSuffix(n, "7")

	upper := strings.ToUpper(n)
	degree, ok := romanDegree[upper]
	if !ok {
		// Unrecognized numeral: fall back to the tonic so callers never
		// see a zero-value chord from a malformed template.
		return Chord{Root: key.Tonic, Quality: QualityMajor}
	}

	root := key.Degree(degree)
	isLower := n == strings.ToLower(n) && n != upper

	switch {
	case dim:
		return Chord{Root: root, Quality: QualityDim}
	case dom7:
		return Chord{Root: root, Quality: QualityDom7}
	case isLower:
		return Chord{Root: root, Quality: QualityMinor}
	default:
		return Chord{Root: root, Quality: QualityMajor}
	}
}

// Function classifies a Roman numeral's harmonic function per spec §4.2:
// V or vii° -> D; ii or IV -> S; else T.
type Function int

const (
	FunctionTonic Function = iota
	FunctionSubdominant
	FunctionDominant
)

func (f Function) String() string {
	switch f {
	case FunctionDominant:
		return "D"
	case FunctionSubdominant:
		return "S"
	default:
		return "T"
	}
}

// ClassifyRoman determines the function of a Roman numeral in root form
// (ignoring case/quality markers). Flat-degree borrowed chords (bVII) are
// neither named in spec §4.2's D/S list, so they resolve to T like any
// other unlisted numeral.
func ClassifyRoman(numeral string) Function {
	n := strings.TrimSpace(numeral)
	if strings.HasPrefix(n, "b") || strings.HasPrefix(n, "♭") {
		return FunctionTonic
	}
	body := strings.ToUpper(strings.TrimSuffix(strings.TrimSuffix(n, "°"), "7"))
	switch body {
	case "V", "VII":
		return FunctionDominant
	case "II", "IV":
		return FunctionSubdominant
	default:
		return FunctionTonic
	}
}
