package theory

import "strings"

var pitchClassIndex = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3, "E": 4, "F": 5,
	"F#": 6, "Gb": 6, "G": 7, "G#": 8, "Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// ParseChord parses a chord symbol like "C", "Am", "G7" back into a Chord.
// Unrecognized roots fall back to C.
func ParseChord(symbol string) Chord {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Chord{Root: 0, Quality: QualityMajor}
	}

	// Root is 1 or 2 characters; a second character of '#' or 'b' belongs
	// to the root, anything else starts the quality suffix.
	rootLen := 1
	if len(symbol) > 1 && (symbol[1] == '#' || symbol[1] == 'b') {
		rootLen = 2
	}
	rootStr := symbol[:rootLen]
	rest := symbol[rootLen:]

	root, ok := pitchClassIndex[rootStr]
	if !ok {
		root = 0
		rest = symbol[1:]
	}

	var quality Quality
	switch rest {
	case "m":
		quality = QualityMinor
	case "7":
		quality = QualityDom7
	case "dim", "°":
		quality = QualityDim
	default:
		quality = QualityMajor
	}

	return Chord{Root: root, Quality: quality}
}
