package compositor

// NoteEvent is the core note triple from spec §3: a frequency in Hz (0 for
// a rest), a duration in beats, and an intensity in [0,1].
type NoteEvent struct {
	FrequencyHz   float64
	DurationBeats float64
	Intensity     float64
}

// Hand is one independent melodic line within a piece.
type Hand []NoteEvent

// Melody is a parsed, restartable score: metadata plus 1-4 parallel hands.
type Melody struct {
	Title          string
	TempoBPM       float64
	TimeSigNum     int
	TimeSigDen     int
	Hands          []Hand
	Structural     map[string]any // free-form metadata preserved verbatim
}

const defaultIntensity = 0.8

// rawEvent mirrors the melody file's event object before validation.
type rawEvent struct {
	Frequency      *float64 `json:"frequency"`
	DurationBeats  *float64 `json:"duration_beats"`
	Duration       *float64 `json:"duration"`
	Intensity      *float64 `json:"intensity"`
}

// rawMelody mirrors the melody file's top-level JSON shape.
type rawMelody struct {
	Title          string          `json:"title"`
	Structure      any             `json:"structure"`
	Tempo          *float64        `json:"tempo"`
	TimeSignature  string          `json:"time_signature"`
	Hands          [][]rawEvent    `json:"hands"`
	Notes          []rawEvent      `json:"notes"` // legacy single-hand form
}

func (e rawEvent) toNoteEvent() (NoteEvent, bool) {
	if e.Frequency == nil {
		return NoteEvent{}, false
	}
	dur := 1.0
	switch {
	case e.DurationBeats != nil:
		dur = *e.DurationBeats
	case e.Duration != nil:
		dur = *e.Duration
	}
	intensity := defaultIntensity
	if e.Intensity != nil {
		intensity = *e.Intensity
	}
	return NoteEvent{FrequencyHz: *e.Frequency, DurationBeats: dur, Intensity: intensity}, true
}
