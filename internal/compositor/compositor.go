// Package compositor loads annotated melody score files and tracks
// per-hand playhead state, emitting parallel note events that drive the
// arrangement pipeline. See spec §4.4.
package compositor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultMeterNum = 4
const defaultMeterDen = 4

// playhead tracks one hand's position independently, by design (spec §4.4
// "polymetric hand playheads").
type playhead struct {
	hand  Hand
	index int
}

func (p *playhead) next() NoteEvent {
	if len(p.hand) == 0 {
		return NoteEvent{}
	}
	ev := p.hand[p.index]
	p.index = (p.index + 1) % len(p.hand)
	return ev
}

// Compositor is the melody repository: it loads all melody files from a
// directory at construction and serves note events for the active melody.
type Compositor struct {
	logger    *slog.Logger
	melodies  map[string]*Melody
	active    string
	playheads []playhead
	rng       *rand.Rand
}

// New loads every melody file from dir, skipping malformed ones with a
// warning (spec §7 MalformedMelody). rng may be nil, in which case
// Sprinkle uses a private source seeded with 1.
func New(dir string, logger *slog.Logger, rng *rand.Rand) (*Compositor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	c := &Compositor{
		logger:   logger,
		melodies: make(map[string]*Melody),
		rng:      rng,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("compositor: read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		melody, err := loadMelodyFile(path)
		if err != nil {
			logger.Warn("skipping malformed melody", "path", path, "error", err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		c.melodies[name] = melody
	}

	return c, nil
}

// loadMelodyFile parses one JSON-with-comments melody file.
func loadMelodyFile(path string) (*Melody, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed rawMelody
	if err := json.Unmarshal(stripComments(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	hands := parsed.Hands
	if len(hands) == 0 && len(parsed.Notes) > 0 {
		hands = [][]rawEvent{parsed.Notes}
	}
	if len(hands) == 0 {
		return nil, fmt.Errorf("no hands and no legacy notes")
	}
	if len(hands) > 4 {
		hands = hands[:4]
	}

	melody := &Melody{
		Title:      parsed.Title,
		TimeSigNum: defaultMeterNum,
		TimeSigDen: defaultMeterDen,
		Structural: map[string]any{},
	}
	if parsed.Tempo != nil {
		melody.TempoBPM = *parsed.Tempo
	}
	if parsed.TimeSignature != "" {
		if num, den, ok := parseMeter(parsed.TimeSignature); ok {
			melody.TimeSigNum, melody.TimeSigDen = num, den
		}
	}
	if parsed.Structure != nil {
		melody.Structural["structure"] = parsed.Structure
	}

	for _, rawHand := range hands {
		var hand Hand
		for _, re := range rawHand {
			ev, ok := re.toNoteEvent()
			if !ok {
				continue // missing/unparseable frequency: skip per spec §4.4
			}
			hand = append(hand, ev)
		}
		if len(hand) == 0 {
			continue
		}
		melody.Hands = append(melody.Hands, hand)
	}

	if len(melody.Hands) == 0 {
		return nil, fmt.Errorf("all hands were empty after filtering")
	}

	return melody, nil
}

func parseMeter(sig string) (num, den int, ok bool) {
	parts := strings.SplitN(sig, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return 0, 0, false
	}
	return n, d, true
}

// Start loads the named melody's hands and resets all playhead indices to
// zero.
func (c *Compositor) Start(name string) error {
	melody, ok := c.melodies[name]
	if !ok {
		return fmt.Errorf("compositor: unknown melody %q", name)
	}
	c.active = name
	c.playheads = make([]playhead, len(melody.Hands))
	for i, hand := range melody.Hands {
		c.playheads[i] = playhead{hand: hand}
	}
	return nil
}

// NextEvent returns one sample per hand, advancing each hand's index
// modulo that hand's length. Never blocks, never allocates after startup
// beyond the returned slices (spec §4.4 invariant).
func (c *Compositor) NextEvent() (notes, durations, intensities []float64) {
	notes = make([]float64, len(c.playheads))
	durations = make([]float64, len(c.playheads))
	intensities = make([]float64, len(c.playheads))

	for i := range c.playheads {
		ev := c.playheads[i].next()
		notes[i] = ev.FrequencyHz
		durations[i] = ev.DurationBeats
		intensities[i] = ev.Intensity
	}
	return notes, durations, intensities
}

// GetFullSequence returns the entire first-hand sequence for analysis
// lookahead.
func (c *Compositor) GetFullSequence() Hand {
	melody, ok := c.melodies[c.active]
	if !ok || len(melody.Hands) == 0 {
		return nil
	}
	return melody.Hands[0]
}

// GetTempo returns the active melody's tempo, or def if unset.
func (c *Compositor) GetTempo(def float64) float64 {
	melody, ok := c.melodies[c.active]
	if !ok || melody.TempoBPM <= 0 {
		return def
	}
	return melody.TempoBPM
}

// GetMeter returns the active melody's time signature, defaulting to 4/4.
func (c *Compositor) GetMeter() (num, den int) {
	melody, ok := c.melodies[c.active]
	if !ok {
		return defaultMeterNum, defaultMeterDen
	}
	return melody.TimeSigNum, melody.TimeSigDen
}

// Sprinkle returns a Bernoulli trial with success probability p, used by
// higher layers for stochastic accents.
func (c *Compositor) Sprinkle(p float64) bool {
	return c.rng.Float64() < p
}

// Names returns the set of loaded melody names, for discovery by callers.
func (c *Compositor) Names() []string {
	names := make([]string, 0, len(c.melodies))
	for name := range c.melodies {
		names = append(names, name)
	}
	return names
}
