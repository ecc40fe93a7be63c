// Package arranger drives the per-block arrangement pipeline: gather
// melody, analyse, progress, orchestrate, auto-mix, render. See spec
// §4.5 and the data-flow diagram in §2.
package arranger

import (
	"log/slog"

	"github.com/cartomix/maestro/internal/automix"
	"github.com/cartomix/maestro/internal/compositor"
	"github.com/cartomix/maestro/internal/engine"
	"github.com/cartomix/maestro/internal/harmony"
	"github.com/cartomix/maestro/internal/orchestrator"
	"github.com/cartomix/maestro/internal/progression"
)

// DefaultBlockBeats is the scheduler quantum's default span (spec §4.6
// step 5, "block_beats default 8").
const DefaultBlockBeats = 8.0

// DefaultTargetLUFS mirrors automix.DefaultTargetLUFS for callers that
// only import this package.
const DefaultTargetLUFS = automix.DefaultTargetLUFS

// Arranger wires one Compositor to the harmony/progression/orchestrator/
// automix chain and renders the resulting parts to an AudioEngine.
type Arranger struct {
	logger     *slog.Logger
	compositor *compositor.Compositor
	synth      *progression.Synth
	mixer      *automix.AutoMixer
	targetLUFS float64
}

// New builds an Arranger. synth and mixer are constructed by the caller
// so genre/temperature/sample-rate configuration lives in one place
// (cmd/engine's wiring), not duplicated here.
func New(c *compositor.Compositor, synth *progression.Synth, mixer *automix.AutoMixer, targetLUFS float64, logger *slog.Logger) *Arranger {
	if logger == nil {
		logger = slog.Default()
	}
	if targetLUFS == 0 {
		targetLUFS = DefaultTargetLUFS
	}
	return &Arranger{logger: logger, compositor: c, synth: synth, mixer: mixer, targetLUFS: targetLUFS}
}

// PrepareBlock runs steps 1-5 of spec §4.5 for one block of beats and
// returns the mixed parts, keyed by instrumental role.
func (a *Arranger) PrepareBlock(beats float64) map[string]*orchestrator.Part {
	if beats <= 0 {
		beats = DefaultBlockBeats
	}

	// Step 1: gather melody until accumulated duration >= beats.
	var notes, durations, intensities []float64
	var acc float64
	for acc < beats {
		n, d, i := a.compositor.NextEvent()
		if len(n) == 0 {
			break // no active melody / no hands: degrade to silence
		}
		notes = append(notes, n...)
		durations = append(durations, d...)
		intensities = append(intensities, i...)
		for _, dur := range d {
			acc += dur
		}
	}

	melodyNotes := make([]harmony.Note, len(notes))
	for i := range notes {
		melodyNotes[i] = harmony.Note{FrequencyHz: notes[i], DurationBeats: durations[i]}
	}

	// Step 2: harmonic analysis. An empty span resolves to the tonic
	// triad per AnalysisDegenerate (spec §7) via harmony.Describe's own
	// empty-window handling.
	analysis := harmony.Describe(melodyNotes)

	// Step 3: progression. Use the analyzed span (sum of durations) so
	// the bar count tracks what was actually gathered, not the nominal
	// block size, when the melody runs dry.
	span := beats
	if len(analysis.Durations) > 0 {
		span = sumDurations(analysis.Durations)
	}
	chordSymbols := a.synth.Next(analysis.Key, span)

	// Step 4: orchestration. Each chord holds the bar's share of the
	// analyzed span, evenly divided, so sum(durations) == span exactly
	// (spec §8 invariant 4) regardless of the harmonic analysis's
	// internal (1-beat) window granularity, which is a finer grid used
	// only for triad matching in step 2.
	chordDurations := make([]float64, len(chordSymbols))
	if n := len(chordSymbols); n > 0 {
		perChord := span / float64(n)
		for i := range chordDurations {
			chordDurations[i] = perChord
		}
	}
	parts := orchestrator.Voice(chordSymbols, chordDurations)

	// Inject the raw melody part (spec §4.5 step 4, last sentence).
	parts["melody"] = &orchestrator.Part{Notes: notes, Durations: durations, Intensity: intensities}

	// Step 5: auto-mix.
	a.mixer.Autoset(parts, a.targetLUFS)

	return parts
}

// RenderBlock issues play_preset for each part keyed by partPresets
// (role -> preset kind name) into queue. Parts with no configured
// preset name are skipped with a warning (spec §7 UnknownPreset covers
// the inverse case inside the engine; here we simply never enqueue a
// part with nowhere to go).
func (a *Arranger) RenderBlock(parts map[string]*orchestrator.Part, partPresets map[string]string, queue *engine.CommandQueue) {
	for role, part := range parts {
		presetName, ok := partPresets[role]
		if !ok {
			a.logger.Warn("arranger: no preset configured for part", "part", role)
			continue
		}
		params := partToParams(part)
		if err := queue.Enqueue(engine.PlayPresetCommand(presetName, params)); err != nil {
			a.logger.Warn("arranger: render_block enqueue failed", "part", role, "preset", presetName, "error", err)
		}
	}
}

func partToParams(p *orchestrator.Part) map[string]float64 {
	params := map[string]float64{}
	if len(p.Notes) > 0 {
		params["note_count"] = float64(len(p.Notes))
		params["freq_hz"] = p.Notes[0]
	}
	if p.HasGain {
		params["gain_db"] = p.GainDB
	}
	if p.EnableReverb {
		params["enable_reverb"] = 1
	}
	if p.EnableChorus {
		params["enable_chorus"] = 1
	}
	return params
}

func sumDurations(d []float64) float64 {
	var total float64
	for _, v := range d {
		total += v
	}
	return total
}
