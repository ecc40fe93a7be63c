package arranger

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cartomix/maestro/internal/automix"
	"github.com/cartomix/maestro/internal/compositor"
	"github.com/cartomix/maestro/internal/engine"
	"github.com/cartomix/maestro/internal/progression"
)

func newTestArranger(t *testing.T, melodyJSON string) (*Arranger, *compositor.Compositor) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.json"), []byte(melodyJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	comp, err := compositor.New(dir, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	if err := comp.Start("test"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	synth := progression.New("pop", 0, rand.New(rand.NewSource(1)))
	mixer := automix.NewAutoMixer(automix.DefaultSampleRate)
	return New(comp, synth, mixer, automix.DefaultTargetLUFS, nil), comp
}

const triadMelody = `{
  "tempo": 120,
  "hands": [[
    { "frequency": 261.63, "duration_beats": 1.0 },
    { "frequency": 329.63, "duration_beats": 1.0 },
    { "frequency": 392.00, "duration_beats": 1.0 },
    { "frequency": 261.63, "duration_beats": 1.0 },
    { "frequency": 329.63, "duration_beats": 1.0 },
    { "frequency": 392.00, "duration_beats": 1.0 },
    { "frequency": 261.63, "duration_beats": 1.0 },
    { "frequency": 329.63, "duration_beats": 1.0 }
  ]]
}`

// TestPrepareBlockLengthLaw implements spec §8 invariant 4: for every
// orchestrated part, sum(part.durations) ~= beats, tolerance 1e-6.
func TestPrepareBlockLengthLaw(t *testing.T) {
	arr, _ := newTestArranger(t, triadMelody)
	parts := arr.PrepareBlock(8)

	for role, part := range parts {
		var sum float64
		for _, d := range part.Durations {
			sum += d
		}
		if diff := sum - 8; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("part %s: sum(durations)=%v, want ~8 (diff %v)", role, sum, diff)
		}
	}
}

func TestPrepareBlockIncludesMelodyBassPiano(t *testing.T) {
	arr, _ := newTestArranger(t, triadMelody)
	parts := arr.PrepareBlock(8)

	for _, role := range []string{"melody", "bass", "piano"} {
		p, ok := parts[role]
		if !ok {
			t.Fatalf("expected part %q in result", role)
		}
		if len(p.Notes) == 0 {
			t.Errorf("part %q has no notes", role)
		}
		if len(p.Notes) != len(p.Durations) || len(p.Notes) != len(p.Intensity) {
			t.Errorf("part %q: notes/durations/intensity length mismatch", role)
		}
	}
}

func TestPrepareBlockAppliesAutoMixGain(t *testing.T) {
	arr, _ := newTestArranger(t, triadMelody)
	parts := arr.PrepareBlock(8)

	for role, p := range parts {
		if !p.HasGain {
			t.Errorf("part %q: expected HasGain after PrepareBlock's auto-mix step", role)
		}
	}
}

func TestRenderBlockSkipsPartsWithNoConfiguredPreset(t *testing.T) {
	arr, _ := newTestArranger(t, triadMelody)
	parts := arr.PrepareBlock(8)

	queue := engine.NewCommandQueue(16, nil)
	arr.RenderBlock(parts, map[string]string{"melody": "clipped_sine_lead"}, queue)

	cmd, ok := queue.Dequeue()
	if !ok {
		t.Fatal("expected one enqueued command for melody part")
	}
	if cmd.Preset != "clipped_sine_lead" {
		t.Errorf("got preset %q, want clipped_sine_lead", cmd.Preset)
	}
	if _, ok := queue.Dequeue(); ok {
		t.Fatal("expected no further commands: bass/piano had no configured preset")
	}
}

func TestPrepareBlockOnEmptyMelodyResolvesToTonicTriad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "silent.json"), []byte(`{"hands":[[{"frequency":0,"duration_beats":8}]]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	comp, err := compositor.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	if err := comp.Start("silent"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	synth := progression.New("pop", 0, rand.New(rand.NewSource(1)))
	mixer := automix.NewAutoMixer(automix.DefaultSampleRate)
	arr := New(comp, synth, mixer, automix.DefaultTargetLUFS, nil)

	parts := arr.PrepareBlock(8)
	if _, ok := parts["bass"]; !ok {
		t.Fatal("expected a bass part even for an all-rest melody (AnalysisDegenerate)")
	}
}
