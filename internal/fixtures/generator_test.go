package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cartomix/maestro/internal/compositor"
)

func TestGenerateWritesAllConfiguredFiles(t *testing.T) {
	dir := t.TempDir()
	manifest, err := Generate(Config{
		OutputDir:         dir,
		IncludeTwoNote:    true,
		IncludeChord:      true,
		IncludePolymetric: true,
		IncludeEdgeCases:  true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(manifest.Files) != 4 {
		t.Fatalf("expected 4 files, got %d: %v", len(manifest.Files), manifest.Files)
	}
	for _, name := range manifest.Files {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "manifest.json")); err != nil {
		t.Errorf("expected manifest.json to exist: %v", err)
	}
}

func TestGeneratedTwoNoteLoadsAndMatchesScenarioS1(t *testing.T) {
	dir := t.TempDir()
	if _, err := Generate(Config{OutputDir: dir, IncludeTwoNote: true}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	c, err := compositor.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	if err := c.Start("two_note"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	wantFreqs := []float64{440, 523.25, 440, 523.25, 440, 523.25, 440, 523.25}
	for i, want := range wantFreqs {
		notes, durations, intensities := c.NextEvent()
		if len(notes) != 1 || notes[0] != want {
			t.Fatalf("event %d: got freq %v, want %v", i, notes, want)
		}
		if durations[0] != 1.0 {
			t.Errorf("event %d: got duration %v, want 1.0", i, durations[0])
		}
		if intensities[0] != 0.8 {
			t.Errorf("event %d: got intensity %v, want 0.8 (default)", i, intensities[0])
		}
	}
}

func TestGeneratedEdgeCasesSkipsUnparseableFrequency(t *testing.T) {
	dir := t.TempDir()
	if _, err := Generate(Config{OutputDir: dir, IncludeEdgeCases: true}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	c, err := compositor.New(dir, nil, nil)
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	if err := c.Start("edge_cases"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// 3 surviving events (the missing-frequency one is skipped): 330, 0 (rest), 392.
	wantFreqs := []float64{330, 0, 392}
	for i, want := range wantFreqs {
		notes, _, _ := c.NextEvent()
		if notes[0] != want {
			t.Fatalf("event %d: got freq %v, want %v", i, notes[0], want)
		}
	}
}
