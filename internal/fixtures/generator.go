// Package fixtures writes small JSONC melody files — with comments,
// polymetric hands, and deliberate edge cases — to disk for manual
// exercise of the compositor and for test fixtures (SPEC_FULL §12,
// adapted from the teacher's internal/fixtures/generator.go WAV
// fixture writer).
package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config controls which melody fixtures Generate writes.
type Config struct {
	OutputDir      string
	IncludeTwoNote bool // two_note.json, spec §8 scenario S1
	IncludeChord   bool // simple_triad.json: a C major triad as three simultaneous "hands"
	IncludePolymetric bool // polymetric.json: hands of different lengths, desynchronizing by design
	IncludeEdgeCases  bool // edge_cases.json: a rest (freq 0) and a missing-frequency event to skip
}

// Manifest records what Generate wrote, for tests/consumers.
type Manifest struct {
	Files []string `json:"files"`
}

// Generate writes the configured melody fixtures plus a manifest.json
// into cfg.OutputDir.
func Generate(cfg Config) (*Manifest, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./melodies"
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir output: %w", err)
	}

	manifest := &Manifest{}

	if cfg.IncludeTwoNote {
		if err := writeJSONC(cfg.OutputDir, "two_note.json", twoNoteJSONC); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, "two_note.json")
	}
	if cfg.IncludeChord {
		if err := writeJSONC(cfg.OutputDir, "simple_triad.json", simpleTriadJSONC); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, "simple_triad.json")
	}
	if cfg.IncludePolymetric {
		if err := writeJSONC(cfg.OutputDir, "polymetric.json", polymetricJSONC); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, "polymetric.json")
	}
	if cfg.IncludeEdgeCases {
		if err := writeJSONC(cfg.OutputDir, "edge_cases.json", edgeCasesJSONC); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, "edge_cases.json")
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "manifest.json"), data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	return manifest, nil
}

func writeJSONC(dir, name, body string) error {
	var buf bytes.Buffer
	buf.WriteString(body)
	return os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644)
}

// twoNoteJSONC is spec §8 scenario S1's literal fixture.
const twoNoteJSONC = `{
  // two alternating notes at 120 BPM, 4/4 — the canonical playhead test
  "title": "two_note",
  "tempo": 120,
  "time_signature": "4/4",
  "hands": [
    [
      { "frequency": 440.0, "duration_beats": 1.0 },
      { "frequency": 523.25, "duration_beats": 1.0 }
    ]
  ]
}
`

// simpleTriadJSONC spells a static C major triad across three hands, for
// exercising harmonic analysis with an unambiguous tonic.
const simpleTriadJSONC = `{
  "title": "simple_triad",
  "tempo": 96,
  "time_signature": "4/4",
  "hands": [
    [ { "frequency": 261.63, "duration_beats": 1.0 } ], // C4
    [ { "frequency": 329.63, "duration_beats": 1.0 } ], // E4
    [ { "frequency": 392.00, "duration_beats": 1.0 } ]  // G4
  ]
}
`

// polymetricJSONC gives hands of different lengths so they desynchronize
// by design (spec §4.4, §9 "Polymetric hand playheads").
const polymetricJSONC = `{
  "title": "polymetric",
  "tempo": 110,
  /* hand 0 has 3 events, hand 1 has 4: they drift out of phase over time */
  "hands": [
    [
      { "frequency": 220.0, "duration_beats": 1.5 },
      { "frequency": 246.94, "duration_beats": 1.0 },
      { "frequency": 261.63, "duration_beats": 0.5 }
    ],
    [
      { "frequency": 440.0, "duration_beats": 0.5, "intensity": 0.6 },
      { "frequency": 0, "duration_beats": 0.5 },
      { "frequency": 493.88, "duration_beats": 1.0 },
      { "frequency": 523.25, "duration_beats": 1.0 }
    ]
  ]
}
`

// edgeCasesJSONC carries a rest (frequency 0, a valid event) and an
// event with no frequency field at all, which the compositor must skip
// (spec §4.4 "Events with a missing or unparseable frequency are
// skipped").
const edgeCasesJSONC = `{
  "title": "edge_cases",
  "notes": [
    { "frequency": 330.0, "duration_beats": 1.0 },
    { "frequency": 0, "duration_beats": 1.0 },       // rest
    { "duration_beats": 1.0 },                        // missing frequency: skipped
    { "frequency": 392.0, "duration_beats": 2.0, "intensity": 1.0 }
  ]
}
`
