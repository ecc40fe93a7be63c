package compositor

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// TestTwoNoteScenario implements spec §8 scenario S1.
func TestTwoNoteScenario(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "two_note.json", `{
		// two-note loop
		"tempo": 120,
		"time_signature": "4/4",
		"hands": [
			[ { "frequency": 440, "duration_beats": 1.0 },
			  { "frequency": 523.25, "duration_beats": 1.0 } ] /* block comment */
		]
	}`)

	c, err := New(dir, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start("two_note"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var notes, durations, intensities []float64
	for i := 0; i < 8; i++ {
		n, d, in := c.NextEvent()
		notes = append(notes, n...)
		durations = append(durations, d...)
		intensities = append(intensities, in...)
	}

	wantNotes := []float64{440, 523.25, 440, 523.25, 440, 523.25, 440, 523.25}
	for i, want := range wantNotes {
		if notes[i] != want {
			t.Errorf("note %d = %v, want %v", i, notes[i], want)
		}
		if durations[i] != 1.0 {
			t.Errorf("duration %d = %v, want 1.0", i, durations[i])
		}
		if intensities[i] != 0.8 {
			t.Errorf("intensity %d = %v, want 0.8", i, intensities[i])
		}
	}
}

// TestCompositorDeterminism checks spec §8 invariant 1: k*sum(lengths)
// calls return each event exactly k times per hand, and Start resets it.
func TestCompositorDeterminism(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "loop.json", `{
		"hands": [[
			{"frequency": 100, "duration_beats": 1},
			{"frequency": 200, "duration_beats": 1},
			{"frequency": 300, "duration_beats": 1}
		]]
	}`)

	c, err := New(dir, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start("loop"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const k = 4
	counts := map[float64]int{}
	for i := 0; i < k*3; i++ {
		n, _, _ := c.NextEvent()
		counts[n[0]]++
	}
	for _, freq := range []float64{100, 200, 300} {
		if counts[freq] != k {
			t.Errorf("freq %v seen %d times, want %d", freq, counts[freq], k)
		}
	}

	if err := c.Start("loop"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	n, _, _ := c.NextEvent()
	if n[0] != 100 {
		t.Errorf("after restart first note = %v, want 100", n[0])
	}
}

func TestPolymetricHandsDesync(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "poly.json", `{
		"hands": [
			[{"frequency": 1, "duration_beats": 1}, {"frequency": 2, "duration_beats": 1}],
			[{"frequency": 10, "duration_beats": 1}, {"frequency": 20, "duration_beats": 1}, {"frequency": 30, "duration_beats": 1}]
		]
	}`)

	c, err := New(dir, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start("poly"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var hand0, hand1 []float64
	for i := 0; i < 6; i++ {
		n, _, _ := c.NextEvent()
		hand0 = append(hand0, n[0])
		hand1 = append(hand1, n[1])
	}

	wantHand0 := []float64{1, 2, 1, 2, 1, 2}
	wantHand1 := []float64{10, 20, 30, 10, 20, 30}
	for i := range wantHand0 {
		if hand0[i] != wantHand0[i] || hand1[i] != wantHand1[i] {
			t.Fatalf("step %d: hand0=%v hand1=%v", i, hand0, hand1)
		}
	}
}

func TestSkipsMissingFrequencyAndMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bad.json", `{ not json `)
	writeFixture(t, dir, "partial.json", `{
		"hands": [[
			{"duration_beats": 1},
			{"frequency": 50, "duration_beats": 2}
		]]
	}`)

	c, err := New(dir, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start("partial"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, ok := c.melodies["bad"]; ok {
		t.Fatalf("malformed file should have been skipped")
	}
	n, d, in := c.NextEvent()
	if n[0] != 50 || d[0] != 2 || in[0] != defaultIntensity {
		t.Errorf("unexpected event %v %v %v", n, d, in)
	}
}

func TestLegacyNotesField(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "legacy.json", `{"notes": [{"frequency": 5, "duration": 2, "intensity": 0.3}]}`)

	c, err := New(dir, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start("legacy"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	n, d, in := c.NextEvent()
	if n[0] != 5 || d[0] != 2 || in[0] != 0.3 {
		t.Errorf("legacy notes field not honored: %v %v %v", n, d, in)
	}
}

func TestSprinkleBernoulli(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "x.json", `{"notes":[{"frequency":1,"duration_beats":1}]}`)
	c, err := New(dir, nil, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Sprinkle(0) {
		t.Errorf("p=0 should never trigger")
	}
	if !c.Sprinkle(1) {
		t.Errorf("p=1 should always trigger")
	}
}
