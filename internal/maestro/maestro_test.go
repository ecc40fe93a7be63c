package maestro

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cartomix/maestro/internal/arranger"
	"github.com/cartomix/maestro/internal/automix"
	"github.com/cartomix/maestro/internal/compositor"
	"github.com/cartomix/maestro/internal/engine"
	"github.com/cartomix/maestro/internal/progression"
	"github.com/cartomix/maestro/internal/registry"
)

func newTestRig(t *testing.T) (*Maestro, *engine.CommandQueue) {
	t.Helper()
	dir := t.TempDir()
	melody := `{"tempo":240,"hands":[[{"frequency":440,"duration_beats":0.25},{"frequency":440,"duration_beats":0.25}]]}`
	if err := os.WriteFile(filepath.Join(dir, "m.json"), []byte(melody), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	comp, err := compositor.New(dir, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("compositor.New: %v", err)
	}
	if err := comp.Start("m"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	reg := registry.New(nil)
	synth := progression.New("pop", 0, rand.New(rand.NewSource(1)))
	mixer := automix.NewAutoMixer(automix.DefaultSampleRate)
	arr := arranger.New(comp, synth, mixer, automix.DefaultTargetLUFS, nil)
	queue := engine.NewCommandQueue(256, nil)

	// Tiny block size and a fast tempo keep the loop's sleep short so
	// tests observe several iterations quickly.
	m := New(nil, reg, arr, queue, 0.25, 7)
	return m, queue
}

func TestEnterZoneLaunchesLoopThatEnqueuesStaticPresets(t *testing.T) {
	m, queue := newTestRig(t)
	m.EnterZone("ambient", []string{"dual_oscillator_drone"}, nil)
	defer m.LeaveZone("ambient")

	deadline := time.After(2 * time.Second)
	for {
		if cmd, ok := queue.Dequeue(); ok && cmd.Preset == "dual_oscillator_drone" {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a static preset command")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEnterZoneOnActiveNameReplacesPriorLoop(t *testing.T) {
	m, _ := newTestRig(t)
	m.EnterZone("z", []string{"dual_oscillator_drone"}, nil)
	m.mu.Lock()
	first := m.zones["z"]
	m.mu.Unlock()

	m.EnterZone("z", []string{"filtered_noise_bed"}, nil)
	m.mu.Lock()
	second := m.zones["z"]
	m.mu.Unlock()

	if first == second {
		t.Fatal("expected a fresh zone handle after re-entering an active name")
	}
	select {
	case <-first.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the prior loop to have been cancelled")
	}

	m.LeaveZone("z")
}

func TestLeaveZoneStopsLoopAndRemovesFromTable(t *testing.T) {
	m, _ := newTestRig(t)
	m.EnterZone("gone", []string{"dual_oscillator_drone"}, nil)
	m.LeaveZone("gone")

	snap := m.Snapshot()
	for _, z := range snap {
		if z.Name == "gone" {
			t.Fatal("expected zone to be removed from the snapshot after LeaveZone")
		}
	}
}

func TestLeaveZoneEnqueuesStopCommandsForOwnedPresets(t *testing.T) {
	m, queue := newTestRig(t)
	m.EnterZone("fade", []string{"dual_oscillator_drone"}, nil)
	time.Sleep(20 * time.Millisecond)
	// drain whatever play_preset commands accumulated before leaving
	for {
		if _, ok := queue.Dequeue(); !ok {
			break
		}
	}

	m.LeaveZone("fade")

	found := false
	for {
		cmd, ok := queue.Dequeue()
		if !ok {
			break
		}
		if cmd.Kind == engine.StopPreset && cmd.Preset == "dual_oscillator_drone" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a stop_preset command for the zone's static preset on LeaveZone")
	}
}

// TestStepParamClampsToWindow implements spec §8 invariant 3 / scenario
// S6: after many step() calls, every value lies in [0.5*default, 2*default].
func TestStepParamClampsToWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	value := 100.0
	const def = 100.0
	for i := 0; i < 10000; i++ {
		value = stepParam(rng, value, def)
		if value < 50 || value > 200 {
			t.Fatalf("iteration %d: value %v outside [50,200]", i, value)
		}
	}
}

func TestStepParamZeroDefaultClampsToUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	value := 0.0
	for i := 0; i < 1000; i++ {
		value = stepParam(rng, value, 0)
		if value < 0 || value > 1 {
			t.Fatalf("iteration %d: value %v outside [0,1] for zero default", i, value)
		}
	}
}

func TestSnapshotReportsZoneState(t *testing.T) {
	m, _ := newTestRig(t)
	m.EnterZone("watched", []string{"dual_oscillator_drone"}, map[string]string{"melody": "clipped_sine_lead"})
	defer m.LeaveZone("watched")

	time.Sleep(10 * time.Millisecond)
	snap := m.Snapshot()
	var found bool
	for _, z := range snap {
		if z.Name != "watched" {
			continue
		}
		found = true
		if z.Tempo < minTempo || z.Tempo > maxTempo {
			t.Errorf("tempo %v out of [%v,%v]", z.Tempo, minTempo, maxTempo)
		}
		if z.Energy < 0.4 || z.Energy > 1.0 {
			t.Errorf("energy %v out of expected [0.4,1.0] band", z.Energy)
		}
	}
	if !found {
		t.Fatal("expected \"watched\" in snapshot")
	}
}
