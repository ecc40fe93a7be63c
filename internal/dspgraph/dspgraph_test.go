package dspgraph

import (
	"math"
	"testing"
)

const testSampleRate = 48000

func TestOscillatorProducesBoundedSine(t *testing.T) {
	const blockSize = 256
	osc := NewOscillator(testSampleRate, blockSize)
	bus := NewBus(blockSize)
	if err := osc.Instantiate(map[string]float64{"freq_hz": 440, "amp": 0.5}); err != nil {
		t.Fatal(err)
	}
	osc.Connect(bus)

	block := make([]float64, blockSize)
	osc.Process(block)
	out := bus.Sum()

	for i, s := range out {
		if math.Abs(s) > 0.5+1e-9 {
			t.Fatalf("sample %d = %v exceeds amplitude 0.5", i, s)
		}
	}
}

func TestFadeEnvelopeAttackIsMonotonicallyNondecreasing(t *testing.T) {
	const blockSize = 512
	input := make([]float64, blockSize)
	for i := range input {
		input[i] = 1
	}
	env := NewFadeEnvelope(testSampleRate, blockSize, input)
	if err := env.Instantiate(map[string]float64{"attack_ms": 10, "release_ms": 50}); err != nil {
		t.Fatal(err)
	}
	bus := NewBus(blockSize)
	env.Connect(bus)
	env.Set("gate", 1, 0)

	env.Process(nil)
	out := bus.Sum()
	prev := -1.0
	for i, s := range out {
		if s < prev-1e-12 {
			t.Fatalf("attack not monotonic at sample %d: %v after %v", i, s, prev)
		}
		prev = s
	}
}

func TestFadeEnvelopeReleaseIsMonotonicallyNonincreasing(t *testing.T) {
	const blockSize = 4096
	input := make([]float64, blockSize)
	for i := range input {
		input[i] = 1
	}
	env := NewFadeEnvelope(testSampleRate, blockSize, input)
	env.Instantiate(map[string]float64{"attack_ms": 5, "release_ms": 20})
	bus := NewBus(blockSize)
	env.Connect(bus)

	env.Set("gate", 1, 0)
	env.Process(nil)
	env.Set("gate", 0, 0)
	env.Process(nil)
	out := bus.Sum()

	prev := math.Inf(1)
	for i, s := range out {
		if s > prev+1e-12 {
			t.Fatalf("release not monotonic at sample %d: %v after %v", i, s, prev)
		}
		prev = s
	}
	if !env.Done() {
		t.Errorf("expected envelope to reach Done after a full release")
	}
}

func TestFadeEnvelopeRejectsTooFastAttackRelease(t *testing.T) {
	env := NewFadeEnvelope(testSampleRate, 64, make([]float64, 64))
	env.Instantiate(map[string]float64{"attack_ms": 0, "release_ms": 0})
	if env.attackMs < minAttackMs {
		t.Errorf("attackMs = %v, want >= %v", env.attackMs, minAttackMs)
	}
	if env.releaseMs < minReleaseMs {
		t.Errorf("releaseMs = %v, want >= %v", env.releaseMs, minReleaseMs)
	}
}

func TestSlewedRampsOverExpectedSamples(t *testing.T) {
	s := newSlewed(0, 1000) // 1000 Hz for round numbers
	s.set(1, 10)            // 10ms @ 1000Hz = 10 samples
	for i := 0; i < 10; i++ {
		s.next()
	}
	if math.Abs(s.value()-1) > 1e-9 {
		t.Errorf("after 10 samples at 10ms/1000Hz, value = %v, want 1", s.value())
	}
}

func TestPannerCenterIsEqualPower(t *testing.T) {
	const blockSize = 8
	input := make([]float64, blockSize)
	for i := range input {
		input[i] = 1
	}
	p := NewPanner(testSampleRate, input)
	p.Instantiate(map[string]float64{"pan": 0})
	bus := NewBus(blockSize)
	p.Connect(bus)
	p.Process(nil)

	if math.Abs(p.left[0]-p.right[0]) > 1e-9 {
		t.Errorf("centered pan: left=%v right=%v, want equal", p.left[0], p.right[0])
	}
	if math.Abs(p.left[0]*p.left[0]+p.right[0]*p.right[0]-1) > 1e-9 {
		t.Errorf("equal-power law violated: l^2+r^2 = %v, want 1", p.left[0]*p.left[0]+p.right[0]*p.right[0])
	}
}

func TestBusSumsAllRegisteredInputs(t *testing.T) {
	bus := NewBus(4)
	a := []float64{1, 1, 1, 1}
	b := []float64{2, 2, 2, 2}
	bus.Register(a)
	bus.Register(b)
	out := bus.Sum()
	for _, v := range out {
		if v != 3 {
			t.Errorf("bus sum = %v, want 3", v)
		}
	}
}

func TestFilterRebuildsOnParamChange(t *testing.T) {
	input := make([]float64, 64)
	f := NewFilter(testSampleRate, input)
	f.Instantiate(map[string]float64{"kind_code": 0, "freq_hz": 1000, "q": 0.707})
	first := f.chain
	f.Set("freq_hz", 2000, 0)
	if f.chain == first {
		t.Errorf("expected a fresh biquad chain after freq_hz change")
	}
}

func TestSmoothedScalarZeroSlewGlidesOverDefault20ms(t *testing.T) {
	s := NewSmoothedScalar(testSampleRate)
	s.Instantiate(map[string]float64{"value": 0.2})
	s.Set("value", 0.9, 0) // slewMs <= 0 falls back to 20ms = 960 samples @ 48kHz
	block := make([]float64, 4)
	s.Process(block)
	want := 0.2 + 4*(0.9-0.2)/960
	if math.Abs(s.Value()-want) > 1e-9 {
		t.Errorf("SmoothedScalar value = %v, want %v (4 samples into a 20ms glide)", s.Value(), want)
	}
}

func TestMoogFilterProducesBoundedOutput(t *testing.T) {
	const blockSize = 256
	input := make([]float64, blockSize)
	for i := range input {
		input[i] = 1
	}
	f, err := NewMoogFilter(testSampleRate, input)
	if err != nil {
		t.Fatalf("NewMoogFilter: %v", err)
	}
	if err := f.Instantiate(map[string]float64{"cutoff_hz": 500, "resonance": 1}); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	bus := NewBus(blockSize)
	f.Connect(bus)
	f.Process(nil)
	out := bus.Sum()
	for i, s := range out {
		if math.IsNaN(s) || math.Abs(s) > 10 {
			t.Fatalf("moog filter sample %d out of expected bound: %v", i, s)
		}
	}
}

func TestGateAttenuatesBelowThreshold(t *testing.T) {
	const blockSize = 512
	input := make([]float64, blockSize)
	for i := range input {
		input[i] = 0.001 // well below any reasonable threshold
	}
	g, err := NewGate(testSampleRate, input)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := g.Instantiate(map[string]float64{"threshold_db": -20, "ratio": 50, "attack_ms": 0.1, "release_ms": 10}); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	bus := NewBus(blockSize)
	g.Connect(bus)
	for i := 0; i < 10; i++ {
		g.Process(nil)
	}
	out := bus.Sum()
	last := out[len(out)-1]
	if math.Abs(last) >= 0.001 {
		t.Errorf("expected gate to attenuate a signal below threshold, got %v", last)
	}
}
