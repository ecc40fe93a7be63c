package preset

import (
	"math"

	"github.com/cartomix/maestro/internal/dspgraph"
)

// Kinds maps every preset kind name the core ships to its Builder (spec
// §4.2's eight kinds). internal/registry discovers kinds through this
// table.
var Kinds = map[string]Builder{
	"dual_oscillator_drone": buildDualOscillatorDrone,
	"harmonic_swarm":        buildHarmonicSwarm,
	"filtered_noise_bed":    buildFilteredNoiseBed,
	"fm_chorus_pad":         buildFMChorusPad,
	"impulse_response_tap":  buildImpulseResponseTap,
	"gated_noise_hits":      buildGatedNoiseHits,
	"clipped_sine_lead":     buildClippedSineLead,
	"sample_player_voice":   buildSamplePlayerVoice,
}

// applyUniversalTail wires gain, reverb/chorus, and stereo width onto a
// preset's dry signal per the universal options every kind recognizes
// (spec §4.2), ending in the fade envelope and a panner registered onto
// bus.
func applyUniversalTail(bus *dspgraph.Bus, sampleRate float64, blockSize int, dry []float64, opts Options) (*dspgraph.FadeEnvelope, []dspgraph.Node, error) {
	var nodes []dspgraph.Node
	signal := dry

	gain := dspgraph.NewGain(sampleRate, signal)
	if err := gain.Instantiate(map[string]float64{"gain_db": opts.GainDB}); err != nil {
		return nil, nil, err
	}
	nodes = append(nodes, gain)
	signal = gain.Scratch()

	if opts.EnableChorus {
		chorus, err := dspgraph.NewChorus(sampleRate, signal)
		if err != nil {
			return nil, nil, err
		}
		if err := chorus.Instantiate(nil); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, chorus)
		signal = chorus.Scratch()
	}
	if opts.EnableReverb {
		rev := dspgraph.NewReverb(signal)
		if err := rev.Instantiate(nil); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, rev)
		signal = rev.Scratch()
	}

	env := dspgraph.NewFadeEnvelope(sampleRate, blockSize, signal)
	if err := env.Instantiate(nil); err != nil {
		return nil, nil, err
	}
	nodes = append(nodes, env)

	panner := dspgraph.NewPanner(sampleRate, env.Scratch())
	stereoW := opts.StereoW
	if stereoW == 0 {
		stereoW = 1 // spec §4.2 default: full (unwidened) stereo field
	}
	if err := panner.Instantiate(map[string]float64{"pan": 0, "stereo_w": stereoW}); err != nil {
		return nil, nil, err
	}
	panner.Connect(bus)
	nodes = append(nodes, panner)

	return env, nodes, nil
}

func buildDualOscillatorDrone(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	osc1 := dspgraph.NewOscillator(sampleRate, blockSize)
	if err := osc1.Instantiate(map[string]float64{"freq_hz": 110, "amp": intensity}); err != nil {
		return nil, err
	}
	osc2 := newDriftingOscillator(sampleRate, blockSize, 110*1.003, 0.15, 0.05)
	if err := osc2.Instantiate(map[string]float64{"amp": intensity}); err != nil {
		return nil, err
	}
	mix := newMixNode(blockSize, osc1, osc2)

	env, tail, err := applyUniversalTail(bus, sampleRate, blockSize, mix.Scratch(), opts)
	if err != nil {
		return nil, err
	}

	scalars := map[string]*dspgraph.SmoothedScalar{
		"freq_hz": newBoundScalar(sampleRate, 110, func(v, slew float64) { osc1.Set("freq_hz", v, slew) }),
		"amp": newBoundScalar(sampleRate, intensity, func(v, slew float64) {
			osc1.Set("amp", v, slew)
			osc2.Set("amp", v, slew)
		}),
	}

	nodes := append([]dspgraph.Node{mix}, tail...)
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildHarmonicSwarm(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	const voices = 5
	var nodes []dspgraph.Node
	var envs []*dspgraph.FadeEnvelope
	oscillators := make([]*dspgraph.Oscillator, 0, voices)
	baseFreq := 220.0

	for v := 0; v < voices; v++ {
		detune := 1 + (float64(v)-float64(voices)/2)*0.004
		osc := dspgraph.NewOscillator(sampleRate, blockSize)
		if err := osc.Instantiate(map[string]float64{"freq_hz": baseFreq * detune, "amp": intensity / voices}); err != nil {
			return nil, err
		}
		delay, err := dspgraph.NewDelay(sampleRate, osc.Scratch())
		if err != nil {
			return nil, err
		}
		if err := delay.Instantiate(map[string]float64{"time_s": 0.05 + 0.01*float64(v), "feedback": 0.1, "mix": 0.15}); err != nil {
			return nil, err
		}
		env := dspgraph.NewFadeEnvelope(sampleRate, blockSize, delay.Scratch())
		if err := env.Instantiate(nil); err != nil {
			return nil, err
		}
		panner := dspgraph.NewPanner(sampleRate, env.Scratch())
		pan := -0.8 + 1.6*float64(v)/float64(voices-1)
		if err := panner.Instantiate(map[string]float64{"pan": pan}); err != nil {
			return nil, err
		}
		panner.Connect(bus)

		oscillators = append(oscillators, osc)
		envs = append(envs, env)
		nodes = append(nodes, osc, delay, env, panner)
	}

	group := &envelopeGroup{envs: envs}
	scalars := map[string]*dspgraph.SmoothedScalar{
		"intensity": newBoundScalar(sampleRate, intensity, func(v, slew float64) {
			for _, osc := range oscillators {
				osc.Set("amp", v/voices, slew)
			}
		}),
	}
	return &Graph{Nodes: nodes, Envelope: group, Scalars: scalars}, nil
}

func buildFilteredNoiseBed(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	noise := dspgraph.NewNoise(sampleRate, 1, blockSize)
	if err := noise.Instantiate(map[string]float64{"amp": intensity}); err != nil {
		return nil, err
	}

	var filterNode scratchNode
	var scalars map[string]*dspgraph.SmoothedScalar

	if opts.FilterFamily == "moog" {
		moog, err := dspgraph.NewMoogFilter(sampleRate, noise.Scratch())
		if err != nil {
			return nil, err
		}
		if err := moog.Instantiate(map[string]float64{"cutoff_hz": 800, "resonance": 1.2}); err != nil {
			return nil, err
		}
		filterNode = moog
		scalars = map[string]*dspgraph.SmoothedScalar{
			"freq_hz": newBoundScalar(sampleRate, 800, func(v, slew float64) { moog.Set("cutoff_hz", v, slew) }),
			"q":       newBoundScalar(sampleRate, 1.2, func(v, slew float64) { moog.Set("resonance", v, slew) }),
		}
	} else {
		filter := dspgraph.NewFilter(sampleRate, noise.Scratch())
		if err := filter.Instantiate(map[string]float64{"kind_code": 2, "freq_hz": 800, "q": 1.2}); err != nil {
			return nil, err
		}
		filterNode = filter
		scalars = map[string]*dspgraph.SmoothedScalar{
			"freq_hz": newBoundScalar(sampleRate, 800, func(v, slew float64) { filter.Set("freq_hz", v, slew) }),
			"q":       newBoundScalar(sampleRate, 1.2, func(v, slew float64) { filter.Set("q", v, slew) }),
		}
	}

	env, tail, err := applyUniversalTail(bus, sampleRate, blockSize, filterNode.Scratch(), opts)
	if err != nil {
		return nil, err
	}

	nodes := append([]dspgraph.Node{noise, filterNode}, tail...)
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildFMChorusPad(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	modulator := dspgraph.NewOscillator(sampleRate, blockSize)
	if err := modulator.Instantiate(map[string]float64{"freq_hz": 6, "amp": 8}); err != nil {
		return nil, err
	}
	carrier := dspgraph.NewOscillator(sampleRate, blockSize)
	if err := carrier.Instantiate(map[string]float64{"freq_hz": 330, "amp": intensity}); err != nil {
		return nil, err
	}

	chorus, err := dspgraph.NewChorus(sampleRate, carrier.Scratch())
	if err != nil {
		return nil, err
	}
	if err := chorus.Instantiate(map[string]float64{"mix": 0.35, "depth": 0.004, "speed_hz": 0.4, "stages": 4}); err != nil {
		return nil, err
	}

	env, tail, err := applyUniversalTail(bus, sampleRate, blockSize, chorus.Scratch(), opts)
	if err != nil {
		return nil, err
	}
	nodes := append([]dspgraph.Node{modulator, carrier, chorus}, tail...)
	scalars := map[string]*dspgraph.SmoothedScalar{
		"freq_hz": newBoundScalar(sampleRate, 330, func(v, slew float64) { carrier.Set("freq_hz", v, slew) }),
	}
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildImpulseResponseTap(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	noise := dspgraph.NewNoise(sampleRate, 2, blockSize)
	if err := noise.Instantiate(map[string]float64{"amp": intensity}); err != nil {
		return nil, err
	}
	rev := dspgraph.NewReverb(noise.Scratch())
	if err := rev.Instantiate(map[string]float64{"room_size": 0.9, "damp": 0.2, "wet": 1, "dry": 0}); err != nil {
		return nil, err
	}

	env := dspgraph.NewFadeEnvelope(sampleRate, blockSize, rev.Scratch())
	if err := env.Instantiate(map[string]float64{"attack_ms": 5, "release_ms": 3000}); err != nil {
		return nil, err
	}
	env.Connect(bus)

	nodes := []dspgraph.Node{noise, rev, env}
	scalars := map[string]*dspgraph.SmoothedScalar{
		"room_size": newBoundScalar(sampleRate, 0.9, func(v, slew float64) { rev.Set("room_size", v, slew) }),
	}
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildGatedNoiseHits(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	noise := dspgraph.NewNoise(sampleRate, 3, blockSize)
	if err := noise.Instantiate(map[string]float64{"amp": intensity}); err != nil {
		return nil, err
	}
	filter := dspgraph.NewFilter(sampleRate, noise.Scratch())
	if err := filter.Instantiate(map[string]float64{"kind_code": 1, "freq_hz": 2000, "q": 0.9}); err != nil {
		return nil, err
	}
	gate, err := dspgraph.NewGate(sampleRate, filter.Scratch())
	if err != nil {
		return nil, err
	}
	if err := gate.Instantiate(map[string]float64{"threshold_db": -30, "ratio": 20, "attack_ms": 0.2, "release_ms": 30}); err != nil {
		return nil, err
	}

	env := dspgraph.NewFadeEnvelope(sampleRate, blockSize, gate.Scratch())
	if err := env.Instantiate(map[string]float64{"attack_ms": 5, "release_ms": 60}); err != nil {
		return nil, err
	}
	env.Connect(bus)

	nodes := []dspgraph.Node{noise, filter, gate, env}
	scalars := map[string]*dspgraph.SmoothedScalar{
		"freq_hz": newBoundScalar(sampleRate, 2000, func(v, slew float64) { filter.Set("freq_hz", v, slew) }),
	}
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildClippedSineLead(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	osc := dspgraph.NewOscillator(sampleRate, blockSize)
	if err := osc.Instantiate(map[string]float64{"freq_hz": 440, "amp": intensity}); err != nil {
		return nil, err
	}
	dist, err := dspgraph.NewDistortion(sampleRate, osc.Scratch())
	if err != nil {
		return nil, err
	}
	if err := dist.Instantiate(map[string]float64{"drive": 8, "mix": 0.6}); err != nil {
		return nil, err
	}

	env, tail, err := applyUniversalTail(bus, sampleRate, blockSize, dist.Scratch(), opts)
	if err != nil {
		return nil, err
	}
	nodes := append([]dspgraph.Node{osc, dist}, tail...)
	scalars := map[string]*dspgraph.SmoothedScalar{
		"freq_hz": newBoundScalar(sampleRate, 440, func(v, slew float64) { osc.Set("freq_hz", v, slew) }),
		"drive":   newBoundScalar(sampleRate, 8, func(v, slew float64) { dist.Set("drive", v, slew) }),
	}
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

func buildSamplePlayerVoice(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, _ float64, opts Options) (*Graph, error) {
	// No table recorder/reader is wired in the retrieved pack (spec
	// §4.1 lists it as "assumed available"); a looping oscillator at a
	// fixed low partial stands in for a recorded one-shot voice.
	osc := dspgraph.NewOscillator(sampleRate, blockSize)
	if err := osc.Instantiate(map[string]float64{"freq_hz": 262, "amp": intensity}); err != nil {
		return nil, err
	}

	env, tail, err := applyUniversalTail(bus, sampleRate, blockSize, osc.Scratch(), opts)
	if err != nil {
		return nil, err
	}
	nodes := append([]dspgraph.Node{osc}, tail...)
	scalars := map[string]*dspgraph.SmoothedScalar{
		"freq_hz": newBoundScalar(sampleRate, 262, func(v, slew float64) { osc.Set("freq_hz", v, slew) }),
	}
	return &Graph{Nodes: nodes, Envelope: env, Scalars: scalars}, nil
}

// newBoundScalar builds a SmoothedScalar that forwards every Set
// straight to apply, so a kind can expose a friendly key in
// Graph.Scalars without a generic "scalar drives node" wiring layer.
func newBoundScalar(sampleRate, initial float64, apply func(value, slewMs float64)) *dspgraph.SmoothedScalar {
	s := dspgraph.NewSmoothedScalar(sampleRate)
	s.Instantiate(map[string]float64{"value": initial})
	s.OnSet(apply)
	return s
}

// mixNode sums two or more scratch-exposing nodes into one combined
// output buffer, letting a kind treat several generators as a single
// dry signal for applyUniversalTail.
type mixNode struct {
	children []dspgraph.Node
	sources  [][]float64
	out      []float64
}

type scratchNode interface {
	dspgraph.Node
	Scratch() []float64
}

func newMixNode(blockSize int, children ...scratchNode) *mixNode {
	m := &mixNode{out: make([]float64, blockSize)}
	for _, c := range children {
		m.children = append(m.children, c)
		m.sources = append(m.sources, c.Scratch())
	}
	return m
}

func (m *mixNode) Instantiate(map[string]float64) error { return nil }
func (m *mixNode) Connect(bus *dspgraph.Bus)             { bus.Register(m.out) }
func (m *mixNode) Set(string, float64, float64) error    { return nil }

func (m *mixNode) Process(block []float64) {
	for _, c := range m.children {
		c.Process(block)
	}
	for i := range m.out {
		m.out[i] = 0
	}
	for _, src := range m.sources {
		n := len(src)
		if n > len(m.out) {
			n = len(m.out)
		}
		for i := 0; i < n; i++ {
			m.out[i] += src[i]
		}
	}
}

func (m *mixNode) Destroy() {
	for _, c := range m.children {
		c.Destroy()
	}
}

func (m *mixNode) Scratch() []float64 { return m.out }

// envelopeGroup aggregates several FadeEnvelopes behind one Envelope,
// for kinds (like the harmonic swarm) whose voices each need their own
// gate rather than sharing a single post-mix envelope.
type envelopeGroup struct {
	envs []*dspgraph.FadeEnvelope
}

func (g *envelopeGroup) Instantiate(params map[string]float64) error {
	for _, e := range g.envs {
		if err := e.Instantiate(params); err != nil {
			return err
		}
	}
	return nil
}

func (g *envelopeGroup) Set(param string, value, slewMs float64) error {
	for _, e := range g.envs {
		if err := e.Set(param, value, slewMs); err != nil {
			return err
		}
	}
	return nil
}

func (g *envelopeGroup) Settled() bool {
	for _, e := range g.envs {
		if !e.Settled() {
			return false
		}
	}
	return true
}

func (g *envelopeGroup) Done() bool {
	for _, e := range g.envs {
		if !e.Done() {
			return false
		}
	}
	return true
}

// driftingOscillator wraps an Oscillator whose frequency slowly wanders
// around a center value, driven by an internal low-frequency phase
// accumulator. This composition (not a dspgraph primitive itself)
// implements the dual-oscillator drone's "LFO drift" (spec §4.2).
type driftingOscillator struct {
	inner      *dspgraph.Oscillator
	center     float64
	depth      float64
	lfoHz      float64
	phase      float64
	sampleRate float64
}

func newDriftingOscillator(sampleRate float64, blockSize int, center, depth, lfoHz float64) *driftingOscillator {
	return &driftingOscillator{
		inner:      dspgraph.NewOscillator(sampleRate, blockSize),
		center:     center,
		depth:      depth,
		lfoHz:      lfoHz,
		sampleRate: sampleRate,
	}
}

func (d *driftingOscillator) Instantiate(params map[string]float64) error {
	return d.inner.Instantiate(map[string]float64{"freq_hz": d.center, "amp": paramOr(params, "amp", 1)})
}

func (d *driftingOscillator) Connect(bus *dspgraph.Bus) { d.inner.Connect(bus) }

func (d *driftingOscillator) Set(param string, value, slewMs float64) error {
	return d.inner.Set(param, value, slewMs)
}

func (d *driftingOscillator) Process(block []float64) {
	d.phase += 2 * math.Pi * d.lfoHz * float64(len(block)) / d.sampleRate
	if d.phase > 2*math.Pi {
		d.phase -= 2 * math.Pi
	}
	drift := d.center + d.depth*d.center*math.Sin(d.phase)
	d.inner.Set("freq_hz", drift, 0)
	d.inner.Process(block)
}

func (d *driftingOscillator) Destroy() { d.inner.Destroy() }

func (d *driftingOscillator) Scratch() []float64 { return d.inner.Scratch() }

func paramOr(params map[string]float64, key string, def float64) float64 {
	if params == nil {
		return def
	}
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
