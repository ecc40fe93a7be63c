// Package preset implements the DSP preset framework: a lifecycle
// contract (Building -> Fading-In -> Playing -> Fading-Out -> Dead)
// wrapping the dspgraph primitives into named synthesis recipes. See
// spec §4.2.
package preset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cartomix/maestro/internal/dspgraph"
)

// State is a preset instance's position in its lifecycle.
type State int

const (
	Building State = iota
	FadingIn
	Playing
	FadingOut
	Dead
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case FadingIn:
		return "fading-in"
	case Playing:
		return "playing"
	case FadingOut:
		return "fading-out"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyPlaying is returned by Play when called on an instance
	// that has already started (spec §4.2: "Idempotent: calling twice
	// is an error").
	ErrAlreadyPlaying = errors.New("preset: already playing")
	// ErrNotPlaying is returned by Stop/Set on an instance that hasn't
	// played yet or has already died.
	ErrNotPlaying = errors.New("preset: not playing")
)

const defaultSlewMs = 20

// Options carries the universal per-instance options every preset kind
// recognizes (spec §4.2). FilterFamily is kind-specific (only
// filtered_noise_bed reads it, choosing between the RBJ cookbook filter
// and the moog ladder lowpass) and is ignored by every other kind.
type Options struct {
	EnableReverb bool
	EnableChorus bool
	StereoW      float64
	GainDB       float64
	FilterFamily string
}

// Envelope is the subset of dspgraph.FadeEnvelope's API a Graph needs.
// Multi-voice kinds (e.g. the harmonic swarm) implement it by
// forwarding to several underlying envelopes at once instead of a
// single one; see preset/kinds.go's envelopeGroup.
type Envelope interface {
	Instantiate(params map[string]float64) error
	Set(param string, value, slewMs float64) error
	Settled() bool
	Done() bool
}

// Builder wires a preset kind's nodes into bus and returns the handles
// later Set calls will address by name. It receives intensity/duration
// and the resolved Options so the graph can size itself (e.g. voice
// count, drone vs. one-shot envelope).
type Builder func(bus *dspgraph.Bus, sampleRate float64, blockSize int, intensity, duration float64, opts Options) (*Graph, error)

// Graph is the set of live nodes backing one preset instance, along
// with the scalars Set addresses by name.
type Graph struct {
	Nodes    []dspgraph.Node
	Envelope Envelope
	Scalars  map[string]*dspgraph.SmoothedScalar
}

// Instance is a live preset: the state machine plus its graph. It is
// the `BasePreset` every concrete kind shares; kinds differ only in
// their Builder.
type Instance struct {
	kind       string
	intensity  float64
	duration   float64
	opts       Options
	sampleRate float64
	blockSize  int
	build      Builder

	mu    sync.Mutex
	state State
	graph *Graph
	bus   *dspgraph.Bus
}

// New constructs an Instance in the Building state. intensity must be
// in [0,1]; duration may be math.Inf(1) for drones.
func New(kind string, intensity, duration float64, sampleRate float64, blockSize int, opts Options, build Builder) *Instance {
	return &Instance{
		kind:       kind,
		intensity:  clamp01(intensity),
		duration:   duration,
		opts:       opts,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		build:      build,
		state:      Building,
	}
}

// Kind reports the preset kind name this instance was constructed from.
func (in *Instance) Kind() string { return in.kind }

// State reports the instance's current lifecycle state.
func (in *Instance) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Play instantiates the DSP nodes, wires them into a fresh output bus,
// and begins the fade-in envelope (spec §4.2).
func (in *Instance) Play() (*Graph, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.state != Building {
		return nil, ErrAlreadyPlaying
	}

	bus := dspgraph.NewBus(in.blockSize)
	graph, err := in.build(bus, in.sampleRate, in.blockSize, in.intensity, in.duration, in.opts)
	if err != nil {
		return nil, fmt.Errorf("preset %s: build graph: %w", in.kind, err)
	}
	if graph.Envelope != nil {
		graph.Envelope.Set("gate", 1, 0)
	}

	in.bus = bus
	in.graph = graph
	in.state = FadingIn
	return graph, nil
}

// Stop begins the fade-out envelope; Render observes the envelope's
// completion and transitions the instance to Dead.
func (in *Instance) Stop(fadeMs float64) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.state != Playing && in.state != FadingIn {
		return ErrNotPlaying
	}
	if in.graph == nil || in.graph.Envelope == nil {
		return ErrNotPlaying
	}
	in.graph.Envelope.Instantiate(map[string]float64{
		"attack_ms":  5,
		"release_ms": fadeMs,
	})
	in.graph.Envelope.Set("gate", 0, 0)
	in.state = FadingOut
	return nil
}

// Set updates a live parameter via the graph's smoothed scalars, never
// by rebuilding (spec §4.2). slewMs defaults to 20ms when <= 0.
func (in *Instance) Set(key string, value, slewMs float64) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.graph == nil || in.state == Dead {
		return ErrNotPlaying
	}
	scalar, ok := in.graph.Scalars[key]
	if !ok {
		return fmt.Errorf("preset %s: unknown parameter %q", in.kind, key)
	}
	if slewMs <= 0 {
		slewMs = defaultSlewMs
	}
	return scalar.Set("value", value, slewMs)
}

// Render advances the graph by one block and returns the mixed output.
// Once FadingOut completes, it destroys the graph's nodes and
// transitions to Dead; subsequent calls return nil.
func (in *Instance) Render(block []float64) []float64 {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.state == Dead || in.graph == nil {
		return nil
	}
	for _, n := range in.graph.Nodes {
		n.Process(block)
	}
	out := in.bus.Sum()

	if in.state == FadingIn && in.graph.Envelope != nil && in.graph.Envelope.Settled() {
		in.state = Playing
	}
	if in.state == FadingOut && in.graph.Envelope != nil && in.graph.Envelope.Done() {
		for _, n := range in.graph.Nodes {
			n.Destroy()
		}
		in.state = Dead
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
