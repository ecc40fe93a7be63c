// Package maestro implements the Maestro scheduler: zone management,
// block-aligned driving of the preset framework and arrangement
// pipeline, and per-zone tempo/energy LFOs. See spec §4.6 and §5.
package maestro

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/cartomix/maestro/internal/arranger"
	"github.com/cartomix/maestro/internal/engine"
	"github.com/cartomix/maestro/internal/registry"
)

const (
	minTempo = 60.0
	maxTempo = 240.0

	// tempoWalkFraction is the per-step tempo random-walk bound (spec
	// §4.6 step 1: "tempo += Uniform(-0.07*tempo, +0.07*tempo)").
	tempoWalkFraction = 0.07

	// energyPhaseDivisor is the "32*beat_time" denominator spec §4.6
	// step 1 advances the energy phase by each step.
	energyPhaseDivisor = 32.0
)

// State is a zone's tempo/energy/last-time global state (spec §3
// "Global state"). Only that zone's loop goroutine writes it, and it
// does so while holding Maestro.mu, which is also what Snapshot holds
// when it reads Tempo and Energy from another goroutine.
type State struct {
	Tempo    float64
	Energy   float64
	phase    float64
	lastTime time.Time
}

// step advances tempo/energy per spec §4.6 step 1, given the elapsed
// wall-clock time since the previous step.
func (s *State) step(rng *rand.Rand) {
	now := time.Now()
	if s.lastTime.IsZero() {
		s.lastTime = now
		return
	}
	dt := now.Sub(s.lastTime).Seconds()
	s.lastTime = now

	walk := uniform(rng, -tempoWalkFraction*s.Tempo, tempoWalkFraction*s.Tempo)
	s.Tempo = clamp(s.Tempo+walk, minTempo, maxTempo)

	beatTime := 60.0 / s.Tempo
	s.phase += dt / (energyPhaseDivisor * beatTime)
	s.Energy = 0.7 + 0.3*math.Sin(2*math.Pi*s.phase)
}

// Zone is the (name, preset-kind set, loop handle) triple of spec §3.
// StaticKinds are registry-discovered preset kinds whose parameters are
// random-walked each block (spec §4.6 step 2's "static" partition).
// MelodicRoles maps an orchestrated part role (e.g. "melody", "bass",
// "piano") to the preset kind that voices it; a non-empty MelodicRoles
// is what makes a zone "melodic" (spec §4.6 step 2/5): its presence
// triggers the arrangement pipeline each block. Grounded decision (see
// DESIGN.md): since preset.Builder's signature never takes notes or
// durations directly — only intensity/duration — "requires notes and
// durations" is modeled as membership in MelodicRoles rather than by
// constructor-signature introspection.
type Zone struct {
	Name         string
	StaticKinds  []string
	MelodicRoles map[string]string
}

type zoneHandle struct {
	zone   Zone
	cancel context.CancelFunc
	done   chan struct{}
	state  State
	rng    *rand.Rand
	params map[string]map[string]float64 // kind -> current stepped values, seeded from defaults
}

// Maestro drives zones: one cooperative loop goroutine per zone,
// enqueuing static-preset plays and melodic renders at block
// boundaries (spec §4.6, §5).
type Maestro struct {
	logger     *slog.Logger
	registry   *registry.Registry
	arranger   *arranger.Arranger
	queue      *engine.CommandQueue
	blockBeats float64

	mu       sync.Mutex // guards zones, seedSrc and each zone's State; never held during I/O
	zones    map[string]*zoneHandle
	seedSrc  *rand.Rand
}

// New builds a Maestro. blockBeats <= 0 uses arranger.DefaultBlockBeats.
func New(logger *slog.Logger, reg *registry.Registry, arr *arranger.Arranger, queue *engine.CommandQueue, blockBeats float64, seed int64) *Maestro {
	if logger == nil {
		logger = slog.Default()
	}
	if blockBeats <= 0 {
		blockBeats = arranger.DefaultBlockBeats
	}
	return &Maestro{
		logger:     logger,
		registry:   reg,
		arranger:   arr,
		queue:      queue,
		blockBeats: blockBeats,
		zones:      make(map[string]*zoneHandle),
		seedSrc:    rand.New(rand.NewSource(seed)),
	}
}

// EnterZone cancels any prior loop registered under name (spec §7
// ZoneAlreadyActive: "cancel the prior loop, then proceed"), stores the
// new preset set, and launches a fresh loop goroutine. SetZone is its
// alias (spec §4.6).
func (m *Maestro) EnterZone(name string, staticKinds []string, melodicRoles map[string]string) {
	m.mu.Lock()
	prior, hadPrior := m.zones[name]
	seed := m.seedSrc.Int63()
	zh := &zoneHandle{
		zone:   Zone{Name: name, StaticKinds: staticKinds, MelodicRoles: melodicRoles},
		done:   make(chan struct{}),
		state:  State{Tempo: 120, Energy: 0.7},
		rng:    rand.New(rand.NewSource(seed)),
		params: make(map[string]map[string]float64),
	}
	ctx, cancel := context.WithCancel(context.Background())
	zh.cancel = cancel
	m.zones[name] = zh
	m.mu.Unlock()

	if hadPrior {
		m.stopLoop(prior)
	}

	go m.runLoop(ctx, zh)
}

// SetZone is an alias for EnterZone (spec §4.6).
func (m *Maestro) SetZone(name string, staticKinds []string, melodicRoles map[string]string) {
	m.EnterZone(name, staticKinds, melodicRoles)
}

// LeaveZone cancels name's loop at the next cooperative await point,
// waits for in-flight work to drain, and commands every preset the
// zone owned to fade out rather than killing it abruptly (spec §5
// Cancellation).
func (m *Maestro) LeaveZone(name string) {
	m.mu.Lock()
	zh, ok := m.zones[name]
	if ok {
		delete(m.zones, name)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	m.stopLoop(zh)
	m.fadeOutZone(zh.zone)
}

func (m *Maestro) stopLoop(zh *zoneHandle) {
	zh.cancel()
	<-zh.done
}

const leaveZoneFadeMs = 500

func (m *Maestro) fadeOutZone(z Zone) {
	for _, kind := range z.StaticKinds {
		_ = m.queue.Enqueue(engine.StopPresetCommand(kind, leaveZoneFadeMs))
	}
	for _, kind := range z.MelodicRoles {
		_ = m.queue.Enqueue(engine.StopPresetCommand(kind, leaveZoneFadeMs))
	}
}

// Snapshot returns the live zone table without touching control state:
// names, preset kinds, and each zone's current tempo/energy (SPEC_FULL
// §12 supplement, modeled on a read-only progress struct).
type Snapshot struct {
	Name         string
	StaticKinds  []string
	MelodicRoles map[string]string
	Tempo        float64
	Energy       float64
}

// Snapshot reports every active zone's state, for observability.
func (m *Maestro) Snapshot() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.zones))
	for _, zh := range m.zones {
		out = append(out, Snapshot{
			Name:         zh.zone.Name,
			StaticKinds:  append([]string(nil), zh.zone.StaticKinds...),
			MelodicRoles: copyRoles(zh.zone.MelodicRoles),
			Tempo:        zh.state.Tempo,
			Energy:       zh.state.Energy,
		})
	}
	return out
}

func copyRoles(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// runLoop is one zone's cooperative block loop (spec §4.6 steps 1-6).
func (m *Maestro) runLoop(ctx context.Context, zh *zoneHandle) {
	defer close(zh.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.mu.Lock()
		zh.state.step(zh.rng)
		beatTime := 60.0 / zh.state.Tempo
		m.mu.Unlock()

		for _, kind := range zh.zone.StaticKinds {
			m.enqueueStatic(zh, kind)
		}

		if len(zh.zone.MelodicRoles) > 0 {
			parts := m.arranger.PrepareBlock(m.blockBeats)
			m.arranger.RenderBlock(parts, zh.zone.MelodicRoles, m.queue)
		}

		sleep := time.Duration(m.blockBeats * beatTime * float64(time.Second))
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// enqueueStatic random-walks kind's declared parameters (spec §4.6 step
// 3) from their current (or default) values and enqueues a fresh
// play_preset. Re-issuing play_preset each block, rather than
// set_param, matches spec step 4 ("Enqueue play_preset(p, **params) for
// each static preset").
func (m *Maestro) enqueueStatic(zh *zoneHandle, kind string) {
	defaults, ok := m.registry.Defaults(kind)
	if !ok {
		m.logger.Warn("maestro: unknown preset kind, skipping", "kind", kind)
		return
	}

	current, tracked := zh.params[kind]
	if !tracked {
		current = make(map[string]float64, len(defaults))
		for k, v := range defaults {
			current[k] = v
		}
		zh.params[kind] = current
	}

	for name, value := range current {
		def := defaults[name]
		current[name] = stepParam(zh.rng, value, def)
	}

	stepped := make(map[string]float64, len(current))
	for k, v := range current {
		stepped[k] = v
	}

	if err := m.queue.Enqueue(engine.PlayPresetCommand(kind, stepped)); err != nil {
		m.logger.Warn("maestro: play_preset enqueue failed", "kind", kind, "error", err)
	}
}

// stepParam offsets value by Uniform(+-0.1*|value|) (or +-0.1 when
// value is exactly zero), rounds to 3 decimals, and clamps to [0.5*default, 2*default]
// (or [0,1] when default == 0) — spec §4.6 step 3 / §8 property 3.
// Every declared registry parameter is a float64 (see
// registry.Registry.Defaults), so this single rule covers the "numeric
// float" case of spec's taxonomy; there are no int/bool/list-typed
// registry parameters to special-case (see DESIGN.md).
func stepParam(rng *rand.Rand, value, def float64) float64 {
	spread := 0.1 * math.Abs(value)
	if spread == 0 {
		spread = 0.1
	}
	next := value + uniform(rng, -spread, spread)
	next = math.Round(next*1000) / 1000

	lo, hi := 0.0, 1.0
	if def != 0 {
		lo, hi = 0.5*def, 2*def
		if lo > hi {
			lo, hi = hi, lo
		}
	}
	return clamp(next, lo, hi)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
