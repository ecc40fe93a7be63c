// Package registry discovers preset kinds at startup and exposes an
// atomic, thread-safe snapshot of their constructors, signatures, and
// parameter metadata. See spec §4.3.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cartomix/maestro/internal/preset"
)

// Signature describes a preset kind's constructor shape, for
// discovery/introspection purposes (e.g. a future UI listing presets).
type Signature struct {
	Kind       string
	Params     []string // declared params, in a stable display order
	AcceptsInf bool      // true if duration may be math.Inf(1) (drones)
}

// snapshot is the atomically-swapped triple of coupled maps spec §4.3
// requires readers see either wholly-old or wholly-new.
type snapshot struct {
	constructors map[string]preset.Builder
	signatures   map[string]Signature
	defaults     map[string]map[string]float64
}

// Registry discovers preset kinds from preset.Kinds and exposes them
// under a single mutex protecting the three coupled maps (spec §4.3).
type Registry struct {
	logger *slog.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// New builds a Registry and performs an initial discovery pass.
func New(logger *slog.Logger) *Registry {
	r := &Registry{logger: logger}
	r.Reload()
	return r
}

// defaultParamsByKind records each shipped kind's parameter table,
// mirroring the scalar keys its Builder exposes in preset/kinds.go.
var defaultParamsByKind = map[string]map[string]float64{
	"dual_oscillator_drone": {"freq_hz": 110, "amp": 0.8},
	"harmonic_swarm":        {"intensity": 0.8},
	"filtered_noise_bed":    {"freq_hz": 800, "q": 1.2},
	"fm_chorus_pad":         {"freq_hz": 330},
	"impulse_response_tap":  {"room_size": 0.9},
	"gated_noise_hits":      {"freq_hz": 2000},
	"clipped_sine_lead":     {"freq_hz": 440, "drive": 8},
	"sample_player_voice":   {"freq_hz": 262},
}

// Reload re-discovers preset kinds by enumerating preset.Kinds and
// atomically swaps in a fresh snapshot: readers never see a partially
// built map (spec §4.3 "atomic... never partial").
func (r *Registry) Reload() {
	next := &snapshot{
		constructors: make(map[string]preset.Builder, len(preset.Kinds)),
		signatures:   make(map[string]Signature, len(preset.Kinds)),
		defaults:     make(map[string]map[string]float64, len(preset.Kinds)),
	}

	for kind, build := range preset.Kinds {
		params, ok := defaultParamsByKind[kind]
		if !ok {
			r.logf("skipping preset kind with no declared parameter table", "kind", kind)
			continue
		}
		next.constructors[kind] = build
		next.signatures[kind] = Signature{Kind: kind, Params: sortedKeys(params), AcceptsInf: true}
		next.defaults[kind] = params
	}

	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()
}

func (r *Registry) logf(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

// Names returns every registered kind name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	names := make([]string, 0, len(snap.constructors))
	for name := range snap.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builder returns the constructor for kind, or an error if unknown.
func (r *Registry) Builder(kind string) (preset.Builder, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	build, ok := snap.constructors[kind]
	if !ok {
		return nil, fmt.Errorf("registry: unknown preset kind %q", kind)
	}
	return build, nil
}

// Signature returns kind's declared constructor signature.
func (r *Registry) Signature(kind string) (Signature, bool) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	sig, ok := snap.signatures[kind]
	return sig, ok
}

// Defaults returns a copy of kind's parameter → default-value table,
// the nominal center for random stepping (spec §4.6).
func (r *Registry) Defaults(kind string) (map[string]float64, bool) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	defaults, ok := snap.defaults[kind]
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out, true
}

// Describe returns a human-readable summary of every registered kind,
// sorted by name.
func (r *Registry) Describe() []Signature {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	out := make([]Signature, 0, len(snap.signatures))
	for _, sig := range snap.signatures {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
