// Package engine defines the audio engine's command-queue boundary: the
// only outbound interface the core's control logic uses (spec §6). The
// real-time audio thread is outside this module's scope; this package
// models its inbound protocol and the bounded, non-blocking queue that
// feeds it.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CommandKind names one of the four outbound commands spec §6 defines.
type CommandKind int

const (
	PlayPreset CommandKind = iota
	StopPreset
	SetParam
	SetEQGain
)

func (k CommandKind) String() string {
	switch k {
	case PlayPreset:
		return "play_preset"
	case StopPreset:
		return "stop_preset"
	case SetParam:
		return "set_param"
	case SetEQGain:
		return "set_eq_gain"
	default:
		return "unknown"
	}
}

// Command is one entry in the outbound queue. Not every field applies to
// every Kind; see the table in spec §6.
type Command struct {
	ID     string
	Kind   CommandKind
	Preset string
	Params map[string]float64
	FadeMs float64
	Key    string
	Value  float64
	BandHz float64
	Gain   float64
}

// Sentinel errors for the taxonomy entries in spec §7 that surface at
// this layer.
var (
	ErrUnknownPreset    = errors.New("engine: unknown preset")
	ErrEngineBackpressure = errors.New("engine: command queue full")
)

// AudioEngine is the command sink the core posts to. A concrete
// implementation owns the real-time audio thread(s); this package only
// supplies CommandQueue, a reference implementation suitable for tests
// and the demo entrypoint.
type AudioEngine interface {
	Enqueue(cmd Command) error
	Reload() error
}

// CommandQueue is a bounded, single-producer/single-consumer FIFO of
// Commands (spec §5 "audio command queue is the sole cross-thread
// conduit; bounded and non-blocking on the audio side"). Enqueue never
// blocks: when full, the command is dropped and Dropped is incremented
// (EngineBackpressure, spec §7 — "a block is better skipped than
// delayed").
type CommandQueue struct {
	logger *slog.Logger

	mu      sync.Mutex
	buf     chan Command
	dropped uint64
}

// NewCommandQueue builds a CommandQueue with room for capacity commands.
func NewCommandQueue(capacity int, logger *slog.Logger) *CommandQueue {
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandQueue{buf: make(chan Command, capacity), logger: logger}
}

// Enqueue posts cmd, assigning it a fresh ID if unset. It never blocks:
// a full queue drops the command and counts it (ErrEngineBackpressure).
func (q *CommandQueue) Enqueue(cmd Command) error {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	select {
	case q.buf <- cmd:
		return nil
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		q.logger.Warn("dropping command, queue full", "kind", cmd.Kind, "preset", cmd.Preset)
		return ErrEngineBackpressure
	}
}

// Dequeue pops the next command, or returns false if the queue is empty.
// This is the audio-side drain point; a real engine calls this from its
// own thread, never the control side.
func (q *CommandQueue) Dequeue() (Command, bool) {
	select {
	case cmd := <-q.buf:
		return cmd, true
	default:
		return Command{}, false
	}
}

// Dropped reports how many commands have been dropped to backpressure
// since construction, for observability (SPEC_FULL §12 supplement).
func (q *CommandQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Len reports the number of commands currently queued.
func (q *CommandQueue) Len() int { return len(q.buf) }

// PlayPresetCommand builds a PlayPreset command for the given preset name
// and parameter map.
func PlayPresetCommand(preset string, params map[string]float64) Command {
	return Command{Kind: PlayPreset, Preset: preset, Params: params}
}

// StopPresetCommand builds a StopPreset command.
func StopPresetCommand(preset string, fadeMs float64) Command {
	return Command{Kind: StopPreset, Preset: preset, FadeMs: fadeMs}
}

// SetParamCommand builds a SetParam command.
func SetParamCommand(preset, key string, value float64) Command {
	return Command{Kind: SetParam, Preset: preset, Key: key, Value: value}
}

// SetEQGainCommand builds a SetEQGain command.
func SetEQGainCommand(bandHz, gain float64) Command {
	return Command{Kind: SetEQGain, BandHz: bandHz, Gain: gain}
}

// ErrUnknownPresetf wraps ErrUnknownPreset with the offending name, for
// callers that want %w-compatible context without losing errors.Is.
func ErrUnknownPresetf(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
