package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/effects/reverb"

// Reverb wraps algo-dsp's Freeverb-style reverb.Reverb, used for the
// impulse-response tap and drone/pad presets (spec §4.1, §4.3). Grounded
// on the webdemo reverbChainRuntime's freeverb path.
type Reverb struct {
	fx      *reverb.Reverb
	input   []float64
	scratch []float64
}

// NewReverb builds a Reverb reading from input.
func NewReverb(input []float64) *Reverb {
	return &Reverb{fx: reverb.NewReverb(), input: input, scratch: make([]float64, len(input))}
}

// Instantiate sets room_size (default 0.72), damp (default 0.45), wet
// (default 0.22) and dry (default 1).
func (r *Reverb) Instantiate(params map[string]float64) error {
	r.fx.SetRoomSize(clamp(paramOr(params, "room_size", 0.72), 0, 0.98))
	r.fx.SetDamp(clamp(paramOr(params, "damp", 0.45), 0, 0.99))
	r.fx.SetWet(clamp(paramOr(params, "wet", 0.22), 0, 1.5))
	r.fx.SetDry(clamp(paramOr(params, "dry", 1), 0, 1.5))
	return nil
}

func (r *Reverb) Connect(bus *Bus) { bus.Register(r.scratch) }

func (r *Reverb) Set(param string, value, _ float64) error {
	switch param {
	case "room_size":
		r.fx.SetRoomSize(clamp(value, 0, 0.98))
	case "damp":
		r.fx.SetDamp(clamp(value, 0, 0.99))
	case "wet":
		r.fx.SetWet(clamp(value, 0, 1.5))
	case "dry":
		r.fx.SetDry(clamp(value, 0, 1.5))
	default:
		return errUnknownParam(param)
	}
	return nil
}

func (r *Reverb) Process(block []float64) {
	n := len(r.input)
	if n > len(r.scratch) {
		n = len(r.scratch)
	}
	copy(r.scratch[:n], r.input[:n])
	r.fx.ProcessInPlace(r.scratch[:n])
}

func (r *Reverb) Destroy() {}

// Scratch returns the reverb's rendered block.
func (r *Reverb) Scratch() []float64 { return r.scratch }
