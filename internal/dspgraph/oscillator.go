package dspgraph

import "math"

// Oscillator is a simple phase-accumulating sine generator. algo-dsp's
// effect packages only process existing signal blocks; none of the pack
// examples expose a bare tone generator, so this stays on the standard
// library (see DESIGN.md).
type Oscillator struct {
	sampleRate float64
	phase      float64
	freq       *slewed
	amp        *slewed
	bus        *Bus
	scratch    []float64
	dead       bool
}

// NewOscillator builds an Oscillator rendering blockSize-sample blocks.
func NewOscillator(sampleRate float64, blockSize int) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		scratch:    make([]float64, blockSize),
	}
}

// Instantiate sets freq_hz (default 220) and amp (default 1).
func (o *Oscillator) Instantiate(params map[string]float64) error {
	o.freq = newSlewed(paramOr(params, "freq_hz", 220), o.sampleRate)
	o.amp = newSlewed(paramOr(params, "amp", 1), o.sampleRate)
	return nil
}

func (o *Oscillator) Connect(bus *Bus) {
	o.bus = bus
	bus.Register(o.scratch)
}

func (o *Oscillator) Set(param string, value, slewMs float64) error {
	switch param {
	case "freq_hz":
		o.freq.set(value, slewMs)
	case "amp":
		o.amp.set(value, slewMs)
	default:
		return errUnknownParam(param)
	}
	return nil
}

func (o *Oscillator) Process(block []float64) {
	if o.dead {
		for i := range o.scratch {
			o.scratch[i] = 0
		}
		return
	}
	n := len(block)
	if n > len(o.scratch) {
		n = len(o.scratch)
	}
	for i := 0; i < n; i++ {
		freq := o.freq.next()
		amp := o.amp.next()
		o.phase += 2 * math.Pi * freq / o.sampleRate
		if o.phase > 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
		o.scratch[i] = amp * math.Sin(o.phase)
	}
}

func (o *Oscillator) Destroy() { o.dead = true }

func paramOr(params map[string]float64, key string, def float64) float64 {
	if params == nil {
		return def
	}
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// Scratch returns the oscillator's rendered block, for chaining into
// the next node's input without an intermediate bus.
func (o *Oscillator) Scratch() []float64 { return o.scratch }
