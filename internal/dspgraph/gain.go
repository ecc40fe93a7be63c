package dspgraph

import "math"

// Gain applies a static decibel gain to a signal. No pack dependency
// owns "scale a buffer by a dB value" as a standalone node (algo-dsp's
// effects all couple gain into a specific effect, e.g. distortion's
// drive); this is exact spec arithmetic (10^(gain_db/20)), not a
// generic DSP concern a library would own (see DESIGN.md, matching
// envelope.go's own stdlib justification).
type Gain struct {
	input   []float64
	scratch []float64
	gainDB  *slewed
}

// NewGain builds a Gain node reading from input.
func NewGain(sampleRate float64, input []float64) *Gain {
	return &Gain{input: input, scratch: make([]float64, len(input)), gainDB: newSlewed(0, sampleRate)}
}

// Instantiate sets gain_db (default 0, i.e. unity).
func (g *Gain) Instantiate(params map[string]float64) error {
	g.gainDB.set(paramOr(params, "gain_db", 0), 0)
	return nil
}

func (g *Gain) Connect(bus *Bus) { bus.Register(g.scratch) }

func (g *Gain) Set(param string, value, slewMs float64) error {
	if param != "gain_db" {
		return errUnknownParam(param)
	}
	g.gainDB.set(value, slewMs)
	return nil
}

func (g *Gain) Process(block []float64) {
	n := len(g.input)
	if n > len(g.scratch) {
		n = len(g.scratch)
	}
	for i := 0; i < n; i++ {
		linear := math.Pow(10, g.gainDB.next()/20)
		g.scratch[i] = g.input[i] * linear
	}
}

func (g *Gain) Destroy() {}

// Scratch returns the gain-staged block.
func (g *Gain) Scratch() []float64 { return g.scratch }
