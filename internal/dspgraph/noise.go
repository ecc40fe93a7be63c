package dspgraph

import "math/rand"

// Noise is a white-noise generator. Like Oscillator, this has no
// counterpart in algo-dsp's effect-only surface, so it stays on the
// standard library's math/rand (see DESIGN.md).
type Noise struct {
	sampleRate float64
	rng        *rand.Rand
	amp        *slewed
	scratch    []float64
	dead       bool
}

// NewNoise builds a Noise node seeded from seed, rendering blockSize
// blocks at sampleRate.
func NewNoise(sampleRate float64, seed int64, blockSize int) *Noise {
	return &Noise{sampleRate: sampleRate, rng: rand.New(rand.NewSource(seed)), scratch: make([]float64, blockSize)}
}

func (n *Noise) Instantiate(params map[string]float64) error {
	n.amp = newSlewed(paramOr(params, "amp", 1), n.sampleRate)
	return nil
}

func (n *Noise) Connect(bus *Bus) { bus.Register(n.scratch) }

func (n *Noise) Set(param string, value, slewMs float64) error {
	if param != "amp" {
		return errUnknownParam(param)
	}
	n.amp.set(value, slewMs)
	return nil
}

func (n *Noise) Process(block []float64) {
	if n.dead {
		for i := range n.scratch {
			n.scratch[i] = 0
		}
		return
	}
	for i := range n.scratch {
		n.scratch[i] = n.amp.next() * (2*n.rng.Float64() - 1)
	}
}

func (n *Noise) Destroy() { n.dead = true }

// Scratch returns the noise generator's rendered block.
func (n *Noise) Scratch() []float64 { return n.scratch }
