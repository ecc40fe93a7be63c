// Package dspgraph provides the opaque node primitives presets are built
// from: oscillators, noise, filters, envelopes, delays, reverbs, and a mix
// bus, each exposing the four-operation contract the core consumes them
// through. See spec §4.1.
package dspgraph

// Node is the uniform contract every DSP graph primitive exposes. The
// core never inspects a node beyond these four operations.
type Node interface {
	// Instantiate sets the node's internal state from its initial
	// parameter set. A second call re-initializes the node; it is not
	// rejected.
	Instantiate(params map[string]float64) error

	// Connect registers the node's output buffer(s) with bus. Connecting
	// to another bus registers there as well; earlier registrations are
	// not removed.
	Connect(bus *Bus)

	// Set changes param. Nodes built on slewed values (oscillator, noise,
	// gain, panner, smoothed scalar) glide over slewMs milliseconds and,
	// except for SmoothedScalar (which substitutes 20ms), apply
	// slewMs <= 0 immediately; effect and filter nodes ignore slewMs and
	// apply the change at once.
	Set(param string, value float64, slewMs float64) error

	// Process renders one block into the node's own output buffer. Effect
	// nodes read the upstream buffer they were constructed with; how
	// block itself is used varies by node (Oscillator sizes its output by
	// it, SmoothedScalar writes its control values into it, most nodes
	// ignore it).
	Process(block []float64)

	// Destroy releases the node's resources. What Process does afterwards
	// varies by node: generators output silence, other nodes keep
	// processing their input.
	Destroy()
}

// Bus is a simple summing mix point. Nodes Connect into a Bus; the graph
// owner calls Sum once per block after every connected node has
// processed into its own scratch buffer.
type Bus struct {
	blockSize int
	accum     []float64
	inputs    [][]float64
}

// NewBus allocates a bus sized for blockSize-sample blocks.
func NewBus(blockSize int) *Bus {
	return &Bus{blockSize: blockSize, accum: make([]float64, blockSize)}
}

// Register tells the bus to sum scratch into its accumulator on Sum.
// Nodes call this once, from Connect.
func (b *Bus) Register(scratch []float64) {
	b.inputs = append(b.inputs, scratch)
}

// Sum clears the accumulator and adds every registered node's current
// scratch buffer into it, returning the result.
func (b *Bus) Sum() []float64 {
	for i := range b.accum {
		b.accum[i] = 0
	}
	for _, in := range b.inputs {
		n := len(in)
		if n > len(b.accum) {
			n = len(b.accum)
		}
		for i := 0; i < n; i++ {
			b.accum[i] += in[i]
		}
	}
	return b.accum
}
