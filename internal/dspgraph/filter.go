package dspgraph

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// Filter wraps an algo-dsp biquad chain as a low/high/band-pass node
// (spec §4.1). Grounded on the teacher-adjacent webdemo effect chain's
// filterChainRuntime, which also rebuilds a fresh *biquad.Chain on every
// parameter change rather than mutating coefficients in place.
type Filter struct {
	sampleRate float64
	kind       string
	freq       float64
	q          float64
	chain      *biquad.Chain
	input      []float64
	scratch    []float64
}

// NewFilter builds a Filter reading from input.
func NewFilter(sampleRate float64, input []float64) *Filter {
	return &Filter{sampleRate: sampleRate, input: input, scratch: make([]float64, len(input))}
}

// filterKinds maps the numeric kind_code parameter (Node.Set only
// carries float64s) to an RBJ filter family. 0=lowpass, 1=highpass,
// 2=bandpass.
var filterKinds = []string{"lowpass", "highpass", "bandpass"}

// Instantiate sets kind_code (default 0/lowpass), freq_hz (default
// 1000), and q (default 0.707).
func (f *Filter) Instantiate(params map[string]float64) error {
	f.kind = filterKindFromCode(paramOr(params, "kind_code", 0))
	f.freq = paramOr(params, "freq_hz", 1000)
	f.q = paramOr(params, "q", 0.707)
	f.rebuild()
	return nil
}

func filterKindFromCode(code float64) string {
	idx := int(code)
	if idx < 0 || idx >= len(filterKinds) {
		return filterKinds[0]
	}
	return filterKinds[idx]
}

func (f *Filter) Connect(bus *Bus) { bus.Register(f.scratch) }

func (f *Filter) Set(param string, value, _ float64) error {
	switch param {
	case "freq_hz":
		f.freq = clamp(value, 20, f.sampleRate*0.49)
	case "q":
		f.q = clamp(value, 0.1, 20)
	case "kind_code":
		f.kind = filterKindFromCode(value)
	default:
		return errUnknownParam(param)
	}
	f.rebuild()
	return nil
}

// rebuild recomputes the biquad coefficients for the current kind/freq/q
// using the standard RBJ cookbook formulas and hands them to a fresh
// biquad.Chain, matching algo-dsp's own filterChainRuntime pattern.
func (f *Filter) rebuild() {
	w0 := 2 * math.Pi * f.freq / f.sampleRate
	alpha := math.Sin(w0) / (2 * f.q)
	cosw0 := math.Cos(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.kind {
	case "highpass":
		b0 = (1 + cosw0) / 2
		b1 = -(1 + cosw0)
		b2 = (1 + cosw0) / 2
	case "bandpass":
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default: // lowpass
		b0 = (1 - cosw0) / 2
		b1 = 1 - cosw0
		b2 = (1 - cosw0) / 2
	}
	a0 = 1 + alpha
	a1 = -2 * cosw0
	a2 = 1 - alpha

	f.chain = biquad.NewChain([]biquad.Coefficients{{
		B0: b0 / a0, B1: b1 / a0, B2: b2 / a0,
		A1: a1 / a0, A2: a2 / a0,
	}})
}

func (f *Filter) Process(block []float64) {
	n := len(f.input)
	if n > len(f.scratch) {
		n = len(f.scratch)
	}
	copy(f.scratch[:n], f.input[:n])
	if f.chain != nil {
		f.chain.ProcessBlock(f.scratch[:n])
	}
}

func (f *Filter) Destroy() { f.chain = nil }

// Scratch returns the filter's rendered block.
func (f *Filter) Scratch() []float64 { return f.scratch }
