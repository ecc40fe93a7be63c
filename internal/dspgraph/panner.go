package dspgraph

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects/spatial"
)

// Panner applies an equal-power pan to a mono input, producing a stereo
// pair, then widens that pair through algo-dsp's stereo widener per the
// universal stereo_w option (spec §4.2). algo-dsp's spatial package has
// no plain pan law, so the pan stage itself stays a small standard-
// library computation (see DESIGN.md); the width stage defers to
// spatial.NewStereoWidener.
type Panner struct {
	pan        *slewed
	input      []float64
	left       []float64
	right      []float64
	bus        *Bus
	sampleRate float64

	widener     *spatial.StereoWidener
	interleaved []float64
}

// NewPanner builds a Panner reading from input (mono) and writing
// left/right into bus.
func NewPanner(sampleRate float64, input []float64) *Panner {
	return &Panner{pan: newSlewed(0, sampleRate), input: input, sampleRate: sampleRate}
}

// Instantiate sets "pan" in [-1, 1] (default 0, centered) and "stereo_w"
// in [0, 1] (default 1, the library's neutral width; stereo_w == 0
// collapses the pair toward mono).
func (p *Panner) Instantiate(params map[string]float64) error {
	p.pan.set(clamp(paramOr(params, "pan", 0), -1, 1), 0)
	p.left = make([]float64, len(p.input))
	p.right = make([]float64, len(p.input))
	p.interleaved = make([]float64, 2*len(p.input))

	widener, err := spatial.NewStereoWidener(p.sampleRate)
	if err != nil {
		return err
	}
	if err := widener.SetSampleRate(p.sampleRate); err != nil {
		return err
	}
	p.widener = widener
	return p.setWidth(paramOr(params, "stereo_w", 1))
}

func (p *Panner) setWidth(stereoW float64) error {
	if err := p.widener.SetWidth(clamp(stereoW, 0, 1)); err != nil {
		return err
	}
	return p.widener.SetBassMonoFreq(0)
}

func (p *Panner) Connect(bus *Bus) {
	p.bus = bus
	bus.Register(p.left)
	bus.Register(p.right)
}

func (p *Panner) Set(param string, value, slewMs float64) error {
	switch param {
	case "pan":
		p.pan.set(clamp(value, -1, 1), slewMs)
		return nil
	case "stereo_w":
		return p.setWidth(value)
	default:
		return errUnknownParam(param)
	}
}

// Process applies equal-power panning per sample, then runs the
// resulting left/right pair through algo-dsp's stereo widener via its
// interleaved (L,R,L,R,...) buffer convention, mirroring every other
// algo-dsp effect's uniform ProcessInPlace(block []float64) shape (see
// other_examples' CWBudde-algo-dsp webdemo effects chain).
func (p *Panner) Process(block []float64) {
	const halfPi = 1.5707963267948966
	n := len(p.input)
	if n > len(p.left) {
		n = len(p.left)
	}
	for i := 0; i < n; i++ {
		pos := (p.pan.next() + 1) / 2 // [0,1]
		l := math.Cos(halfPi * pos)
		r := math.Sin(halfPi * pos)
		p.left[i] = p.input[i] * l
		p.right[i] = p.input[i] * r
	}

	for i := 0; i < n; i++ {
		p.interleaved[2*i] = p.left[i]
		p.interleaved[2*i+1] = p.right[i]
	}
	if err := p.widener.ProcessInPlace(p.interleaved[:2*n]); err == nil {
		for i := 0; i < n; i++ {
			p.left[i] = p.interleaved[2*i]
			p.right[i] = p.interleaved[2*i+1]
		}
	}
}

func (p *Panner) Destroy() {}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
