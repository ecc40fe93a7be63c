package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/effects"

// Distortion wraps algo-dsp's effects.Distortion, used by the clipped
// sine lead preset. Follows the same
// SetX(...)->error, ProcessInPlace(block) shape as every other
// effects.NewX constructor in the package (Delay, BitCrusher,
// HarmonicBass).
type Distortion struct {
	fx      *effects.Distortion
	input   []float64
	scratch []float64
}

// NewDistortion builds a Distortion at sampleRate reading from input.
func NewDistortion(sampleRate float64, input []float64) (*Distortion, error) {
	fx, err := effects.NewDistortion(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Distortion{fx: fx, input: input, scratch: make([]float64, len(input))}, nil
}

// Instantiate sets drive (default 5) and mix (default 0.5).
func (d *Distortion) Instantiate(params map[string]float64) error {
	if err := d.fx.SetDrive(clamp(paramOr(params, "drive", 5), 0, 50)); err != nil {
		return err
	}
	return d.fx.SetMix(clamp(paramOr(params, "mix", 0.5), 0, 1))
}

func (d *Distortion) Connect(bus *Bus) { bus.Register(d.scratch) }

func (d *Distortion) Set(param string, value, _ float64) error {
	switch param {
	case "drive":
		return d.fx.SetDrive(clamp(value, 0, 50))
	case "mix":
		return d.fx.SetMix(clamp(value, 0, 1))
	}
	return errUnknownParam(param)
}

func (d *Distortion) Process(block []float64) {
	n := len(d.input)
	if n > len(d.scratch) {
		n = len(d.scratch)
	}
	copy(d.scratch[:n], d.input[:n])
	d.fx.ProcessInPlace(d.scratch[:n])
}

func (d *Distortion) Destroy() {}

// Scratch returns the distortion's rendered block.
func (d *Distortion) Scratch() []float64 { return d.scratch }
