package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/effects"

// Delay wraps algo-dsp's effects.Delay. Grounded on the webdemo
// delayChainRuntime wiring (SetSampleRate/SetTime/SetFeedback/SetMix,
// then ProcessInPlace).
type Delay struct {
	fx      *effects.Delay
	input   []float64
	scratch []float64
}

// NewDelay builds a Delay at sampleRate reading from input.
func NewDelay(sampleRate float64, input []float64) (*Delay, error) {
	fx, err := effects.NewDelay(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Delay{fx: fx, input: input, scratch: make([]float64, len(input))}, nil
}

// Instantiate sets time_s (default 0.25), feedback (default 0.35), and
// mix (default 0.25).
func (d *Delay) Instantiate(params map[string]float64) error {
	if err := d.fx.SetTime(clamp(paramOr(params, "time_s", 0.25), 0.001, 2)); err != nil {
		return err
	}
	if err := d.fx.SetFeedback(clamp(paramOr(params, "feedback", 0.35), 0, 0.99)); err != nil {
		return err
	}
	return d.fx.SetMix(clamp(paramOr(params, "mix", 0.25), 0, 1))
}

func (d *Delay) Connect(bus *Bus) { bus.Register(d.scratch) }

func (d *Delay) Set(param string, value, _ float64) error {
	switch param {
	case "time_s":
		return d.fx.SetTime(clamp(value, 0.001, 2))
	case "feedback":
		return d.fx.SetFeedback(clamp(value, 0, 0.99))
	case "mix":
		return d.fx.SetMix(clamp(value, 0, 1))
	}
	return errUnknownParam(param)
}

func (d *Delay) Process(block []float64) {
	n := len(d.input)
	if n > len(d.scratch) {
		n = len(d.scratch)
	}
	copy(d.scratch[:n], d.input[:n])
	d.fx.ProcessInPlace(d.scratch[:n])
}

func (d *Delay) Destroy() {}

// Scratch returns the delay's rendered block.
func (d *Delay) Scratch() []float64 { return d.scratch }
