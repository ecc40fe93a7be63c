package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/effects/modulation"

// Chorus wraps algo-dsp's modulation.Chorus, used by the FM chorus pad
// preset. Grounded on the webdemo chorusChainRuntime wiring.
type Chorus struct {
	fx      *modulation.Chorus
	input   []float64
	scratch []float64
}

// NewChorus builds a Chorus at sampleRate reading from input.
func NewChorus(sampleRate float64, input []float64) (*Chorus, error) {
	fx, err := modulation.NewChorus()
	if err != nil {
		return nil, err
	}
	if err := fx.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &Chorus{fx: fx, input: input, scratch: make([]float64, len(input))}, nil
}

// Instantiate sets mix (default 0.18), depth (default 0.003), speed_hz
// (default 0.35) and stages (default 3).
func (c *Chorus) Instantiate(params map[string]float64) error {
	if err := c.fx.SetMix(clamp(paramOr(params, "mix", 0.18), 0, 1)); err != nil {
		return err
	}
	if err := c.fx.SetDepth(clamp(paramOr(params, "depth", 0.003), 0, 0.01)); err != nil {
		return err
	}
	if err := c.fx.SetSpeedHz(clamp(paramOr(params, "speed_hz", 0.35), 0.05, 5)); err != nil {
		return err
	}
	return c.fx.SetStages(int(clamp(paramOr(params, "stages", 3), 1, 6)))
}

func (c *Chorus) Connect(bus *Bus) { bus.Register(c.scratch) }

func (c *Chorus) Set(param string, value, _ float64) error {
	switch param {
	case "mix":
		return c.fx.SetMix(clamp(value, 0, 1))
	case "depth":
		return c.fx.SetDepth(clamp(value, 0, 0.01))
	case "speed_hz":
		return c.fx.SetSpeedHz(clamp(value, 0.05, 5))
	case "stages":
		return c.fx.SetStages(int(clamp(value, 1, 6)))
	}
	return errUnknownParam(param)
}

func (c *Chorus) Process(block []float64) {
	n := len(c.input)
	if n > len(c.scratch) {
		n = len(c.scratch)
	}
	copy(c.scratch[:n], c.input[:n])
	c.fx.ProcessInPlace(c.scratch[:n])
}

func (c *Chorus) Destroy() {}

// Scratch returns the chorus's rendered block.
func (c *Chorus) Scratch() []float64 { return c.scratch }
