package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/filter/moog"

// MoogFilter wraps algo-dsp's Huovilainen-variant moog ladder lowpass,
// offered as the filtered-noise-bed preset's "moog" filter option
// alongside the RBJ cookbook Filter. Grounded on the effectchain
// runtime's familyMoog branch.
type MoogFilter struct {
	fx      *moog.Filter
	input   []float64
	scratch []float64
}

// NewMoogFilter builds a MoogFilter at sampleRate reading from input.
func NewMoogFilter(sampleRate float64, input []float64) (*MoogFilter, error) {
	fx, err := moog.New(sampleRate,
		moog.WithVariant(moog.VariantHuovilainen),
		moog.WithOversampling(2),
		moog.WithCutoffHz(1000),
		moog.WithResonance(0.2),
		moog.WithDrive(1),
		moog.WithInputGain(1),
		moog.WithOutputGain(1),
		moog.WithNormalizeOutput(true),
	)
	if err != nil {
		return nil, err
	}
	return &MoogFilter{fx: fx, input: input, scratch: make([]float64, len(input))}, nil
}

// Instantiate sets cutoff_hz (default 1000) and resonance (default 0.2,
// in [0,4] per the moog ladder's own range).
func (m *MoogFilter) Instantiate(params map[string]float64) error {
	if err := m.fx.SetCutoffHz(clamp(paramOr(params, "cutoff_hz", 1000), 20, 20000)); err != nil {
		return err
	}
	return m.fx.SetResonance(clamp(paramOr(params, "resonance", 0.2), 0, 4))
}

func (m *MoogFilter) Connect(bus *Bus) { bus.Register(m.scratch) }

func (m *MoogFilter) Set(param string, value, _ float64) error {
	switch param {
	case "cutoff_hz":
		return m.fx.SetCutoffHz(clamp(value, 20, 20000))
	case "resonance":
		return m.fx.SetResonance(clamp(value, 0, 4))
	}
	return errUnknownParam(param)
}

func (m *MoogFilter) Process(block []float64) {
	n := len(m.input)
	if n > len(m.scratch) {
		n = len(m.scratch)
	}
	copy(m.scratch[:n], m.input[:n])
	m.fx.ProcessInPlace(m.scratch[:n])
}

func (m *MoogFilter) Destroy() {}

// Scratch returns the moog filter's rendered block.
func (m *MoogFilter) Scratch() []float64 { return m.scratch }
