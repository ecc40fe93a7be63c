package dspgraph

import "github.com/cwbudde/algo-dsp/dsp/effects/dynamics"

// Gate wraps algo-dsp's dynamics.Gate, used by gated-noise-hit presets
// to chop noise into rhythmic hits independent of the FadeEnvelope's
// own gate (spec §4.2's click-free guarantee still owns the outer
// attack/release; this shapes the body of the hit).
type Gate struct {
	fx      *dynamics.Gate
	input   []float64
	scratch []float64
}

// NewGate builds a Gate at sampleRate reading from input.
func NewGate(sampleRate float64, input []float64) (*Gate, error) {
	fx, err := dynamics.NewGate(sampleRate)
	if err != nil {
		return nil, err
	}
	return &Gate{fx: fx, input: input, scratch: make([]float64, len(input))}, nil
}

// Instantiate sets threshold_db (default -40, [-80,0]), ratio (default
// 10, [1,100]), attack_ms (default 0.1, [0.1,1000]), release_ms
// (default 100, [1,5000]).
func (g *Gate) Instantiate(params map[string]float64) error {
	if err := g.fx.SetThreshold(clamp(paramOr(params, "threshold_db", -40), -80, 0)); err != nil {
		return err
	}
	if err := g.fx.SetRatio(clamp(paramOr(params, "ratio", 10), 1, 100)); err != nil {
		return err
	}
	if err := g.fx.SetKnee(6); err != nil {
		return err
	}
	if err := g.fx.SetAttack(clamp(paramOr(params, "attack_ms", 0.1), 0.1, 1000)); err != nil {
		return err
	}
	if err := g.fx.SetHold(50); err != nil {
		return err
	}
	if err := g.fx.SetRelease(clamp(paramOr(params, "release_ms", 100), 1, 5000)); err != nil {
		return err
	}
	return g.fx.SetRange(-80)
}

func (g *Gate) Connect(bus *Bus) { bus.Register(g.scratch) }

func (g *Gate) Set(param string, value, _ float64) error {
	switch param {
	case "threshold_db":
		return g.fx.SetThreshold(clamp(value, -80, 0))
	case "ratio":
		return g.fx.SetRatio(clamp(value, 1, 100))
	case "attack_ms":
		return g.fx.SetAttack(clamp(value, 0.1, 1000))
	case "release_ms":
		return g.fx.SetRelease(clamp(value, 1, 5000))
	}
	return errUnknownParam(param)
}

func (g *Gate) Process(block []float64) {
	n := len(g.input)
	if n > len(g.scratch) {
		n = len(g.scratch)
	}
	copy(g.scratch[:n], g.input[:n])
	g.fx.ProcessInPlace(g.scratch[:n])
}

func (g *Gate) Destroy() {}

// Scratch returns the gate's rendered block.
func (g *Gate) Scratch() []float64 { return g.scratch }
