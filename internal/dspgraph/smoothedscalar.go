package dspgraph

// SmoothedScalar is a standalone slew-limited control value: the
// primitive every preset parameter update rides on by default (spec
// §4.2 "every mutable parameter is slew-limited by default 20 ms").
type SmoothedScalar struct {
	s     *slewed
	onSet func(value, slewMs float64)
}

// OnSet registers fn to be called whenever Set is called, in addition
// to the scalar's own internal ramp. Presets use this to forward a
// friendly parameter name straight to the graph node it actually
// controls.
func (s *SmoothedScalar) OnSet(fn func(value, slewMs float64)) {
	s.onSet = fn
}

// NewSmoothedScalar builds a SmoothedScalar at sampleRate.
func NewSmoothedScalar(sampleRate float64) *SmoothedScalar {
	return &SmoothedScalar{s: newSlewed(0, sampleRate)}
}

// Instantiate sets the scalar's initial value (default 0).
func (s *SmoothedScalar) Instantiate(params map[string]float64) error {
	v := paramOr(params, "value", 0)
	s.s = newSlewed(v, s.s.sampleRate)
	return nil
}

// Connect is a no-op: a SmoothedScalar drives other nodes' parameters,
// it doesn't sum into the audio bus.
func (s *SmoothedScalar) Connect(_ *Bus) {}

func (s *SmoothedScalar) Set(param string, value, slewMs float64) error {
	if param != "value" {
		return errUnknownParam(param)
	}
	if slewMs <= 0 {
		slewMs = 20
	}
	s.s.set(value, slewMs)
	if s.onSet != nil {
		s.onSet(value, slewMs)
	}
	return nil
}

// Process advances len(block) samples and leaves the running value in
// every slot, so callers can read block[len(block)-1] as "value after
// this block" or use it directly as a per-sample control signal.
func (s *SmoothedScalar) Process(block []float64) {
	for i := range block {
		block[i] = s.s.next()
	}
}

func (s *SmoothedScalar) Destroy() {}

// Value returns the current (possibly mid-glide) value without
// advancing.
func (s *SmoothedScalar) Value() float64 { return s.s.value() }
