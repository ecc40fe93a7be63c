package dspgraph

// slewed is a control-rate value that cannot change faster than its
// configured rate, used by every node to implement Set's slew_ms
// argument without introducing zipper noise (spec §4.1, §9 glossary
// "Slew-limited parameter").
type slewed struct {
	current    float64
	target     float64
	perSampleStep float64
	remaining  int
	sampleRate float64
}

func newSlewed(initial, sampleRate float64) *slewed {
	return &slewed{current: initial, target: initial, sampleRate: sampleRate}
}

// set begins a glide from the current value to value over slewMs
// milliseconds. slewMs <= 0 jumps immediately.
func (s *slewed) set(value, slewMs float64) {
	if slewMs <= 0 {
		s.current = value
		s.target = value
		s.remaining = 0
		return
	}
	n := int(slewMs * s.sampleRate / 1000)
	if n <= 0 {
		s.current = value
		s.target = value
		s.remaining = 0
		return
	}
	s.target = value
	s.remaining = n
	s.perSampleStep = (value - s.current) / float64(n)
}

// next advances one sample and returns the current value.
func (s *slewed) next() float64 {
	if s.remaining > 0 {
		s.current += s.perSampleStep
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		}
	}
	return s.current
}

// value returns the current value without advancing.
func (s *slewed) value() float64 {
	return s.current
}
