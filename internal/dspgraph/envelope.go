package dspgraph

// stage names the envelope's current segment.
type stage int

const (
	stageIdle stage = iota
	stageAttack
	stageSustain
	stageRelease
	stageDone
)

// FadeEnvelope is a linear attack/release amplitude gate. Every
// amplitude-bearing node in a preset is expected to pass through one of
// these so play/stop transitions are click-free (spec §4.2 "Click-free
// guarantee": attack >= 5ms, release >= 20ms).
type FadeEnvelope struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64

	level     float64
	stepUp    float64
	stepDown  float64
	remaining int
	st        stage

	bus     *Bus
	scratch []float64
	input   []float64
}

const (
	minAttackMs  = 5
	minReleaseMs = 20
)

// NewFadeEnvelope builds a FadeEnvelope processing blockSize blocks at
// sampleRate. input is the upstream scratch buffer it reads; the gated
// signal is written to the envelope's own scratch buffer.
func NewFadeEnvelope(sampleRate float64, blockSize int, input []float64) *FadeEnvelope {
	return &FadeEnvelope{sampleRate: sampleRate, scratch: make([]float64, blockSize), input: input}
}

// Instantiate sets attack_ms (default 10, floored at 5) and release_ms
// (default 200, floored at 20).
func (e *FadeEnvelope) Instantiate(params map[string]float64) error {
	e.attackMs = paramOr(params, "attack_ms", 10)
	if e.attackMs < minAttackMs {
		e.attackMs = minAttackMs
	}
	e.releaseMs = paramOr(params, "release_ms", 200)
	if e.releaseMs < minReleaseMs {
		e.releaseMs = minReleaseMs
	}
	e.st = stageIdle
	return nil
}

func (e *FadeEnvelope) Connect(bus *Bus) { e.bus = bus; bus.Register(e.scratch) }

// Set accepts "gate": value >= 0.5 triggers attack (or holds at
// sustain), value < 0.5 triggers release. slewMs is ignored; the
// envelope's own attack/release times govern its ramp.
func (e *FadeEnvelope) Set(param string, value, _ float64) error {
	if param != "gate" {
		return errUnknownParam(param)
	}
	if value >= 0.5 {
		e.startAttack()
	} else {
		e.startRelease()
	}
	return nil
}

func (e *FadeEnvelope) startAttack() {
	n := int(e.attackMs * e.sampleRate / 1000)
	if n <= 0 {
		n = 1
	}
	e.stepUp = (1 - e.level) / float64(n)
	e.remaining = n
	e.st = stageAttack
}

func (e *FadeEnvelope) startRelease() {
	n := int(e.releaseMs * e.sampleRate / 1000)
	if n <= 0 {
		n = 1
	}
	e.stepDown = e.level / float64(n)
	e.remaining = n
	e.st = stageRelease
}

// Done reports whether the release ramp has fully completed, the signal
// for the preset to destroy its graph (spec §4.2 stop()).
func (e *FadeEnvelope) Done() bool { return e.st == stageDone }

// Settled reports whether the attack ramp has completed and the
// envelope is holding at sustain, the signal for a preset instance to
// transition from Fading-In to Playing.
func (e *FadeEnvelope) Settled() bool { return e.st == stageSustain }

func (e *FadeEnvelope) Process(block []float64) {
	n := len(e.scratch)
	if len(e.input) < n {
		n = len(e.input)
	}
	for i := 0; i < n; i++ {
		switch e.st {
		case stageAttack:
			e.level += e.stepUp
			e.remaining--
			if e.remaining <= 0 {
				e.level = 1
				e.st = stageSustain
			}
		case stageRelease:
			e.level -= e.stepDown
			e.remaining--
			if e.remaining <= 0 {
				e.level = 0
				e.st = stageDone
			}
		}
		e.scratch[i] = e.input[i] * e.level
	}
}

func (e *FadeEnvelope) Destroy() { e.st = stageDone }

// Scratch returns the envelope's gated output block.
func (e *FadeEnvelope) Scratch() []float64 { return e.scratch }
