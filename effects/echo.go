package effects

import "github.com/vsariola/keysynth"

// Echo is a feedback delay: every sample the delayed output is added to the
// input, and the sum is both the output and what gets written back into the
// line. With feedback below 1, an impulse decays geometrically.
type Echo struct {
	line     delayLine
	delay    int
	feedback float32
}

func NewEcho(p keysynth.EchoParams, sampleRate int) *Echo {
	delay := max(1, int(p.DelayMs*float64(sampleRate)/1000+0.5))
	return &Echo{
		line:     newDelayLine(delay),
		delay:    delay,
		feedback: float32(p.Feedback),
	}
}

func (e *Echo) Process(block []float32) {
	for i, x := range block {
		y := x + e.line.read(e.delay)*e.feedback
		e.line.write(y)
		block[i] = y
	}
}

func (e *Echo) Reset() {
	e.line.reset()
}

// DelaySamples returns the length of the echo in samples.
func (e *Echo) DelaySamples() int {
	return e.delay
}
