package effects

import "math"

// LFO is a sine low frequency oscillator. Phase is the fraction of the
// period, in [0,1).
type LFO struct {
	phase, start, inc float64
}

// NewLFO returns an LFO running at rate Hz, starting from phase.
func NewLFO(rate, sampleRate, phase float64) LFO {
	phase -= math.Floor(phase)
	return LFO{phase: phase, start: phase, inc: rate / sampleRate}
}

// Next returns the current value in [-1,1] and advances by one sample.
func (l *LFO) Next() float64 {
	v := math.Sin(2 * math.Pi * l.phase)
	l.phase += l.inc
	l.phase -= math.Floor(l.phase)
	return v
}

// Reset rewinds the LFO to its starting phase.
func (l *LFO) Reset() {
	l.phase = l.start
}
