package synth

import (
	"math"

	"github.com/vsariola/keysynth"
)

// Sample returns the amplitude of the waveform at the given phase. phase is
// the fraction of the period, expected to be within [0,1). The result is
// within [-1,1]. The square wave is naive, i.e. not band limited.
func Sample(w keysynth.Waveform, phase float64) float32 {
	switch w {
	case keysynth.Sine:
		return float32(math.Sin(2 * math.Pi * phase))
	case keysynth.Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case keysynth.Triangle:
		return float32(4*math.Abs(phase-math.Floor(phase+0.5)) - 1)
	}
	return 0
}

// WaveformGain is the relative loudness of each waveform. Square waves have
// much more energy in the harmonics, so they are played quieter.
func WaveformGain(w keysynth.Waveform) float32 {
	if w == keysynth.Square {
		return 0.4
	}
	return 1
}

// advancePhase moves the phase forward by delta and wraps it into [0,1).
func advancePhase(phase, delta float64) float64 {
	phase += delta
	return phase - math.Floor(phase)
}
