package effects

import (
	"math"

	"github.com/vsariola/keysynth"
)

// Clipper is the last stage of every chain: it keeps the output inside
// [-1,1]. The hard mode clamps; the soft mode passes everything within
// ±softKnee unchanged and bends larger values smoothly towards ±1.
type Clipper struct {
	Mode keysynth.ClipMode
}

const softKnee = 0.8

func (c Clipper) Process(block []float32) {
	if c.Mode == keysynth.ClipHard {
		for i, x := range block {
			block[i] = min(max(x, -1), 1)
		}
		return
	}
	for i, x := range block {
		block[i] = softClip(x)
	}
}

func softClip(x float32) float32 {
	switch {
	case x > softKnee:
		return softKnee + (1-softKnee)*float32(math.Tanh(float64(x-softKnee)/(1-softKnee)))
	case x < -softKnee:
		return -softKnee - (1-softKnee)*float32(math.Tanh(float64(-x-softKnee)/(1-softKnee)))
	}
	return x
}
