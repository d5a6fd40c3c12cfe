package effects

import (
	"math"

	"github.com/vsariola/keysynth"
)

type (
	// Phaser sweeps the break frequency of a cascade of first order all-pass
	// filters with an LFO and mixes the result with the dry signal, producing
	// moving notches.
	Phaser struct {
		lfo            LFO
		filters        [keysynth.MaxPhaserStages]allPass
		stages         int
		logMin, logMax float64
		sampleRate     float64
		feedback       float32
		mix            float32
		last           float32
	}

	allPass struct {
		state float32
	}
)

const phaserCenterFreq = 1000

func NewPhaser(p keysynth.PhaserParams, sampleRate int) *Phaser {
	sr := float64(sampleRate)
	spread := 1 + 4*p.Depth
	hi := min(phaserCenterFreq*spread, 0.45*sr)
	lo := min(phaserCenterFreq/spread, hi)
	return &Phaser{
		lfo:        NewLFO(p.Rate, sr, 0),
		stages:     min(max(p.Stages, 1), keysynth.MaxPhaserStages),
		logMin:     math.Log(lo),
		logMax:     math.Log(hi),
		sampleRate: sr,
		feedback:   float32(p.Feedback),
		mix:        float32(p.Mix),
	}
}

func (p *Phaser) Process(block []float32) {
	for i, x := range block {
		m := (p.lfo.Next() + 1) / 2
		freq := math.Exp(p.logMin + (p.logMax-p.logMin)*m)
		t := math.Tan(math.Pi * freq / p.sampleRate)
		a := float32((1 - t) / (1 + t))
		wet := min(max(x+p.last*p.feedback, -1), 1)
		for s := 0; s < p.stages; s++ {
			wet = p.filters[s].process(wet, a)
		}
		p.last = wet
		block[i] = x*(1-p.mix) + wet*p.mix
	}
}

func (p *Phaser) Reset() {
	p.lfo.Reset()
	for i := range p.filters {
		p.filters[i].state = 0
	}
	p.last = 0
}

// process runs y = a*x + s, s' = x - a*y; a = (1-tan(pi fc/fs))/(1+tan(pi fc/fs))
func (f *allPass) process(x, a float32) float32 {
	y := a*x + f.state
	f.state = x - a*y
	return y
}
