package effects

import "github.com/vsariola/keysynth"

// Chorus mixes the dry signal with up to keysynth.MaxChorusLines copies of
// itself, each delayed by an LFO modulated amount. The LFOs of the lines are
// spread evenly in phase.
type Chorus struct {
	lines    [keysynth.MaxChorusLines]chorusLine
	n        int
	delay    float64 // base delay in samples
	depth    float64 // modulation depth in samples
	dry, wet float32
}

type chorusLine struct {
	line delayLine
	lfo  LFO
}

func NewChorus(p keysynth.ChorusParams, sampleRate int) *Chorus {
	sr := float64(sampleRate)
	c := &Chorus{
		n:     min(max(p.Lines, 1), keysynth.MaxChorusLines),
		delay: p.DelayMs * sr / 1000,
		depth: p.Depth * sr / 1000,
		dry:   float32(p.Dry),
	}
	c.wet = float32(p.Wet) / float32(c.n)
	length := int(c.delay+c.depth) + 3
	for i := 0; i < c.n; i++ {
		c.lines[i] = chorusLine{
			line: newDelayLine(length),
			lfo:  NewLFO(p.Rate, sr, float64(i)/float64(c.n)),
		}
	}
	return c
}

func (c *Chorus) Process(block []float32) {
	for i, x := range block {
		var sum float32
		for j := 0; j < c.n; j++ {
			l := &c.lines[j]
			sum += l.line.readFrac(c.delay + c.depth*l.lfo.Next())
			l.line.write(x)
		}
		block[i] = x*c.dry + sum*c.wet
	}
}

func (c *Chorus) Reset() {
	for j := 0; j < c.n; j++ {
		c.lines[j].line.reset()
		c.lines[j].lfo.Reset()
	}
}
