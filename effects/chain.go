package effects

import (
	"sync/atomic"

	"github.com/vsariola/keysynth"
)

type (
	// Effect processes a mono block in place. Each call advances the state
	// of the effect by exactly len(block) samples.
	Effect interface {
		Process(block []float32)
		Reset()
	}

	// Chain runs the effect units in the configured order and finishes with
	// the clipper. Units can be switched on and off from any goroutine; all
	// other methods belong to the rendering goroutine. Switching a unit
	// crossfades between its dry input and its output over ToggleFadeMs.
	Chain struct {
		units    [keysynth.NumEffectKinds]unit
		order    []keysynth.EffectKind
		clip     Clipper
		dry      []float32
		fadeStep float32
	}

	unit struct {
		effect  Effect
		enabled atomic.Bool
		reset   atomic.Bool
		wet     float32 // crossfade position, 0 is bypassed; rendering goroutine only
	}
)

// ToggleFadeMs is the length of the crossfade when an effect is switched on
// or off.
const ToggleFadeMs = 10

// NewChain constructs all effect units with their buffers. cfg should
// already be validated.
func NewChain(cfg *keysynth.Config) *Chain {
	p := &cfg.Effects
	c := &Chain{
		order:    append([]keysynth.EffectKind(nil), p.Order...),
		clip:     Clipper{Mode: p.Clip},
		dry:      make([]float32, max(cfg.BlockLength, 1)),
		fadeStep: 1 / float32(cfg.Samples(ToggleFadeMs)),
	}
	c.units[keysynth.Phaser].effect = NewPhaser(p.Phaser, cfg.SampleRate)
	c.units[keysynth.Echo].effect = NewEcho(p.Echo, cfg.SampleRate)
	c.units[keysynth.Chorus].effect = NewChorus(p.Chorus, cfg.SampleRate)
	for k := range c.units {
		u := &c.units[k]
		u.enabled.Store(p.EffectEnabled(keysynth.EffectKind(k)))
		u.settle()
	}
	return c
}

// Process runs the enabled units and the clipper over block. A unit that
// was switched back on fades out whatever it still had, starts again from a
// clean state and fades in.
func (c *Chain) Process(block []float32) {
	for _, k := range c.order {
		c.units[k].process(block, c.dry, c.fadeStep)
	}
	c.clip.Process(block)
}

func (u *unit) process(block, dry []float32, step float32) {
	for len(block) > 0 {
		var target float32
		if u.enabled.Load() && !u.reset.Load() {
			target = 1
		}
		if u.wet == target {
			if target == 1 {
				u.effect.Process(block)
				return
			}
			if u.reset.CompareAndSwap(true, false) {
				u.effect.Reset()
				continue
			}
			return
		}
		n := min(len(block), len(dry))
		copy(dry[:n], block[:n])
		u.effect.Process(block[:n])
		for i, d := range dry[:n] {
			if u.wet < target {
				u.wet = min(u.wet+step, target)
			} else {
				u.wet = max(u.wet-step, target)
			}
			block[i] = d + (block[i]-d)*u.wet
		}
		block = block[n:]
	}
}

func (u *unit) settle() {
	u.wet = 0
	if u.enabled.Load() {
		u.wet = 1
	}
}

// SetEnabled switches an effect on or off. It is safe to call concurrently
// with Process; the crossfade starts at the next block.
func (c *Chain) SetEnabled(k keysynth.EffectKind, enabled bool) {
	if k < 0 || k >= keysynth.NumEffectKinds {
		return
	}
	u := &c.units[k]
	if enabled && !u.enabled.Load() {
		u.reset.Store(true)
	}
	u.enabled.Store(enabled)
}

func (c *Chain) Enabled(k keysynth.EffectKind) bool {
	if k < 0 || k >= keysynth.NumEffectKinds {
		return false
	}
	return c.units[k].enabled.Load()
}

// Reset clears the state of every unit and ends any crossfade.
func (c *Chain) Reset() {
	for k := range c.units {
		u := &c.units[k]
		u.reset.Store(false)
		u.effect.Reset()
		u.settle()
	}
}
