// Package engine ties the voice manager and the effect chain into a block
// based renderer that is fed by key events from other goroutines.
package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/effects"
	"github.com/vsariola/keysynth/synth"
)

type (
	// Engine renders audio blocks. Process belongs to the rendering
	// goroutine (the audio device or plugin host); Push, SetEffectEnabled,
	// SetDefaultWaveform, ReleaseAll and Stats can be called from any
	// goroutine.
	Engine struct {
		cfg      keysynth.Config
		queue    eventQueue
		voices   *synth.VoiceManager
		chain    *effects.Chain
		block    []float32
		tmp      []float32
		period   time.Duration
		waveform atomic.Int32
		stopped  atomic.Bool
		counters counters

		mu     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	}

	counters struct {
		blocks         atomic.Uint64
		deadlineMisses atomic.Uint64
		steals         atomic.Uint64
		replacedNotes  atomic.Uint64
		activeVoices   atomic.Int64
		load           atomic.Uint64 // float64 bits
		rms            atomic.Uint32 // float32 bits
		peak           atomic.Uint32 // float32 bits
	}
)

var (
	// ErrStopped is returned by Process after Stop; the output is silence.
	ErrStopped = errors.New("engine stopped")
	// ErrBufferSize is returned by Process when the output buffer is not
	// exactly one block of interleaved frames.
	ErrBufferSize = errors.New("output buffer is not block_length*channels samples")
)

// New validates the configuration and allocates every buffer the engine will
// ever need. The returned error wraps a *keysynth.ConfigError.
func New(cfg keysynth.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "new engine")
	}
	cfg.Effects.Order = append([]keysynth.EffectKind(nil), cfg.Effects.Order...)
	e := &Engine{
		cfg:    cfg,
		queue:  newEventQueue(cfg.QueueSize),
		voices: synth.NewVoiceManager(&cfg),
		chain:  effects.NewChain(&cfg),
		block:  make([]float32, cfg.BlockLength),
		tmp:    make([]float32, cfg.BlockLength),
		period: cfg.BlockPeriod(),
	}
	e.waveform.Store(int32(cfg.WaveformDefault))
	return e, nil
}

// Config returns the validated configuration the engine was built with.
func (e *Engine) Config() keysynth.Config {
	return e.cfg
}

// BlockSize returns the number of float32 values Process writes: block
// length times the number of channels.
func (e *Engine) BlockSize() int {
	return e.cfg.BlockLength * e.cfg.Channels
}

// Push queues a key event for the next block. It never blocks. If the queue
// is full, the oldest queued event is dropped and false is returned.
func (e *Engine) Push(ev keysynth.KeyEvent) bool {
	return e.queue.push(ev)
}

// NoteOn queues a note-on with the current default waveform.
func (e *Engine) NoteOn(id int, freq float64) bool {
	return e.Push(keysynth.NoteOnEvent(id, freq, e.DefaultWaveform()))
}

// NoteOff queues a note-off.
func (e *Engine) NoteOff(id int) bool {
	return e.Push(keysynth.NoteOffEvent(id))
}

// ReleaseAll queues an all-notes-off. Notes pushed before it are released
// too, notes pushed after it are not.
func (e *Engine) ReleaseAll() {
	e.Push(keysynth.AllNotesOffEvent())
}

// SetDefaultWaveform sets the waveform used by NoteOn and by producers that
// do not choose a waveform themselves.
func (e *Engine) SetDefaultWaveform(w keysynth.Waveform) {
	if w >= 0 && w < keysynth.NumWaveforms {
		e.waveform.Store(int32(w))
	}
}

func (e *Engine) DefaultWaveform() keysynth.Waveform {
	return keysynth.Waveform(e.waveform.Load())
}

// SetEffectEnabled switches an effect unit on or off starting from the next
// block. A unit that is switched back on starts with empty delay lines.
func (e *Engine) SetEffectEnabled(k keysynth.EffectKind, enabled bool) {
	e.chain.SetEnabled(k, enabled)
}

func (e *Engine) EffectEnabled(k keysynth.EffectKind) bool {
	return e.chain.Enabled(k)
}

// Process renders one block into out, interleaved to the configured number
// of channels. Queued events are applied at the start of the block, in the
// order they were pushed. Process does not allocate or block. If rendering
// took longer than the duration of the block, the deadline miss counter is
// incremented.
func (e *Engine) Process(out []float32) error {
	if e.stopped.Load() {
		clear(out)
		return ErrStopped
	}
	if len(out) != len(e.block)*e.cfg.Channels {
		clear(out)
		return ErrBufferSize
	}
	start := time.Now()
	e.handleEvents()
	e.voices.Render(e.block)
	e.chain.Process(e.block)
	if e.cfg.Channels == 1 {
		copy(out, e.block)
	} else {
		for i, v := range e.block {
			out[2*i] = v
			out[2*i+1] = v
		}
	}
	e.updateCounters(time.Since(start))
	return nil
}

func (e *Engine) handleEvents() {
loop:
	for i := 0; i < cap(e.queue.ch); i++ {
		select {
		case ev := <-e.queue.ch:
			switch ev.Kind {
			case keysynth.NoteOn:
				e.voices.NoteOn(ev.NoteID, ev.Frequency, ev.Waveform)
			case keysynth.NoteOff:
				e.voices.NoteOff(ev.NoteID)
			case keysynth.AllNotesOff:
				e.voices.ReleaseAll()
			}
		default:
			break loop
		}
	}
}

func (e *Engine) updateCounters(elapsed time.Duration) {
	c := &e.counters
	c.blocks.Add(1)
	if elapsed > e.period {
		c.deadlineMisses.Add(1)
	}
	c.steals.Store(e.voices.Steals())
	c.replacedNotes.Store(e.voices.Replaced())
	c.activeVoices.Store(int64(e.voices.Active()))
	c.load.Store(math.Float64bits(float64(elapsed) / float64(e.period)))
	sq := vek32.Mul_Into(e.tmp, e.block, e.block)
	c.rms.Store(math.Float32bits(float32(math.Sqrt(float64(vek32.Mean(sq))))))
	copy(e.tmp, e.block)
	vek32.Abs_Inplace(e.tmp)
	c.peak.Store(math.Float32bits(vek32.Max(e.tmp)))
}

// Stop makes the engine produce only silence from the next block on and
// stops the statistics monitor. It must not be called from the rendering
// goroutine: it waits for the monitor to exit.
func (e *Engine) Stop() {
	e.stopped.Store(true)
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Stopped reports if Stop has been called.
func (e *Engine) Stopped() bool {
	return e.stopped.Load()
}
