package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ossrs/go-oryx-lib/logger"
)

// Stats is a snapshot of the engine counters, safe to take from any
// goroutine. Load is the render time of the last block relative to the block
// period; RMS and Peak are the levels of the last block after the effects.
// ReplacedNotes counts notes that waited for a stolen voice and were
// displaced by a newer note before they could start.
type Stats struct {
	Blocks         uint64
	DeadlineMisses uint64
	DroppedEvents  uint64
	Steals         uint64
	ReplacedNotes  uint64
	ActiveVoices   int
	Load           float64
	RMS            float32
	Peak           float32
}

func (e *Engine) Stats() Stats {
	c := &e.counters
	return Stats{
		Blocks:         c.blocks.Load(),
		DeadlineMisses: c.deadlineMisses.Load(),
		DroppedEvents:  e.queue.dropped.Load(),
		Steals:         c.steals.Load(),
		ReplacedNotes:  c.replacedNotes.Load(),
		ActiveVoices:   int(c.activeVoices.Load()),
		Load:           math.Float64frombits(c.load.Load()),
		RMS:            math.Float32frombits(c.rms.Load()),
		Peak:           math.Float32frombits(c.peak.Load()),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("blocks=%v, voices=%v, load=%.0f%%, misses=%v, dropped=%v, steals=%v, replaced=%v, peak=%.2f",
		s.Blocks, s.ActiveVoices, s.Load*100, s.DeadlineMisses, s.DroppedEvents, s.Steals, s.ReplacedNotes, s.Peak)
}

// Start launches the goroutine that logs the counters once per second when
// something noteworthy changed. It returns immediately; Stop ends the
// goroutine. Calling Start on a running or stopped engine does nothing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil || e.stopped.Load() {
		return
	}
	ctx, cancel := context.WithCancel(logger.WithContext(ctx))
	done := make(chan struct{})
	e.cancel, e.done = cancel, done
	go func() {
		defer close(done)
		e.monitor(ctx, time.Second)
	}()
}

func (e *Engine) monitor(ctx context.Context, interval time.Duration) {
	c := &e.cfg
	logger.Tf(ctx, "engine start, rate=%v, block=%v, channels=%v, polyphony=%v, period=%v",
		c.SampleRate, c.BlockLength, c.Channels, c.MaxPolyphony, e.period)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var prev Stats
	for {
		select {
		case <-ctx.Done():
			logger.Tf(ctx, "engine stop, %v", e.Stats())
			return
		case <-ticker.C:
			s := e.Stats()
			if s.DeadlineMisses > prev.DeadlineMisses {
				logger.Wf(ctx, "missed %v render deadlines, load=%.0f%%", s.DeadlineMisses-prev.DeadlineMisses, s.Load*100)
			}
			if s.DroppedEvents > prev.DroppedEvents {
				logger.Wf(ctx, "dropped %v key events, queue full", s.DroppedEvents-prev.DroppedEvents)
			}
			if s.Steals > prev.Steals {
				logger.Tf(ctx, "stole %v voices, %v", s.Steals-prev.Steals, s)
			}
			if s.ReplacedNotes > prev.ReplacedNotes {
				logger.Wf(ctx, "%v notes replaced before they started, all voices busy", s.ReplacedNotes-prev.ReplacedNotes)
			}
			prev = s
		}
	}
}
