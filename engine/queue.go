package engine

import (
	"sync/atomic"

	"github.com/vsariola/keysynth"
)

// eventQueue carries key events from the producers (keyboard, MIDI, host) to
// the rendering goroutine. It is a buffered channel; when it is full, the
// oldest queued event is dropped to make room, so the latest input always
// gets through and a producer never blocks.
type eventQueue struct {
	ch      chan keysynth.KeyEvent
	dropped atomic.Uint64
}

func newEventQueue(size int) eventQueue {
	return eventQueue{ch: make(chan keysynth.KeyEvent, size)}
}

// push returns false if an older event had to be dropped.
func (q *eventQueue) push(e keysynth.KeyEvent) bool {
	ok := true
	for {
		select {
		case q.ch <- e:
			return ok
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
			ok = false
		default:
		}
	}
}
