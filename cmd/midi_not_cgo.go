//go:build !cgo

package cmd

import (
	"context"

	"github.com/vsariola/keysynth"
)

// Sink matches gomidi.Sink, which cannot be imported without cgo.
type Sink interface {
	Push(ev keysynth.KeyEvent) bool
	DefaultWaveform() keysynth.Waveform
	ReleaseAll()
}

func NewMIDIInput(ctx context.Context, sink Sink) MIDIInput {
	// with no cgo, we cannot use MIDI, so return a null input
	return NullMIDIInput{}
}
