//go:build cgo

package cmd

import (
	"context"

	"github.com/vsariola/keysynth/gomidi"
)

func NewMIDIInput(ctx context.Context, sink gomidi.Sink) MIDIInput {
	return gomidi.NewContext(ctx, sink)
}
