// Package cmd holds the pieces shared by the keysynth binaries.
package cmd

import "github.com/ossrs/go-oryx-lib/errors"

type (
	// MIDIInput is a source of MIDI notes the binaries can connect to.
	MIDIInput interface {
		Inputs() []string
		TryToOpenBy(namePrefix string, takeFirst bool) error
		Close() error
	}

	// NullMIDIInput has no devices. It is used when MIDI is not available.
	NullMIDIInput struct{}
)

func (NullMIDIInput) Inputs() []string { return nil }

func (NullMIDIInput) TryToOpenBy(namePrefix string, takeFirst bool) error {
	return errors.New("MIDI input is not available in this build")
}

func (NullMIDIInput) Close() error { return nil }
