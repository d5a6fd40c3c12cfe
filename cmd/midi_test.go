package cmd_test

import (
	"testing"

	"github.com/vsariola/keysynth/cmd"
)

func TestNullMIDIInput(t *testing.T) {
	var in cmd.MIDIInput = cmd.NullMIDIInput{}
	if len(in.Inputs()) != 0 {
		t.Fatalf("null input listed devices")
	}
	if err := in.TryToOpenBy("", true); err == nil {
		t.Fatalf("null input opened a device")
	}
	if err := in.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
