package gomidi_test

import (
	"math"
	"testing"

	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/gomidi"
	"gitlab.com/gomidi/midi/v2"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		msg  midi.Message
		ok   bool
		kind keysynth.EventKind
		id   int
		freq float64
	}{
		{midi.NoteOn(0, 69, 100), true, keysynth.NoteOn, 69, 440},
		{midi.NoteOn(2, 81, 1), true, keysynth.NoteOn, 2*128 + 81, 880},
		{midi.NoteOn(0, 69, 0), true, keysynth.NoteOff, 69, 0},
		{midi.NoteOff(15, 60), true, keysynth.NoteOff, 15*128 + 60, 0},
		{midi.ControlChange(0, 7, 100), false, 0, 0, 0},
	}
	for _, c := range cases {
		ev, ok := gomidi.Translate(c.msg, keysynth.Triangle)
		if ok != c.ok {
			t.Fatalf("%v: ok was %v, expected %v", c.msg, ok, c.ok)
		}
		if !ok {
			continue
		}
		if ev.Kind != c.kind || ev.NoteID != c.id {
			t.Fatalf("%v: got %v for note %v, expected %v for note %v", c.msg, ev.Kind, ev.NoteID, c.kind, c.id)
		}
		if ev.Kind == keysynth.NoteOn {
			if math.Abs(ev.Frequency-c.freq) > 1e-9 || ev.Waveform != keysynth.Triangle {
				t.Fatalf("%v: got %v Hz %v, expected %v Hz triangle", c.msg, ev.Frequency, ev.Waveform, c.freq)
			}
		}
	}
}

func TestNoteIDsAreUniquePerChannel(t *testing.T) {
	seen := map[int]bool{}
	for ch := uint8(0); ch < 16; ch++ {
		for key := uint8(0); key < 128; key++ {
			id := gomidi.NoteID(ch, key)
			if seen[id] || id < 0 || id >= 2048 {
				t.Fatalf("note id %v of channel %v key %v is not unique or out of range", id, ch, key)
			}
			seen[id] = true
		}
	}
}
