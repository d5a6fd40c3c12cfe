package gomidi

import (
	"github.com/vsariola/keysynth"
	"gitlab.com/gomidi/midi/v2"
)

// allNotesOff is the MIDI channel mode message that releases every note.
const allNotesOff = 123

// NoteID returns the note id used for a key on a MIDI channel. Ids of all
// 16 channels fit into [0, 2048).
func NoteID(channel, key uint8) int {
	return int(channel)*128 + int(key)
}

// Translate converts a MIDI note message into a key event. A note-on with
// zero velocity is a note-off. ok is false for all other messages.
func Translate(msg midi.Message, w keysynth.Waveform) (ev keysynth.KeyEvent, ok bool) {
	var channel, key, velocity uint8
	if msg.GetNoteOn(&channel, &key, &velocity) {
		if velocity == 0 {
			return keysynth.NoteOffEvent(NoteID(channel, key)), true
		}
		return keysynth.NoteOnEvent(NoteID(channel, key), keysynth.MIDINoteFrequency(key), w), true
	}
	if msg.GetNoteOff(&channel, &key, &velocity) {
		return keysynth.NoteOffEvent(NoteID(channel, key)), true
	}
	return keysynth.KeyEvent{}, false
}

// AllNotesOff reports if msg asks to release every note.
func AllNotesOff(msg midi.Message) bool {
	var channel, controller, value uint8
	return msg.GetControlChange(&channel, &controller, &value) && controller == allNotesOff
}
