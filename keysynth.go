package keysynth

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type (
	// Waveform is the shape of the oscillator a voice is rendered with. It is
	// a closed set; Sample in the synth package switches on it.
	Waveform int

	// EventKind tells if a KeyEvent starts a note, releases one or releases
	// every note.
	EventKind int

	// KeyEvent is a key press or release, produced by a key mapping
	// collaborator (terminal keyboard, MIDI input, plugin host) and consumed
	// exactly once by the engine, in the order of arrival. NoteID identifies
	// the note while it is active; Frequency and Waveform are only
	// meaningful for NoteOn. AllNotesOff carries no note.
	KeyEvent struct {
		NoteID    int
		Frequency float64
		Waveform  Waveform
		Kind      EventKind
		Timestamp time.Time
	}

	// EffectKind names one of the effect units of the chain.
	EffectKind int
)

const (
	Sine Waveform = iota
	Square
	Triangle
	NumWaveforms
)

const (
	NoteOn EventKind = iota
	NoteOff
	AllNotesOff
)

const (
	Phaser EffectKind = iota
	Echo
	Chorus
	NumEffectKinds
)

var waveformNames = [NumWaveforms]string{"sine", "square", "triangle"}

var effectNames = [NumEffectKinds]string{"phaser", "echo", "chorus"}

func (w Waveform) String() string {
	if w < 0 || w >= NumWaveforms {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || w >= NumWaveforms {
		return nil, fmt.Errorf("unknown waveform %d", int(w))
	}
	return []byte(waveformNames[w]), nil
}

func (w *Waveform) UnmarshalText(text []byte) error {
	v, err := ParseWaveform(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// ParseWaveform parses a waveform name, case insensitively.
func ParseWaveform(s string) (Waveform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range waveformNames {
		if n == s {
			return Waveform(i), nil
		}
	}
	return Sine, fmt.Errorf("unknown waveform %q", s)
}

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case AllNotesOff:
		return "all-notes-off"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (e EffectKind) String() string {
	if e < 0 || e >= NumEffectKinds {
		return fmt.Sprintf("EffectKind(%d)", int(e))
	}
	return effectNames[e]
}

func (e EffectKind) MarshalText() ([]byte, error) {
	if e < 0 || e >= NumEffectKinds {
		return nil, fmt.Errorf("unknown effect %d", int(e))
	}
	return []byte(effectNames[e]), nil
}

func (e *EffectKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range effectNames {
		if n == s {
			*e = EffectKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown effect %q", s)
}

// NoteOnEvent is a helper to construct a NoteOn KeyEvent stamped with the
// current time.
func NoteOnEvent(id int, freq float64, w Waveform) KeyEvent {
	return KeyEvent{NoteID: id, Frequency: freq, Waveform: w, Kind: NoteOn, Timestamp: time.Now()}
}

// NoteOffEvent is a helper to construct a NoteOff KeyEvent stamped with the
// current time.
func NoteOffEvent(id int) KeyEvent {
	return KeyEvent{NoteID: id, Kind: NoteOff, Timestamp: time.Now()}
}

// AllNotesOffEvent is a helper to construct an AllNotesOff KeyEvent stamped
// with the current time.
func AllNotesOffEvent() KeyEvent {
	return KeyEvent{Kind: AllNotesOff, Timestamp: time.Now()}
}

// SemitoneFrequency returns the frequency semitones above (or below, if
// negative) base, in equal temperament.
func SemitoneFrequency(base float64, semitones int) float64 {
	return base * math.Pow(2, float64(semitones)/12)
}

// MIDINoteFrequency converts a MIDI note number into Hz, A4 = note 69 = 440 Hz.
func MIDINoteFrequency(note byte) float64 {
	return SemitoneFrequency(440, int(note)-69)
}
