package keyboard_test

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/keyboard"
)

type fakeSynth struct {
	events     []keysynth.KeyEvent
	waveform   keysynth.Waveform
	effects    [keysynth.NumEffectKinds]bool
	releaseAll int
}

func (f *fakeSynth) Push(ev keysynth.KeyEvent) bool {
	f.events = append(f.events, ev)
	return true
}

func (f *fakeSynth) ReleaseAll() { f.releaseAll++ }
func (f *fakeSynth) DefaultWaveform() keysynth.Waveform { return f.waveform }
func (f *fakeSynth) SetDefaultWaveform(w keysynth.Waveform) { f.waveform = w }
func (f *fakeSynth) EffectEnabled(k keysynth.EffectKind) bool {
	return f.effects[k]
}
func (f *fakeSynth) SetEffectEnabled(k keysynth.EffectKind, enabled bool) {
	f.effects[k] = enabled
}

func TestLatchingNotes(t *testing.T) {
	synth := &fakeSynth{}
	kb := keyboard.New(synth, nil)
	if err := kb.Run(strings.NewReader("a;2aZ")); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(synth.events) != 3 {
		t.Fatalf("got %v events, expected 3", len(synth.events))
	}
	on := synth.events[0]
	if on.Kind != keysynth.NoteOn || on.NoteID != keyboard.NoteID(0) || on.Frequency != 440 || on.Waveform != keysynth.Sine {
		t.Fatalf("first event was %+v, expected a 440 Hz sine note-on", on)
	}
	top := synth.events[1]
	if expected := 440 * math.Pow(2, 15.0/12); top.Kind != keysynth.NoteOn || math.Abs(top.Frequency-expected) > 1e-9 {
		t.Fatalf("';' played %v Hz, expected %v", top.Frequency, expected)
	}
	off := synth.events[2]
	if off.Kind != keysynth.NoteOff || off.NoteID != keyboard.NoteID(0) {
		t.Fatalf("second press of 'a' produced %+v, expected a note-off", off)
	}
	if synth.waveform != keysynth.Square {
		t.Fatalf("waveform was %v after '2', expected square", synth.waveform)
	}
	if kb.Held(0) || !kb.Held(15) {
		t.Fatalf("latched notes are wrong")
	}
}

func TestUpperCaseKeys(t *testing.T) {
	synth := &fakeSynth{}
	kb := keyboard.New(synth, nil)
	kb.HandleKey('W')
	if len(synth.events) != 1 || synth.events[0].NoteID != keyboard.NoteID(1) {
		t.Fatalf("'W' did not play the second note: %+v", synth.events)
	}
}

func TestQuitAndEscapeSequences(t *testing.T) {
	synth := &fakeSynth{}
	kb := keyboard.New(synth, nil)
	// an arrow key is ignored, the lone escape quits before the last 'a'
	r := &chunkReader{chunks: []string{"\x1b[A", "a", "\x1b", "s"}}
	if err := kb.Run(r); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(synth.events) != 1 || synth.events[0].NoteID != keyboard.NoteID(0) {
		t.Fatalf("got events %+v, expected only the note of 'a'", synth.events)
	}
}

func TestEffectTogglesAndReleaseAll(t *testing.T) {
	synth := &fakeSynth{}
	var status bytes.Buffer
	kb := keyboard.New(synth, &status)
	for _, b := range []byte("466sd ") {
		kb.HandleKey(b)
	}
	if !synth.effects[keysynth.Phaser] || synth.effects[keysynth.Chorus] || synth.effects[keysynth.Echo] {
		t.Fatalf("effect flags were %v", synth.effects)
	}
	if synth.releaseAll != 1 || kb.Held(2) || kb.Held(4) {
		t.Fatalf("space did not release the latched notes")
	}
	if !strings.Contains(status.String(), "Sine | phaser on echo off chorus off") {
		t.Fatalf("status line was %q", status.String())
	}
}

type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}
