// Package keyboard turns a computer keyboard into a one and a half octave
// piano. Terminals only report key presses, not releases, so the keys latch:
// the first press starts a note and the second press releases it.
package keyboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/vsariola/keysynth"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	// Synth is what the keyboard controls. *engine.Engine implements it.
	Synth interface {
		Push(ev keysynth.KeyEvent) bool
		ReleaseAll()
		DefaultWaveform() keysynth.Waveform
		SetDefaultWaveform(w keysynth.Waveform)
		EffectEnabled(k keysynth.EffectKind) bool
		SetEffectEnabled(k keysynth.EffectKind, enabled bool)
	}

	Keyboard struct {
		synth  Synth
		status io.Writer
		held   [len(NoteKeys)]bool
		caser  cases.Caser
	}
)

const (
	// NoteKeys are the note keys in chromatic order, starting from
	// BaseFrequency.
	NoteKeys      = "awsedftgyhujkol;"
	BaseFrequency = 440.0

	// note ids of the keyboard start here, above the ids of MIDI input
	noteIDBase = 4096

	keyEsc   = 0x1b
	keyCtrlC = 0x03
)

// New returns a keyboard controlling synth. The status line is written to
// status after every change; status can be nil.
func New(synth Synth, status io.Writer) *Keyboard {
	return &Keyboard{synth: synth, status: status, caser: cases.Title(language.English)}
}

// NoteID returns the note id used for the i-th note key.
func NoteID(i int) int {
	return noteIDBase + i
}

// HandleKey reacts to one key press. It returns false when the key asks to
// quit.
func (k *Keyboard) HandleKey(b byte) bool {
	switch {
	case b == keyEsc || b == keyCtrlC:
		return false
	case b == ' ':
		k.synth.ReleaseAll()
		k.held = [len(NoteKeys)]bool{}
	case b >= '1' && b < '1'+byte(keysynth.NumWaveforms):
		k.synth.SetDefaultWaveform(keysynth.Waveform(b - '1'))
	case b >= '4' && b < '4'+byte(keysynth.NumEffectKinds):
		e := keysynth.EffectKind(b - '4')
		k.synth.SetEffectEnabled(e, !k.synth.EffectEnabled(e))
	default:
		i := strings.IndexByte(NoteKeys, toLower(b))
		if i < 0 {
			return true
		}
		id := NoteID(i)
		if k.held[i] {
			k.synth.Push(keysynth.NoteOffEvent(id))
		} else {
			freq := keysynth.SemitoneFrequency(BaseFrequency, i)
			k.synth.Push(keysynth.NoteOnEvent(id, freq, k.synth.DefaultWaveform()))
		}
		k.held[i] = !k.held[i]
	}
	k.printStatus()
	return true
}

// Run reads key presses from r until a quit key, the end of input or an
// error. Escape sequences, like the ones sent by arrow keys, are ignored.
func (k *Keyboard) Run(r io.Reader) error {
	k.printStatus()
	buf := make([]byte, 32)
	for {
		n, err := r.Read(buf)
		if n > 0 && !k.handleChunk(buf[:n]) {
			return nil
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read keys")
		}
	}
}

func (k *Keyboard) handleChunk(b []byte) bool {
	if len(b) > 1 && b[0] == keyEsc {
		return true
	}
	for _, c := range b {
		if !k.HandleKey(c) {
			return false
		}
	}
	return true
}

// Held reports which note keys are latched down.
func (k *Keyboard) Held(i int) bool {
	return k.held[i]
}

// Status describes the current waveform, effects and latched notes.
func (k *Keyboard) Status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s |", k.caser.String(k.synth.DefaultWaveform().String()))
	for e := keysynth.EffectKind(0); e < keysynth.NumEffectKinds; e++ {
		state := "off"
		if k.synth.EffectEnabled(e) {
			state = "on"
		}
		fmt.Fprintf(&sb, " %s %s", e, state)
	}
	sb.WriteString(" | ")
	for i := range NoteKeys {
		if k.held[i] {
			sb.WriteByte(NoteKeys[i])
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (k *Keyboard) printStatus() {
	if k.status == nil {
		return
	}
	fmt.Fprintf(k.status, "\r%s\x1b[K", k.Status())
}

// Help is the key map, printed at start-up.
func Help() string {
	return fmt.Sprintf("notes: %s | 1-3: sine, square, triangle | 4-6: phaser, echo, chorus | space: release all | esc: quit", NoteKeys)
}

// MakeRaw switches the terminal of f into raw mode, so key presses arrive
// one by one without echo. The returned function restores the old mode.
func MakeRaw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.Errorf("%v is not a terminal", f.Name())
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "set raw mode")
	}
	return func() { _ = term.Restore(fd, old) }, nil
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
