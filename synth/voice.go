package synth

import (
	"fmt"

	"github.com/vsariola/keysynth"
)

type (
	// EnvelopeState is the stage of the amplitude envelope of a voice.
	EnvelopeState int

	// Voice is one sounding note. Voices live in the fixed pool of the
	// VoiceManager and are reused in place; a Free voice has no note and
	// contributes silence.
	Voice struct {
		NoteID    int
		Frequency float64
		Waveform  keysynth.Waveform
		Phase     float64 // fraction of the period, [0,1)
		State     EnvelopeState
		Level     float64 // envelope level, [0,1]
		Age       int     // number of blocks rendered since the voice was started

		delta    float64 // phase increment per sample
		stealing bool    // the voice is fading out because it was stolen
		pending  note    // note to start once the steal fade reaches zero
	}

	note struct {
		valid     bool
		id        int
		frequency float64
		waveform  keysynth.Waveform
	}

	// envelopeSteps are the per-sample level increments of the linear
	// ramps. They bound the sample-to-sample change caused by the envelope.
	envelopeSteps struct {
		attack, release, steal float64
	}
)

const (
	Free EnvelopeState = iota
	Attack
	Sustain
	Release
)

func (s EnvelopeState) String() string {
	switch s {
	case Free:
		return "free"
	case Attack:
		return "attack"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	}
	return fmt.Sprintf("EnvelopeState(%d)", int(s))
}

// Held is true while the key of the voice is still down.
func (v Voice) Held() bool {
	return v.State == Attack || v.State == Sustain
}

// Stealing is true when the voice is fading out to make room for another
// note.
func (v Voice) Stealing() bool {
	return v.stealing
}

// PendingNoteID returns the id of the note waiting for the steal fade to
// finish, if any.
func (v Voice) PendingNoteID() (int, bool) {
	return v.pending.id, v.pending.valid
}

func (v *Voice) start(n note, sampleRate float64) {
	*v = Voice{
		NoteID:    n.id,
		Frequency: n.frequency,
		Waveform:  n.waveform,
		State:     Attack,
		delta:     n.frequency / sampleRate,
	}
}

func (v *Voice) release() {
	if v.Held() {
		v.State = Release
	}
}

// steal forces a fast release; n starts in this voice when the level hits
// zero. A voice that is already being stolen keeps fading and just gets its
// pending note replaced.
func (v *Voice) steal(n note) {
	v.State = Release
	v.stealing = true
	v.pending = n
}

// render writes the voice into out, sample by sample. The envelope is
// advanced before the sample is computed, so a freshly started voice begins
// at one attack step and a released voice ends at exactly zero. Samples
// after the voice becomes Free are written as zeros.
func (v *Voice) render(out []float32, gain float32, steps *envelopeSteps, sampleRate float64) {
	for i := range out {
		switch v.State {
		case Free:
			clear(out[i:])
			return
		case Attack:
			v.Level += steps.attack
			if v.Level >= 1 {
				v.Level = 1
				v.State = Sustain
			}
		case Release:
			step := steps.release
			if v.stealing {
				step = steps.steal
			}
			v.Level -= step
			if v.Level <= 0 {
				v.finishRelease(sampleRate)
				out[i] = 0
				continue
			}
		}
		out[i] = Sample(v.Waveform, v.Phase) * float32(v.Level) * gain * WaveformGain(v.Waveform)
		v.Phase = advancePhase(v.Phase, v.delta)
	}
}

func (v *Voice) finishRelease(sampleRate float64) {
	if v.pending.valid {
		v.start(v.pending, sampleRate)
		return
	}
	*v = Voice{}
}
