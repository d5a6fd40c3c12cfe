package synth

import (
	"github.com/viterin/vek/vek32"
	"github.com/vsariola/keysynth"
)

// VoiceManager owns a fixed pool of voices, maps note ids to voices and mixes
// the voices into mono blocks. It is not safe for concurrent use: the engine
// calls it only from the render context.
type VoiceManager struct {
	voices     []Voice
	scratch    []float32
	steps      envelopeSteps
	sampleRate float64
	gain       float32
	policy     keysynth.StealPolicy
	steals     uint64
	replaced   uint64
}

// NewVoiceManager allocates the voice pool and the mixing buffers. cfg should
// already be validated.
func NewVoiceManager(cfg *keysynth.Config) *VoiceManager {
	return &VoiceManager{
		voices:  make([]Voice, cfg.MaxPolyphony),
		scratch: make([]float32, cfg.BlockLength),
		steps: envelopeSteps{
			attack:  1 / float64(cfg.Samples(cfg.Envelope.AttackMs)),
			release: 1 / float64(cfg.Samples(cfg.Envelope.ReleaseMs)),
			steal:   1 / float64(cfg.Samples(cfg.Envelope.StealFadeMs)),
		},
		sampleRate: float64(cfg.SampleRate),
		gain:       float32(cfg.Gain),
		policy:     cfg.StealPolicy,
	}
}

// NoteOn starts a note. A note that is already held is left alone; a note
// that is releasing is attacked again from its current level, keeping its
// phase. When no voice is free, one is stolen according to the steal policy:
// it fades out quickly and the new note starts in it once silent. When every
// voice is already fading out for an earlier steal, the pending note of one
// of them is replaced and never sounds; Replaced counts these. Events with a
// non-positive frequency or an unknown waveform are ignored.
func (m *VoiceManager) NoteOn(id int, freq float64, w keysynth.Waveform) {
	if !(freq > 0) || w < 0 || w >= keysynth.NumWaveforms {
		return
	}
	if i := m.find(id); i >= 0 {
		v := &m.voices[i]
		if v.State == Release && !v.stealing {
			v.State = Attack
			v.Age = 0
		}
		return
	}
	n := note{valid: true, id: id, frequency: freq, waveform: w}
	for i := range m.voices {
		if m.voices[i].State == Free {
			m.voices[i].start(n, m.sampleRate)
			return
		}
	}
	v := &m.voices[m.stealCandidate()]
	switch {
	case !v.stealing:
		m.steals++
	case v.pending.valid:
		m.replaced++
	}
	v.steal(n)
}

// NoteOff releases the note. A note still waiting for a stolen voice to fade
// out is dropped without ever sounding. Unknown ids are ignored.
func (m *VoiceManager) NoteOff(id int) {
	i := m.find(id)
	if i < 0 {
		return
	}
	v := &m.voices[i]
	if v.stealing {
		if v.pending.valid && v.pending.id == id {
			v.pending = note{}
		}
		return
	}
	v.release()
}

// ReleaseAll releases every held note and drops pending ones.
func (m *VoiceManager) ReleaseAll() {
	for i := range m.voices {
		m.voices[i].release()
		m.voices[i].pending = note{}
	}
}

// Render overwrites block with the mix of all voices and advances their
// phases and envelopes by len(block) samples. Every voice still in use
// afterwards has its age incremented.
func (m *VoiceManager) Render(block []float32) {
	clear(block)
	for len(block) > 0 {
		n := min(len(block), len(m.scratch))
		for i := range m.voices {
			v := &m.voices[i]
			if v.State == Free {
				continue
			}
			v.render(m.scratch[:n], m.gain, &m.steps, m.sampleRate)
			vek32.Add_Inplace(block[:n], m.scratch[:n])
		}
		block = block[n:]
	}
	for i := range m.voices {
		if m.voices[i].State != Free {
			m.voices[i].Age++
		}
	}
}

// Active returns the number of voices not Free.
func (m *VoiceManager) Active() int {
	ret := 0
	for i := range m.voices {
		if m.voices[i].State != Free {
			ret++
		}
	}
	return ret
}

// NumVoices returns the size of the pool.
func (m *VoiceManager) NumVoices() int {
	return len(m.voices)
}

// Voice returns a copy of the voice in slot i.
func (m *VoiceManager) Voice(i int) Voice {
	return m.voices[i]
}

// Steals returns how many times a voice has been stolen.
func (m *VoiceManager) Steals() uint64 {
	return m.steals
}

// Replaced returns how many pending notes were displaced by a newer note
// before they could start.
func (m *VoiceManager) Replaced() uint64 {
	return m.replaced
}

// find returns the slot of the live voice of the note id, or -1. A held
// voice, a voice releasing normally and a pending note all count; the old
// note of a voice that is being stolen does not.
func (m *VoiceManager) find(id int) int {
	for i := range m.voices {
		v := &m.voices[i]
		if v.State == Free {
			continue
		}
		if v.stealing {
			if v.pending.valid && v.pending.id == id {
				return i
			}
			continue
		}
		if v.NoteID == id {
			return i
		}
	}
	return -1
}

// stealCandidate picks the voice to steal when all are in use. Voices already
// fading out because of an earlier steal are only considered when every
// voice is in that state.
func (m *VoiceManager) stealCandidate() int {
	best := -1
	for pass := 0; pass < 2 && best < 0; pass++ {
		for i := range m.voices {
			v := &m.voices[i]
			if pass == 0 && v.stealing {
				continue
			}
			if best < 0 || m.preferSteal(v, &m.voices[best]) {
				best = i
			}
		}
	}
	return best
}

// preferSteal is true if a should be stolen rather than b.
func (m *VoiceManager) preferSteal(a, b *Voice) bool {
	if m.policy == keysynth.StealReleasedFirst {
		ra, rb := a.State == Release, b.State == Release
		if ra != rb {
			return ra
		}
	}
	if a.Age != b.Age {
		return a.Age > b.Age
	}
	return a.effectiveID() < b.effectiveID()
}

func (v *Voice) effectiveID() int {
	if v.stealing && v.pending.valid {
		return v.pending.id
	}
	return v.NoteID
}
