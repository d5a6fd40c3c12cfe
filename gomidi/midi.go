// Package gomidi feeds notes from MIDI input devices to the engine, using
// the rtmidi driver of gomidi. The driver needs cgo.
package gomidi

import (
	"context"
	"strings"
	"sync"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"github.com/vsariola/keysynth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type (
	// Sink receives the key events. *engine.Engine implements it.
	Sink interface {
		Push(ev keysynth.KeyEvent) bool
		DefaultWaveform() keysynth.Waveform
		ReleaseAll()
	}

	// RTMIDIContext owns the rtmidi driver and at most one open input.
	RTMIDIContext struct {
		driver *rtmididrv.Driver
		sink   Sink
		ctx    context.Context

		mu        sync.Mutex
		currentIn drivers.In
		stop      func()
	}
)

// NewContext opens the driver. If that fails there is nothing the caller can
// do about it, so the context is still returned, just without any inputs.
func NewContext(ctx context.Context, sink Sink) *RTMIDIContext {
	m := &RTMIDIContext{sink: sink, ctx: ctx}
	var err error
	if m.driver, err = rtmididrv.New(); err != nil {
		logger.Wf(ctx, "no MIDI driver, err %v", err)
		m.driver = nil
	}
	return m
}

// Inputs returns the names of the input devices.
func (m *RTMIDIContext) Inputs() []string {
	if m.driver == nil {
		return nil
	}
	ins, err := m.driver.Ins()
	if err != nil {
		return nil
	}
	ret := make([]string, len(ins))
	for i, in := range ins {
		ret[i] = in.String()
	}
	return ret
}

// TryToOpenBy opens the first input whose name starts with namePrefix, or
// the first input at all if takeFirst is set.
func (m *RTMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if m.driver == nil {
		return errors.New("no MIDI driver available")
	}
	ins, err := m.driver.Ins()
	if err != nil {
		return errors.Wrapf(err, "list MIDI inputs")
	}
	for _, in := range ins {
		if takeFirst || strings.HasPrefix(in.String(), namePrefix) {
			return m.open(in)
		}
	}
	if takeFirst {
		return errors.New("could not find any MIDI input")
	}
	return errors.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

func (m *RTMIDIContext) open(in drivers.In) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentIn == in {
		return nil
	}
	m.closeInput()
	if err := in.Open(); err != nil {
		return errors.Wrapf(err, "open MIDI input %v", in)
	}
	stop, err := midi.ListenTo(in, m.HandleMessage)
	if err != nil {
		in.Close()
		return errors.Wrapf(err, "listen to MIDI input %v", in)
	}
	m.currentIn, m.stop = in, stop
	logger.Tf(m.ctx, "MIDI input %v open", in)
	return nil
}

// HandleMessage is called by the driver goroutine for every incoming
// message. Events never block; when the engine queue is full, the oldest
// event is dropped there.
func (m *RTMIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	if AllNotesOff(msg) {
		m.sink.ReleaseAll()
		return
	}
	if ev, ok := Translate(msg, m.sink.DefaultWaveform()); ok {
		m.sink.Push(ev)
	}
}

func (m *RTMIDIContext) HasDeviceOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentIn != nil && m.currentIn.IsOpen()
}

func (m *RTMIDIContext) Close() error {
	if m.driver == nil {
		return nil
	}
	m.mu.Lock()
	m.closeInput()
	m.mu.Unlock()
	return m.driver.Close()
}

func (m *RTMIDIContext) closeInput() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.currentIn != nil && m.currentIn.IsOpen() {
		m.currentIn.Close()
	}
	m.currentIn = nil
}
