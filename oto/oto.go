package oto

import (
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/vsariola/keysynth"
)

type (
	// Context is a keysynth.AudioContext playing through the default audio
	// device of the operating system.
	Context struct {
		ctx      *oto.Context
		pcm16    bool
		channels int
	}

	// Options for NewContext. BufferSize is the latency of the device
	// buffer; zero lets oto choose.
	Options struct {
		SampleRate int
		Channels   int
		BufferSize time.Duration
		PCM16      bool // use 16-bit signed integers instead of float32 samples
	}

	output struct {
		player *oto.Player
		reader *reader
	}

	// reader is the io.Reader oto pulls bytes from. It asks the source for
	// exactly as many samples as oto wants bytes, so it never buffers audio
	// of its own.
	reader struct {
		source  keysynth.AudioSource
		pcm16   bool
		samples []float32
		done    chan struct{}
		once    sync.Once
	}
)

// NewContext opens the audio device and waits until it is ready. Only one
// context can exist per process; this is a limitation of oto.
func NewContext(o Options) (*Context, error) {
	format := oto.FormatFloat32LE
	if o.PCM16 {
		format = oto.FormatSignedInt16LE
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.SampleRate,
		ChannelCount: o.Channels,
		Format:       format,
		BufferSize:   o.BufferSize,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create oto context, rate=%v, channels=%v", o.SampleRate, o.Channels)
	}
	<-ready
	return &Context{ctx: ctx, pcm16: o.PCM16, channels: o.Channels}, nil
}

// Play starts pulling audio from source. Playback continues until the
// returned CloserWaiter is closed or the source returns an error.
func (c *Context) Play(source keysynth.AudioSource) keysynth.CloserWaiter {
	r := &reader{source: source, pcm16: c.pcm16, done: make(chan struct{})}
	p := c.ctx.NewPlayer(r)
	p.Play()
	return &output{player: p, reader: r}
}

// Close suspends the device; oto contexts cannot be released.
func (c *Context) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return errors.Wrapf(err, "cannot suspend oto context")
	}
	return nil
}

func (r *reader) Read(p []byte) (int, error) {
	size := 4
	if r.pcm16 {
		size = 2
	}
	n := len(p) / size
	if cap(r.samples) < n {
		r.samples = make([]float32, n)
	}
	samples := r.samples[:n]
	err := r.source.ReadAudio(samples)
	if r.pcm16 {
		FloatBufferTo16BitLE(samples, p)
	} else {
		FloatBufferTo32BitFloatLE(samples, p)
	}
	if err != nil {
		r.finish()
		return n * size, io.EOF
	}
	return n * size, nil
}

func (r *reader) finish() {
	r.once.Do(func() { close(r.done) })
}

func (o *output) Close() error {
	err := o.player.Close()
	o.reader.finish()
	if err != nil {
		return errors.Wrapf(err, "cannot close oto player")
	}
	return nil
}

// Wait blocks until the player has been closed or the source has ended.
func (o *output) Wait() {
	<-o.reader.done
}
