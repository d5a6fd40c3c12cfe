package keysynth

import "io"

type (
	// AudioSource is anything that can fill interleaved float32 buffers with
	// audio. The engine's Stream implements it. ReadAudio is called from the
	// real-time context of the audio device, so implementations must not
	// block or allocate.
	AudioSource interface {
		ReadAudio(buffer []float32) error
	}

	// AudioContext is the audio device collaborator: it pulls audio from a
	// source until the returned CloserWaiter is closed.
	AudioContext interface {
		Play(source AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is returned by AudioContext.Play. Close stops playback and
	// releases the device player; Wait blocks until playback has stopped.
	CloserWaiter interface {
		io.Closer
		Wait()
	}
)
