package engine

// Stream adapts an Engine to readers that ask for any number of samples at a
// time, like audio devices and plugin hosts. It keeps one rendered block and
// hands it out piece by piece. A Stream is not safe for concurrent use.
type Stream struct {
	engine *Engine
	buf    []float32
	pos    int
}

func (e *Engine) Stream() *Stream {
	n := e.BlockSize()
	return &Stream{engine: e, buf: make([]float32, n), pos: n}
}

// ReadAudio fills buffer with interleaved samples, rendering new blocks as
// needed. After the engine is stopped it fills the rest of the buffer with
// silence and returns ErrStopped.
func (s *Stream) ReadAudio(buffer []float32) error {
	for len(buffer) > 0 {
		if s.pos == len(s.buf) {
			if err := s.engine.Process(s.buf); err != nil {
				clear(buffer)
				return err
			}
			s.pos = 0
		}
		n := copy(buffer, s.buf[s.pos:])
		s.pos += n
		buffer = buffer[n:]
	}
	return nil
}
