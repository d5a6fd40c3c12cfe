package effects

// delayLine is a fixed size circular buffer. Reads happen before the write
// of the current sample, so a delay of 1 returns the previous sample and the
// longest possible delay is len(buf).
type delayLine struct {
	buf []float32
	pos int
}

func newDelayLine(length int) delayLine {
	return delayLine{buf: make([]float32, max(length, 2))}
}

func (d *delayLine) write(x float32) {
	d.buf[d.pos] = x
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

// read returns the sample written delay samples ago, 1 <= delay <= len(buf).
func (d *delayLine) read(delay int) float32 {
	i := d.pos - delay
	if i < 0 {
		i += len(d.buf)
	}
	return d.buf[i]
}

// readFrac reads a fractional delay with linear interpolation. delay is
// clamped into [1, len(buf)-1].
func (d *delayLine) readFrac(delay float64) float32 {
	delay = min(max(delay, 1), float64(len(d.buf)-1))
	p := float64(d.pos) - delay
	if p < 0 {
		p += float64(len(d.buf))
	}
	i := int(p)
	frac := float32(p - float64(i))
	j := i + 1
	if j >= len(d.buf) {
		j = 0
	}
	return d.buf[i]*(1-frac) + d.buf[j]*frac
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
