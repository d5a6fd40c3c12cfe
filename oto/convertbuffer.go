package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferTo16BitLE converts float samples into 16-bit signed
// little-endian integers, clamping at ±1. dst is grown if needed and the
// written part is returned, so a caller can keep reusing the same buffer.
func FloatBufferTo16BitLE(src []float32, dst []byte) []byte {
	dst = grow(dst, 2*len(src))
	for i, v := range src {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(uv))
	}
	return dst
}

// FloatBufferTo32BitFloatLE writes float samples as little-endian IEEE 754
// floats, the native format of oto.FormatFloat32LE.
func FloatBufferTo32BitFloatLE(src []float32, dst []byte) []byte {
	dst = grow(dst, 4*len(src))
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
	return dst
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
