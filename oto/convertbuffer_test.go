package oto_test

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/vsariola/keysynth/oto"
)

func TestFloatBufferTo16BitLE(t *testing.T) {
	got := oto.FloatBufferTo16BitLE([]float32{0, 1, -1, 2, -2, 0.5}, nil)
	expected := []byte{0, 0, 0xff, 0x7f, 0x01, 0x80, 0xff, 0x7f, 0x01, 0x80, 0xff, 0x3f}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v, expected %v", got, expected)
	}
}

func TestFloatBufferTo32BitFloatLE(t *testing.T) {
	src := []float32{0, 1, -0.25, 0.123}
	dst := make([]byte, 0, 64)
	got := oto.FloatBufferTo32BitFloatLE(src, dst)
	if len(got) != 16 {
		t.Fatalf("got %v bytes, expected 16", len(got))
	}
	if &got[0] != &dst[:1][0] {
		t.Fatalf("the destination buffer was not reused")
	}
	for i, v := range src {
		if f := math.Float32frombits(binary.LittleEndian.Uint32(got[4*i:])); f != v {
			t.Fatalf("sample %v decoded as %v, expected %v", i, f, v)
		}
	}
}
