package synth_test

import (
	"math"
	"testing"

	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/synth"
)

func TestSample(t *testing.T) {
	cases := []struct {
		w     keysynth.Waveform
		phase float64
		want  float32
	}{
		{keysynth.Sine, 0, 0},
		{keysynth.Sine, 0.25, 1},
		{keysynth.Sine, 0.75, -1},
		{keysynth.Square, 0, 1},
		{keysynth.Square, 0.49, 1},
		{keysynth.Square, 0.5, -1},
		{keysynth.Square, 0.99, -1},
		{keysynth.Triangle, 0, -1},
		{keysynth.Triangle, 0.25, 0},
		{keysynth.Triangle, 0.5, 1},
		{keysynth.Triangle, 0.75, 0},
		{keysynth.Waveform(42), 0.25, 0},
	}
	for _, c := range cases {
		got := synth.Sample(c.w, c.phase)
		if math.Abs(float64(got-c.want)) > 1e-6 {
			t.Fatalf("Sample(%v, %v) = %v, expected %v", c.w, c.phase, got, c.want)
		}
	}
}

func TestSampleRange(t *testing.T) {
	for w := keysynth.Waveform(0); w < keysynth.NumWaveforms; w++ {
		for i := 0; i < 1000; i++ {
			s := synth.Sample(w, float64(i)/1000)
			if s < -1 || s > 1 {
				t.Fatalf("Sample(%v, %v) = %v is outside [-1,1]", w, float64(i)/1000, s)
			}
		}
	}
}

func TestWaveformGain(t *testing.T) {
	if g := synth.WaveformGain(keysynth.Square); g != 0.4 {
		t.Fatalf("square gain was %v, expected 0.4", g)
	}
	if g := synth.WaveformGain(keysynth.Sine); g != 1 {
		t.Fatalf("sine gain was %v, expected 1", g)
	}
}
