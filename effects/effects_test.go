package effects_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/effects"
)

func sine(n int, freq, sampleRate float64) []float32 {
	ret := make([]float32, n)
	for i := range ret {
		ret[i] = float32(0.8 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return ret
}

func TestEchoImpulseDecays(t *testing.T) {
	echo := effects.NewEcho(keysynth.EchoParams{DelayMs: 10, Feedback: 0.5}, 1000)
	if echo.DelaySamples() != 10 {
		t.Fatalf("delay was %v samples, expected 10", echo.DelaySamples())
	}
	block := make([]float32, 100)
	block[0] = 1
	echo.Process(block)
	for i, v := range block {
		expected := float32(0)
		if i%10 == 0 {
			expected = float32(math.Pow(0.5, float64(i/10)))
		}
		if v != expected {
			t.Fatalf("sample %v was %v, expected %v", i, v, expected)
		}
	}
	for b := 0; b < 100; b++ {
		clear(block)
		echo.Process(block)
		for _, v := range block {
			if math.IsNaN(float64(v)) || math.Abs(float64(v)) > 1 {
				t.Fatalf("echo output %v is not bounded", v)
			}
		}
	}
	if math.Abs(float64(block[0])) > 1e-30 {
		t.Fatalf("echo did not decay: %v", block[0])
	}
}

func TestBypassIsClipOnly(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	cfg.Effects.Clip = keysynth.ClipHard
	chain := effects.NewChain(&cfg)
	block := []float32{-3, -1, -0.5, 0, 0.25, 1, 1.5}
	chain.Process(block)
	expected := []float32{-1, -1, -0.5, 0, 0.25, 1, 1}
	if !reflect.DeepEqual(block, expected) {
		t.Fatalf("bypassed chain produced %v, expected %v", block, expected)
	}
	cfg.Effects.Clip = keysynth.ClipSoft
	chain = effects.NewChain(&cfg)
	block = []float32{-0.8, -0.3, 0, 0.3, 0.8}
	expected = append([]float32(nil), block...)
	chain.Process(block)
	if !reflect.DeepEqual(block, expected) {
		t.Fatalf("soft clip changed values inside the knee: %v", block)
	}
	// above the knee the soft clipper bends the raw mix towards ±1
	block = []float32{-3, -0.9, 0.9, 1, 3}
	chain.Process(block)
	for i, x := range []float64{-3, -0.9, 0.9, 1, 3} {
		s := math.Copysign(1, x)
		expected := s * (0.8 + 0.2*math.Tanh((math.Abs(x)-0.8)/0.2))
		if math.Abs(float64(block[i])-expected) > 1e-6 {
			t.Fatalf("soft clip of %v was %v, expected %v", x, block[i], expected)
		}
		if math.Abs(float64(block[i])) > 1 || math.Abs(float64(block[i])) >= math.Abs(x) {
			t.Fatalf("soft clip of %v was %v, expected a smaller value inside [-1,1]", x, block[i])
		}
	}
}

func TestSoftClipIsBoundedAndMonotonic(t *testing.T) {
	clip := effects.Clipper{Mode: keysynth.ClipSoft}
	block := make([]float32, 2001)
	for i := range block {
		block[i] = float32(i-1000) / 100
	}
	clip.Process(block)
	for i, v := range block {
		if v < -1 || v > 1 {
			t.Fatalf("soft clip output %v outside [-1,1]", v)
		}
		if i > 0 && v < block[i-1] {
			t.Fatalf("soft clip is not monotonic at %v", i)
		}
	}
}

func TestEffectsAreContinuousAcrossBlocks(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	p := cfg.Effects
	constructors := map[string]func() effects.Effect{
		"phaser": func() effects.Effect { return effects.NewPhaser(p.Phaser, cfg.SampleRate) },
		"echo":   func() effects.Effect { return effects.NewEcho(keysynth.EchoParams{DelayMs: 5, Feedback: 0.6}, cfg.SampleRate) },
		"chorus": func() effects.Effect { return effects.NewChorus(p.Chorus, cfg.SampleRate) },
	}
	for name, c := range constructors {
		whole := sine(3000, 330, float64(cfg.SampleRate))
		split := append([]float32(nil), whole...)
		c().Process(whole)
		e := c()
		e.Process(split[:512])
		e.Process(split[512:700])
		e.Process(split[700:])
		if !reflect.DeepEqual(whole, split) {
			t.Fatalf("%v: processing in one block and in several blocks produced different samples", name)
		}
	}
}

func TestChorusIsBounded(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	chorus := effects.NewChorus(cfg.Effects.Chorus, cfg.SampleRate)
	block := sine(44100, 220, float64(cfg.SampleRate))
	chorus.Process(block)
	limit := 0.8 * (cfg.Effects.Chorus.Dry + cfg.Effects.Chorus.Wet) * 1.0001
	for _, v := range block {
		if math.Abs(float64(v)) > limit {
			t.Fatalf("chorus output %v exceeds %v", v, limit)
		}
	}
}

func TestPhaserChangesSignal(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	phaser := effects.NewPhaser(cfg.Effects.Phaser, cfg.SampleRate)
	in := sine(4096, 1000, float64(cfg.SampleRate))
	out := append([]float32(nil), in...)
	phaser.Process(out)
	if reflect.DeepEqual(in, out) {
		t.Fatalf("phaser did not change the signal")
	}
	for _, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("phaser produced %v", v)
		}
	}
	phaser.Reset()
	again := append([]float32(nil), in...)
	phaser.Process(again)
	if !reflect.DeepEqual(out, again) {
		t.Fatalf("phaser did not return to its initial state on Reset")
	}
}

func TestReenabledEffectStartsClean(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	cfg.SampleRate = 1000
	cfg.Effects.Clip = keysynth.ClipHard
	cfg.Effects.Echo = keysynth.EchoParams{Enabled: true, DelayMs: 10, Feedback: 0.5}
	chain := effects.NewChain(&cfg)
	if !chain.Enabled(keysynth.Echo) || chain.Enabled(keysynth.Phaser) {
		t.Fatalf("initial enabled flags do not follow the configuration")
	}
	fade := cfg.Samples(effects.ToggleFadeMs)
	block := make([]float32, 64)
	block[0] = 1
	chain.Process(block)
	chain.SetEnabled(keysynth.Echo, false)
	chain.SetEnabled(keysynth.Echo, true)
	// the old tail fades out first
	clear(block)
	chain.Process(block)
	if block[6] <= 0 || block[6] >= 1.0/128 {
		t.Fatalf("sample 6 was %v, expected the old echo faded, not cut or kept", block[6])
	}
	for i := fade; i < len(block); i++ {
		if block[i] != 0 {
			t.Fatalf("sample %v was %v: the echo replayed old content after being re-enabled", i, block[i])
		}
	}
	// then the echo starts again from silence
	clear(block)
	block[0] = 1
	chain.Process(block)
	if block[0] != 1 || block[10] != 0.5 || block[20] != 0.25 {
		t.Fatalf("re-enabled echo produced %v, %v, %v at its taps, expected 1, 0.5, 0.25", block[0], block[10], block[20])
	}
	for i, v := range block {
		if i%10 != 0 && v != 0 {
			t.Fatalf("sample %v was %v: the echo replayed old content after being re-enabled", i, v)
		}
	}
}

func TestToggleCrossfades(t *testing.T) {
	cfg := keysynth.DefaultConfig()
	cfg.SampleRate = 1000
	cfg.Effects.Clip = keysynth.ClipHard
	cfg.Effects.Echo = keysynth.EchoParams{Enabled: true, DelayMs: 10, Feedback: 0.5}
	chain := effects.NewChain(&cfg)
	fade := cfg.Samples(effects.ToggleFadeMs)
	const dc = 0.2
	block := make([]float32, 64)
	for b := 0; b < 40; b++ {
		for i := range block {
			block[i] = dc
		}
		chain.Process(block)
	}
	if math.Abs(float64(block[63])-2*dc) > 1e-6 {
		t.Fatalf("echo of a constant settled at %v, expected %v", block[63], 2*dc)
	}
	prev := block[63]
	chain.SetEnabled(keysynth.Echo, false)
	for i := range block {
		block[i] = dc
	}
	chain.Process(block)
	bound := dc/float64(fade)*1.01 + 1e-6
	for i, v := range block {
		if d := math.Abs(float64(v - prev)); d > bound {
			t.Fatalf("output jumped by %v at sample %v, expected at most %v", d, i, bound)
		}
		prev = v
	}
	for i := fade; i < len(block); i++ {
		if block[i] != dc {
			t.Fatalf("sample %v was %v after the fade, expected the dry input %v", i, block[i], dc)
		}
	}
}

func TestLFO(t *testing.T) {
	lfo := effects.NewLFO(1, 4, 0.25)
	expected := []float64{1, 0, -1, 0, 1}
	for i, e := range expected {
		if v := lfo.Next(); math.Abs(v-e) > 1e-9 {
			t.Fatalf("LFO value %v was %v, expected %v", i, v, e)
		}
	}
	lfo.Reset()
	if v := lfo.Next(); math.Abs(v-1) > 1e-9 {
		t.Fatalf("LFO did not reset to its starting phase, got %v", v)
	}
}
