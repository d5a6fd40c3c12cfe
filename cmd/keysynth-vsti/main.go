//go:build plugin

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/engine"
	"github.com/vsariola/keysynth/gomidi"
	"gitlab.com/gomidi/midi/v2"
	"pipelined.dev/audio/vst2"
)

const (
	pluginID   = 'K'<<24 | 's'<<16 | 'y'<<8 | 'n'
	pluginName = "keysynth"
)

// pluginConfig is the default configuration, overridden by keysynth.yml in
// the user config directory and the environment. The host decides the
// sample rate.
func pluginConfig(ctx context.Context, h vst2.Host) keysynth.Config {
	cfg := keysynth.DefaultConfig()
	if configDir, err := os.UserConfigDir(); err == nil {
		file := filepath.Join(configDir, "keysynth", "keysynth.yml")
		if c, err := keysynth.LoadConfig(file); err == nil {
			cfg = c
		} else if !os.IsNotExist(errors.Cause(err)) {
			logger.Wf(ctx, "ignoring %v, err %v", file, err)
		}
	}
	if lookup, err := keysynth.EnvLookup(); err == nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			logger.Wf(ctx, "ignoring environment, err %v", err)
		}
	}
	if timeInfo := h.GetTimeInfo(0); timeInfo != nil && timeInfo.SampleRate > 0 {
		cfg.SampleRate = int(timeInfo.SampleRate)
	}
	cfg.Channels = 1 // rendered mono, copied to both outputs
	return cfg
}

func init() {
	var (
		version = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		ctx := logger.WithContext(context.Background())
		cfg := pluginConfig(ctx, h)
		synth, err := engine.New(cfg)
		if err != nil {
			logger.Ef(ctx, "invalid configuration, using defaults, err %v", err)
			cfg = keysynth.DefaultConfig()
			cfg.Channels = 1
			synth, _ = engine.New(cfg)
		}
		synth.Start(ctx)
		stream := synth.Stream()
		return vst2.Plugin{
				UniqueID:       pluginID,
				Version:        version,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           pluginName,
				Vendor:         "vsariola/keysynth",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
					left := out.Channel(0)
					right := out.Channel(1)
					stream.ReadAudio(left[:out.Frames])
					copy(right[:out.Frames], left[:out.Frames])
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						v, ok := ev.Event(i).(*vst2.MIDIEvent)
						if !ok {
							continue
						}
						msg := midi.Message(v.Data[:])
						if gomidi.AllNotesOff(msg) {
							synth.ReleaseAll()
							continue
						}
						// events are applied at the start of the next block; DeltaFrames is ignored
						if e, ok := gomidi.Translate(msg, synth.DefaultWaveform()); ok {
							synth.Push(e)
						}
					}
				},
				CloseFunc: func() {
					synth.Stop()
				},
			}
	}
}

func main() {}
