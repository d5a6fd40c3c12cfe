package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ossrs/go-oryx-lib/errors"
	"github.com/ossrs/go-oryx-lib/logger"
	"github.com/vsariola/keysynth"
	"github.com/vsariola/keysynth/cmd"
	"github.com/vsariola/keysynth/engine"
	"github.com/vsariola/keysynth/keyboard"
	"github.com/vsariola/keysynth/oto"
	"github.com/vsariola/keysynth/version"
)

var (
	envFile     = flag.String("env", ".env", "Read environment overrides also from `file`; missing files are skipped.")
	midiInput   = flag.String("midi-input", "", "Connect MIDI input to matching device name prefix.")
	firstMidi   = flag.Bool("midi", false, "Connect the first MIDI input found.")
	pcm16       = flag.Bool("pcm16", false, "Send 16-bit signed PCM to the audio device instead of float32.")
	latency     = flag.Duration("buffer", 0, "Audio device buffer length, e.g. 20ms. Zero lets the device decide.")
	printConfig = flag.Bool("print-config", false, "Print the configuration and exit.")
	help        = flag.Bool("h", false, "Show help.")
	versionFlag = flag.Bool("v", false, "Print version.")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.Banner("keysynth"))
		os.Exit(0)
	}
	if *help || flag.NArg() > 1 {
		flag.Usage()
		os.Exit(0)
	}
	ctx := logger.WithContext(context.Background())
	if err := run(ctx, flag.Arg(0)); err != nil {
		logger.Ef(ctx, "keysynth failed, err %+v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	if err := cfg.WriteReport(os.Stderr, "keysynth", version.VersionOrHash); err != nil {
		return err
	}
	if *printConfig {
		return nil
	}
	synth, err := engine.New(cfg)
	if err != nil {
		return err
	}
	synth.Start(ctx)
	defer synth.Stop()

	audioContext, err := oto.NewContext(oto.Options{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		BufferSize: *latency,
		PCM16:      *pcm16,
	})
	if err != nil {
		return errors.Wrapf(err, "could not acquire oto AudioContext")
	}
	defer audioContext.Close()
	playWaiter := audioContext.Play(synth.Stream())
	defer playWaiter.Close()

	midi := cmd.NewMIDIInput(ctx, synth)
	defer midi.Close()
	if isFlagPassed("midi-input") || *firstMidi {
		if err := midi.TryToOpenBy(*midiInput, *firstMidi); err != nil {
			logger.Ef(ctx, "failed to open MIDI input %q, err %v", *midiInput, err)
		}
	}

	fmt.Fprintln(os.Stderr, keyboard.Help())
	restore, err := keyboard.MakeRaw(os.Stdin)
	if err != nil {
		logger.Wf(ctx, "keys are read line by line, err %v", err)
	} else {
		defer restore()
	}
	kb := keyboard.New(synth, os.Stderr)
	if err := kb.Run(os.Stdin); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)
	// let the release envelopes finish before the device goes quiet
	synth.ReleaseAll()
	time.Sleep(time.Duration(cfg.Envelope.ReleaseMs*float64(time.Millisecond)) + 2*cfg.BlockPeriod())
	return nil
}

func loadConfig(filename string) (keysynth.Config, error) {
	cfg := keysynth.DefaultConfig()
	if filename != "" {
		var err error
		if cfg, err = keysynth.LoadConfig(filename); err != nil {
			return cfg, err
		}
	}
	lookup, err := keysynth.EnvLookup(*envFile)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Sine, square and triangle synth played from the computer keyboard or MIDI.\nUsage: %s [flags] [config.yml]\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nKeys: %s\n", keyboard.Help())
}
