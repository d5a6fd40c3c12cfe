package keysynth

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ossrs/go-oryx-lib/errors"
	"gopkg.in/yaml.v3"
)

type (
	// Config is everything needed to construct an engine. It is loaded by
	// the configuration collaborator (cmd) from a .yml or .json file, with
	// environment overrides, and validated once in engine.New.
	Config struct {
		SampleRate      int            `yaml:"sample_rate" json:"sample_rate"`
		BlockLength     int            `yaml:"block_length" json:"block_length"`
		Channels        int            `yaml:"channels" json:"channels"`
		MaxPolyphony    int            `yaml:"max_polyphony" json:"max_polyphony"`
		WaveformDefault Waveform       `yaml:"waveform_default" json:"waveform_default"`
		StealPolicy     StealPolicy    `yaml:"steal_policy" json:"steal_policy"`
		Gain            float64        `yaml:"gain" json:"gain"`             // per voice, before the effects
		QueueSize       int            `yaml:"queue_size" json:"queue_size"` // pending key events between two blocks
		Envelope        EnvelopeParams `yaml:"envelope" json:"envelope"`
		Effects         EffectParams   `yaml:"effect_params" json:"effect_params"`
	}

	EnvelopeParams struct {
		AttackMs    float64 `yaml:"attack_ms" json:"attack_ms"`
		ReleaseMs   float64 `yaml:"release_ms" json:"release_ms"`
		StealFadeMs float64 `yaml:"steal_fade_ms" json:"steal_fade_ms"`
	}

	EffectParams struct {
		Order  []EffectKind `yaml:"order,flow" json:"order"`
		Clip   ClipMode     `yaml:"clip" json:"clip"`
		Phaser PhaserParams `yaml:"phaser" json:"phaser"`
		Echo   EchoParams   `yaml:"echo" json:"echo"`
		Chorus ChorusParams `yaml:"chorus" json:"chorus"`
	}

	PhaserParams struct {
		Enabled  bool    `yaml:"enabled" json:"enabled"`
		Rate     float64 `yaml:"rate" json:"rate"`   // LFO rate in Hz
		Depth    float64 `yaml:"depth" json:"depth"` // sweep width, 0..1
		Stages   int     `yaml:"stages" json:"stages"`
		Feedback float64 `yaml:"feedback" json:"feedback"`
		Mix      float64 `yaml:"mix" json:"mix"`
	}

	EchoParams struct {
		Enabled  bool    `yaml:"enabled" json:"enabled"`
		DelayMs  float64 `yaml:"delay_ms" json:"delay_ms"`
		Feedback float64 `yaml:"feedback" json:"feedback"`
	}

	ChorusParams struct {
		Enabled bool    `yaml:"enabled" json:"enabled"`
		Rate    float64 `yaml:"rate" json:"rate"`   // LFO rate in Hz
		Depth   float64 `yaml:"depth" json:"depth"` // delay modulation in ms
		DelayMs float64 `yaml:"delay_ms" json:"delay_ms"`
		Lines   int     `yaml:"lines" json:"lines"`
		Dry     float64 `yaml:"dry" json:"dry"`
		Wet     float64 `yaml:"wet" json:"wet"`
	}

	// StealPolicy selects which voice is reclaimed when a note-on arrives
	// and every voice of the pool is in use.
	StealPolicy int

	// ClipMode selects the final stage of the effect chain.
	ClipMode int

	// ConfigError is returned when a configuration value is out of range.
	// The engine refuses to start with an invalid configuration.
	ConfigError struct {
		Field  string
		Reason string
	}
)

const (
	StealOldest StealPolicy = iota
	StealReleasedFirst
)

const (
	ClipSoft ClipMode = iota
	ClipHard
)

const (
	MaxPhaserStages = 12
	MaxChorusLines  = 4
)

var stealPolicyNames = []string{"oldest", "released-first"}

var clipModeNames = []string{"soft", "hard"}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// DefaultConfig returns the configuration used when no file is given. All
// effects start switched off; the keyboard or the config file turns them on.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		BlockLength:     512,
		Channels:        2,
		MaxPolyphony:    16,
		WaveformDefault: Sine,
		StealPolicy:     StealOldest,
		Gain:            0.25,
		QueueSize:       256,
		Envelope: EnvelopeParams{
			AttackMs:    5,
			ReleaseMs:   10,
			StealFadeMs: 5,
		},
		Effects: EffectParams{
			Order:  []EffectKind{Phaser, Echo, Chorus},
			Clip:   ClipSoft,
			Phaser: PhaserParams{Rate: 0.5, Depth: 0.7, Stages: 4, Feedback: 0.3, Mix: 0.5},
			Echo:   EchoParams{DelayMs: 300, Feedback: 0.35},
			Chorus: ChorusParams{Rate: 0.8, Depth: 2, DelayMs: 20, Lines: 3, Dry: 0.7, Wet: 0.5},
		},
	}
}

// Validate checks that all values are within their ranges. The returned
// error, if any, is a *ConfigError naming the first offending field.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return &ConfigError{"sample_rate", "must be positive"}
	case c.BlockLength <= 0:
		return &ConfigError{"block_length", "must be positive"}
	case c.Channels != 1 && c.Channels != 2:
		return &ConfigError{"channels", "must be 1 or 2"}
	case c.MaxPolyphony <= 0:
		return &ConfigError{"max_polyphony", "must be positive"}
	case c.WaveformDefault < 0 || c.WaveformDefault >= NumWaveforms:
		return &ConfigError{"waveform_default", "unknown waveform"}
	case c.StealPolicy < 0 || int(c.StealPolicy) >= len(stealPolicyNames):
		return &ConfigError{"steal_policy", "unknown policy"}
	case !finite(c.Gain) || c.Gain < 0:
		return &ConfigError{"gain", "must be a non-negative number"}
	case c.QueueSize <= 0:
		return &ConfigError{"queue_size", "must be positive"}
	case !(c.Envelope.AttackMs > 0):
		return &ConfigError{"envelope.attack_ms", "must be positive"}
	case !(c.Envelope.ReleaseMs > 0):
		return &ConfigError{"envelope.release_ms", "must be positive"}
	case !(c.Envelope.StealFadeMs > 0):
		return &ConfigError{"envelope.steal_fade_ms", "must be positive"}
	}
	return c.Effects.validate()
}

func (e *EffectParams) validate() error {
	var seen [NumEffectKinds]bool
	for _, k := range e.Order {
		if k < 0 || k >= NumEffectKinds {
			return &ConfigError{"effect_params.order", "contains an unknown effect"}
		}
		if seen[k] {
			return &ConfigError{"effect_params.order", fmt.Sprintf("lists %v twice", k)}
		}
		seen[k] = true
	}
	p, ec, ch := e.Phaser, e.Echo, e.Chorus
	switch {
	case e.Clip < 0 || int(e.Clip) >= len(clipModeNames):
		return &ConfigError{"effect_params.clip", "unknown clip mode"}
	case !(p.Rate > 0):
		return &ConfigError{"effect_params.phaser.rate", "must be positive"}
	case !(p.Depth >= 0 && p.Depth <= 1):
		return &ConfigError{"effect_params.phaser.depth", "must be within [0,1]"}
	case p.Stages < 1 || p.Stages > MaxPhaserStages:
		return &ConfigError{"effect_params.phaser.stages", fmt.Sprintf("must be within [1,%d]", MaxPhaserStages)}
	case !(math.Abs(p.Feedback) < 1):
		return &ConfigError{"effect_params.phaser.feedback", "must be within (-1,1)"}
	case !(p.Mix >= 0 && p.Mix <= 1):
		return &ConfigError{"effect_params.phaser.mix", "must be within [0,1]"}
	case !(ec.DelayMs > 0):
		return &ConfigError{"effect_params.echo.delay_ms", "must be positive"}
	case !(ec.Feedback >= 0 && ec.Feedback < 1):
		return &ConfigError{"effect_params.echo.feedback", "must be within [0,1)"}
	case !(ch.Rate > 0):
		return &ConfigError{"effect_params.chorus.rate", "must be positive"}
	case !(ch.Depth >= 0):
		return &ConfigError{"effect_params.chorus.depth", "must be non-negative"}
	case !(ch.DelayMs > ch.Depth):
		return &ConfigError{"effect_params.chorus.delay_ms", "must be larger than depth"}
	case ch.Lines < 1 || ch.Lines > MaxChorusLines:
		return &ConfigError{"effect_params.chorus.lines", fmt.Sprintf("must be within [1,%d]", MaxChorusLines)}
	case !(ch.Dry >= 0) || !(ch.Wet >= 0):
		return &ConfigError{"effect_params.chorus.dry/wet", "must be non-negative"}
	}
	return nil
}

// Samples converts milliseconds into a whole number of samples, at least 1.
func (c *Config) Samples(ms float64) int {
	return max(1, int(math.Round(ms*float64(c.SampleRate)/1000)))
}

// BlockPeriod is the wall-clock time one block lasts; the engine has to
// render a block faster than this.
func (c *Config) BlockPeriod() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.BlockLength) * time.Second / time.Duration(c.SampleRate)
}

// EffectEnabled reports if the effect is switched on in the configuration.
func (e *EffectParams) EffectEnabled(k EffectKind) bool {
	switch k {
	case Phaser:
		return e.Phaser.Enabled
	case Echo:
		return e.Echo.Enabled
	case Chorus:
		return e.Chorus.Enabled
	}
	return false
}

// LoadConfig reads a configuration from a .json or .yml file. Values missing
// from the file keep their defaults. The result is not validated.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %v", filename)
	}
	if err := ParseConfig(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %v", filename)
	}
	return cfg, nil
}

// ParseConfig decodes b, either .json or .yml, on top of the values already
// in cfg.
func ParseConfig(b []byte, cfg *Config) error {
	orig := *cfg
	if errJSON := json.Unmarshal(b, cfg); errJSON != nil {
		*cfg = orig
		if errYaml := yaml.Unmarshal(b, cfg); errYaml != nil {
			return errors.Errorf("the config could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	return nil
}

// EnvLookup returns a lookup function that consults the process environment
// first and the given dotenv files second. Files that do not exist are
// skipped.
func EnvLookup(files ...string) (func(string) (string, bool), error) {
	vals := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "read %v", f)
		}
		for k, v := range m {
			if _, ok := vals[k]; !ok {
				vals[k] = v
			}
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vals[key]
		return v, ok
	}, nil
}

// ApplyEnv overrides the most commonly tuned values from environment
// variables: KEYSYNTH_SAMPLE_RATE, KEYSYNTH_BLOCK_LENGTH,
// KEYSYNTH_MAX_POLYPHONY and KEYSYNTH_WAVEFORM.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"KEYSYNTH_SAMPLE_RATE", &c.SampleRate},
		{"KEYSYNTH_BLOCK_LENGTH", &c.BlockLength},
		{"KEYSYNTH_MAX_POLYPHONY", &c.MaxPolyphony},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "parse %v", i.key)
		}
		*i.dst = n
	}
	if v, ok := lookup("KEYSYNTH_WAVEFORM"); ok && strings.TrimSpace(v) != "" {
		w, err := ParseWaveform(v)
		if err != nil {
			return errors.Wrapf(err, "parse KEYSYNTH_WAVEFORM")
		}
		c.WaveformDefault = w
	}
	return nil
}

func (s StealPolicy) String() string {
	if s < 0 || int(s) >= len(stealPolicyNames) {
		return fmt.Sprintf("StealPolicy(%d)", int(s))
	}
	return stealPolicyNames[s]
}

func (s StealPolicy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stealPolicyNames) {
		return nil, fmt.Errorf("unknown steal policy %d", int(s))
	}
	return []byte(stealPolicyNames[s]), nil
}

func (s *StealPolicy) UnmarshalText(text []byte) error {
	i, err := lookupName(stealPolicyNames, string(text), "steal policy")
	if err != nil {
		return err
	}
	*s = StealPolicy(i)
	return nil
}

func (m ClipMode) String() string {
	if m < 0 || int(m) >= len(clipModeNames) {
		return fmt.Sprintf("ClipMode(%d)", int(m))
	}
	return clipModeNames[m]
}

func (m ClipMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(clipModeNames) {
		return nil, fmt.Errorf("unknown clip mode %d", int(m))
	}
	return []byte(clipModeNames[m]), nil
}

func (m *ClipMode) UnmarshalText(text []byte) error {
	i, err := lookupName(clipModeNames, string(text), "clip mode")
	if err != nil {
		return err
	}
	*m = ClipMode(i)
	return nil
}

func lookupName(names []string, s, what string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
