// Package config loads instance settings from TOML files.
//
// A file describes the spectrogram domain, the image and the interaction
// tuning. Every section is optional; missing values keep their defaults:
//
//	[domain]
//	time_min = 0
//	time_max = 60
//	freq_min = 0
//	freq_max = 100
//
//	[image]
//	source = "spectrogram.png"
//	width  = 800
//	height = 400
//
//	[display]
//	mode  = "doppler"
//	style = "contrast"
//
//	[interaction]
//	sound_speed = 1480
//	speed_unit  = "mps"
//
// Domain problems are not load errors: the instance starts degraded and
// shows the problem instead. Everything else is validated by [Config.Validate].
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay/styles"
	"github.com/matzehuels/gramframe/pkg/state"
	"github.com/matzehuels/gramframe/pkg/units"
)

// Config is the decoded settings file.
type Config struct {
	Domain      coords.Domain `toml:"domain"`
	Image       Image         `toml:"image"`
	Display     Display       `toml:"display"`
	Interaction mode.Options  `toml:"interaction"`
}

type Image struct {
	Source string  `toml:"source"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Display struct {
	Mode    state.Mode      `toml:"mode"`
	Style   string          `toml:"style"`
	Margins *coords.Margins `toml:"margins"`
	Width   float64         `toml:"width"`  // container width in pixels, 0 = natural
	Height  float64         `toml:"height"` // container height in pixels
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Domain:      coords.Domain{TimeMin: 0, TimeMax: 60, FreqMin: 0, FreqMax: 100},
		Image:       Image{Width: 800, Height: 400},
		Display:     Display{Mode: state.ModeAnalysis, Style: "simple"},
		Interaction: mode.DefaultOptions(),
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML on top of [Default] and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks everything but the domain.
func (c Config) Validate() error {
	if err := errors.ValidateImageSize(c.Image.Width, c.Image.Height); err != nil {
		return err
	}
	if !c.Display.Mode.Valid() {
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want analysis, harmonics or doppler)", c.Display.Mode)
	}
	if _, ok := styles.ByName(c.Display.Style); !ok {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (want %s)", c.Display.Style, strings.Join(styles.Names(), ", "))
	}

	o := c.Interaction
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"marker_hit_radius", o.MarkerHitRadius},
		{"harmonic_hit_radius", o.HarmonicHitRadius},
		{"doppler_hit_radius", o.DopplerHitRadius},
		{"nudge_step", o.NudgeStep},
		{"nudge_step_shift", o.NudgeStepShift},
		{"line_height", o.LineHeight},
		{"sound_speed", o.SoundSpeed},
	} {
		if err := errors.ValidatePositive(v.name, v.val); err != nil {
			return err
		}
	}
	if o.LineHeight > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "line_height is a fraction of the image height (got %g)", o.LineHeight)
	}
	if !units.IsValid(o.SpeedUnit) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown speed_unit %q (want %s)", o.SpeedUnit, units.GetValidUnitsString())
	}
	if len(o.Palette) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "palette must not be empty")
	}
	for _, col := range o.Palette {
		if err := errors.ValidateColor(col); err != nil {
			return err
		}
	}
	return nil
}

// Style returns the configured overlay style.
func (c Config) Style() styles.Style {
	s, ok := styles.ByName(c.Display.Style)
	if !ok {
		return styles.Simple{}
	}
	return s
}

// FrameImage returns the image description for [frame.New].
func (c Config) FrameImage() frame.Image {
	return frame.Image{Source: c.Image.Source, Width: c.Image.Width, Height: c.Image.Height}
}

// FrameOptions returns the [frame.New] options the file specifies.
func (c Config) FrameOptions() []frame.Option {
	opts := []frame.Option{
		frame.WithModeOptions(c.Interaction),
		frame.WithInitialMode(c.Display.Mode),
	}
	if c.Display.Margins != nil {
		opts = append(opts, frame.WithMargins(*c.Display.Margins))
	}
	if c.Display.Width > 0 {
		opts = append(opts, frame.WithBounds(coords.Box{Width: c.Display.Width, Height: c.Display.Height}))
	}
	return opts
}
