package mode

import (
	"slices"

	"github.com/matzehuels/gramframe/pkg/units"
)

// Options tune the interaction thresholds shared by all modes.
type Options struct {
	MarkerHitRadius   float64  `toml:"marker_hit_radius"`   // px; analysis markers
	HarmonicHitRadius float64  `toml:"harmonic_hit_radius"` // px; distance to a harmonic line
	DopplerHitRadius  float64  `toml:"doppler_hit_radius"`  // px; Doppler fit markers
	NudgeStep         float64  `toml:"nudge_step"`          // px per arrow key
	NudgeStepShift    float64  `toml:"nudge_step_shift"`    // px per Shift+arrow
	LineHeight        float64  `toml:"line_height"`         // harmonic line height as a fraction of image height
	SoundSpeed        float64  `toml:"sound_speed"`         // m/s
	SpeedUnit         string   `toml:"speed_unit"`
	Palette           []string `toml:"palette"`
}

// DefaultPalette is cycled for new markers and harmonic sets.
var DefaultPalette = []string{
	"#ff6b6b", "#4ecdc4", "#ffe66d", "#a78bfa", "#f97316", "#22c55e", "#38bdf8", "#f472b6",
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		MarkerHitRadius:   10,
		HarmonicHitRadius: 10,
		DopplerHitRadius:  20,
		NudgeStep:         1,
		NudgeStepShift:    10,
		LineHeight:        0.2,
		SoundSpeed:        units.DefaultSoundSpeed,
		SpeedUnit:         units.Knots,
		Palette:           slices.Clone(DefaultPalette),
	}
}

// Color returns the palette color at index i, cycling.
func (o Options) Color(i int) string {
	p := o.Palette
	if len(p) == 0 {
		p = DefaultPalette
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// Nudge returns the arrow key step for the given modifier state.
func (o Options) Nudge(shift bool) float64 {
	if shift {
		return o.NudgeStepShift
	}
	return o.NudgeStep
}
