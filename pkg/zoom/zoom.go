// Package zoom owns the zoom level arithmetic and derives the rendered
// image box from it.
//
// Levels are multiplicative: each [In] multiplies by [Step] and each [Out]
// divides by it, clamped to [[MinLevel], [MaxLevel]]. The rendered box is
// anchored at the unscaled top-left margin, so zooming never re-centers.
//
// Independently of interactive zoom, [AutoScale] computes the one-time
// downscale applied when an image wider than [MaxNaturalWidth] is loaded.
package zoom

import (
	"math"

	"github.com/matzehuels/gramframe/pkg/coords"
)

const (
	// MinLevel is the most zoomed-out level.
	MinLevel = 0.5
	// MaxLevel is the most zoomed-in level.
	MaxLevel = 5.0
	// Step is the multiplicative factor of one zoom step.
	Step = 1.5
	// DefaultLevel is the level after a reset.
	DefaultLevel = 1.0

	// MaxNaturalWidth is the widest image accepted without auto-scaling.
	MaxNaturalWidth = 1200
)

// In returns the next level up, clamped to MaxLevel.
func In(level float64) float64 {
	return Clamp(level * Step)
}

// Out returns the next level down, clamped to MinLevel.
func Out(level float64) float64 {
	return Clamp(level / Step)
}

// Reset returns the default level.
func Reset() float64 { return DefaultLevel }

// Clamp limits level to [MinLevel, MaxLevel]. Non-finite or non-positive
// levels reset to DefaultLevel.
func Clamp(level float64) float64 {
	if math.IsNaN(level) || math.IsInf(level, 0) || level <= 0 {
		return DefaultLevel
	}
	return math.Min(math.Max(level, MinLevel), MaxLevel)
}

// AutoScale returns the downscale factor and resulting size for an image
// of the given natural size. scaled is false (and factor 1) when the image
// already fits.
func AutoScale(naturalWidth, naturalHeight float64) (factor, width, height float64, scaled bool) {
	if naturalWidth <= MaxNaturalWidth {
		return 1, naturalWidth, naturalHeight, false
	}
	factor = MaxNaturalWidth / naturalWidth
	return factor, naturalWidth * factor, naturalHeight * factor, true
}

// RenderedBox returns the image box at the given zoom level. width and
// height are the image dimensions after any auto-scale factor.
func RenderedBox(width, height, level float64, m coords.Margins) coords.Box {
	level = Clamp(level)
	return coords.Box{
		Left:   m.Left,
		Top:    m.Top,
		Width:  width * level,
		Height: height * level,
	}
}

// Frame returns the full SVG extent (image box plus margins).
func Frame(box coords.Box, m coords.Margins) (width, height float64) {
	return m.Left + box.Width + m.Right, m.Top + box.Height + m.Bottom
}

// DisplayScale returns the screen-pixels-per-SVG-unit factor for a container
// of the given width displaying an SVG frame of frameWidth. A zero container
// width means the size is unknown and the frame displays at 1:1.
func DisplayScale(containerWidth, frameWidth float64) float64 {
	if containerWidth <= 0 || frameWidth <= 0 {
		return 1
	}
	return containerWidth / frameWidth
}
