package errors

import (
	"math"
	"strings"
)

// MaxImageDimension bounds declared image sizes. Anything larger is almost
// certainly a unit mix-up in the config table.
const MaxImageDimension = 100000

// ValidateDomain validates the logical (time, frequency) bounds of a spectrogram.
//
// Validation rules:
//   - All bounds must be finite numbers
//   - TimeMin must be strictly less than TimeMax
//   - FreqMin must be strictly less than FreqMax
//
// Transforms rely on these rules; a degenerate domain would divide by zero.
func ValidateDomain(timeMin, timeMax, freqMin, freqMax float64) error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"time-start", timeMin},
		{"time-end", timeMax},
		{"freq-start", freqMin},
		{"freq-end", freqMax},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return New(ErrCodeInvalidConfig, "%s is not a finite number", v.name)
		}
	}

	if timeMin >= timeMax {
		return New(ErrCodeInvalidConfig, "time range inverted or empty: %g >= %g", timeMin, timeMax)
	}
	if freqMin >= freqMax {
		return New(ErrCodeInvalidConfig, "frequency range inverted or empty: %g >= %g", freqMin, freqMax)
	}
	return nil
}

// ValidateImageSize validates the natural pixel dimensions reported for the
// spectrogram bitmap.
func ValidateImageSize(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || width <= 0 || height <= 0 {
		return New(ErrCodeInvalidImage, "image dimensions must be positive (got %gx%g)", width, height)
	}
	if width > MaxImageDimension || height > MaxImageDimension {
		return New(ErrCodeInvalidImage, "image dimensions too large (max %d)", MaxImageDimension)
	}
	return nil
}

// ValidateColor validates a palette entry. Only "#rgb" and "#rrggbb" hex
// colors are accepted since they are copied verbatim into SVG attributes.
func ValidateColor(c string) error {
	if !strings.HasPrefix(c, "#") || (len(c) != 4 && len(c) != 7) {
		return New(ErrCodeInvalidStyle, "invalid color %q (want #rgb or #rrggbb)", c)
	}
	for _, r := range c[1:] {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !isHex {
			return New(ErrCodeInvalidStyle, "invalid color %q (want #rgb or #rrggbb)", c)
		}
	}
	return nil
}

// ValidatePositive validates a strictly positive, finite tuning value such as a
// hit threshold or reference sound speed.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be a positive number (got %g)", name, v)
	}
	return nil
}
