// Package units provides shared constants and conversions for speed units
package units

// Unit constants
const (
	MPS   = "mps"
	Knots = "knots"
	MPH   = "mph"
	KMPH  = "kmph"
	KPH   = "kph"
)

// MPSToKnots is the number of knots in one metre per second.
const MPSToKnots = 1.94384

// DefaultSoundSpeed is the reference speed of sound in sea water (m/s) used
// by the Doppler fit when none is configured.
const DefaultSoundSpeed = 1500.0

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, Knots, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, knots, mph, kmph, kph"
}

// ConvertSpeed converts a speed from meters per second to the target units
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case Knots:
		return speedMPS * MPSToKnots
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}

// DopplerSpeed returns the source speed in m/s implied by a Doppler pair.
//
// fPlus and fMinus are the approach and recede frequencies, fZero the rest
// frequency and c the propagation speed. ok is false when fZero is not
// positive.
func DopplerSpeed(fPlus, fMinus, fZero, c float64) (speedMPS float64, ok bool) {
	if fZero <= 0 {
		return 0, false
	}
	deltaF := (fPlus - fMinus) / 2
	return (c / fZero) * deltaF, true
}
