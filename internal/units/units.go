// Package units provides shared constants and conversion for angle units
package units

import (
	"math"
	"strings"
)

// Unit constants
const (
	Radians = "rad"
	Degrees = "deg"
	Turns   = "turn"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Radians, Degrees, Turns}

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
	return strings.Join(ValidUnits, ", ")
}

// ToRadians converts an angle in the given units to radians.
// The geometry works in radians; unknown units are treated as radians.
func ToRadians(angle float64, unit string) float64 {
	switch unit {
	case Degrees:
		return angle * math.Pi / 180
	case Turns:
		return angle * 2 * math.Pi
	case Radians:
		return angle // no conversion needed
	default:
		return angle
	}
}

// FromRadians converts an angle in radians to the given units.
func FromRadians(rad float64, unit string) float64 {
	switch unit {
	case Degrees:
		return rad * 180 / math.Pi
	case Turns:
		return rad / (2 * math.Pi)
	default:
		return rad
	}
}
