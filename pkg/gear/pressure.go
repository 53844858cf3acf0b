package gear

import (
	"math"
	"strconv"
	"strings"
)

const halfPi = math.Pi / 2

// PressureAnglePreset names one of the standard pressure angles offered
// to users, or Custom for a free value.
type PressureAnglePreset string

const (
	Preset14_5   PressureAnglePreset = "14.5 deg"
	Preset20     PressureAnglePreset = "20 deg"
	Preset25     PressureAnglePreset = "25 deg"
	PresetCustom PressureAnglePreset = "Custom"
)

// Presets lists the standard presets in display order.
var Presets = []PressureAnglePreset{Preset14_5, Preset20, Preset25, PresetCustom}

// Radians returns the preset angle. Custom has no angle and returns 0.
func (p PressureAnglePreset) Radians() float64 {
	switch p {
	case Preset14_5:
		return 14.5 * math.Pi / 180
	case Preset20:
		return 20 * math.Pi / 180
	case Preset25:
		return 25 * math.Pi / 180
	default:
		return 0
	}
}

// ParsePressureAngle accepts a preset name ("20 deg") or a plain number of
// degrees ("17.5") and returns radians.
func ParsePressureAngle(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, p := range Presets {
		if p != PresetCustom && strings.EqualFold(s, string(p)) {
			return p.Radians(), nil
		}
	}
	num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "deg"), "°"))
	deg, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, invalidf("pressure angle %q is neither a preset nor a number of degrees", s)
	}
	if !(deg > 0) || deg >= 90 {
		return 0, invalidf("pressure angle must be in (0, 90) degrees, got %g", deg)
	}
	return deg * math.Pi / 180, nil
}

// PresetFor returns the preset matching rad, or PresetCustom.
func PresetFor(rad float64) PressureAnglePreset {
	for _, p := range Presets {
		if p != PresetCustom && math.Abs(p.Radians()-rad) < 1e-12 {
			return p
		}
	}
	return PresetCustom
}
