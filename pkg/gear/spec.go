// Package gear holds the gear-theory core of bevel: parameter types,
// derived spur dimensions, the involute sampler, the tooth profile builder
// and the back-cone (Tredgold) planner.
//
// All lengths share the unit of the module (millimetres in practice).
// Angles are radians unless a name says otherwise.
package gear

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// MinTeeth is the smallest tooth count accepted for either member.
	MinTeeth = 4

	// DedendumFactor multiplies the module to give the dedendum. The
	// clearance term is folded into this flat constant.
	DedendumFactor = 1.157

	// BoreMargin is the minimum wall left between bore and root circle.
	BoreMargin = 0.01

	// ProfileSamples is the number of evenly spaced radii sampled along
	// each involute flank.
	ProfileSamples = 15

	// GroupName labels the grouped construction steps of a pair.
	GroupName = "BevelGears"
)

// Spec describes one member of a bevel gear pair.
type Spec struct {
	Module        float64 `json:"module" yaml:"module"`
	Teeth         int     `json:"teeth" yaml:"teeth"`
	PressureAngle float64 `json:"pressure_angle" yaml:"pressure_angle"`
	Backlash      float64 `json:"backlash" yaml:"backlash"`
	FaceThickness float64 `json:"face_thickness" yaml:"face_thickness"`
	BoreDiameter  float64 `json:"bore_diameter" yaml:"bore_diameter"`
}

// Dimensions returns the spur (pre-Tredgold) dimensions of the member.
func (s Spec) Dimensions() Dimensions {
	return SpurDimensions(s.Module, s.Teeth, s.PressureAngle)
}

// PairSpec describes a matched wheel and pinion. Everything except the
// tooth counts is shared by both members.
type PairSpec struct {
	Module        float64 `json:"module" yaml:"module"`
	WheelTeeth    int     `json:"wheel_teeth" yaml:"wheel_teeth"`
	PinionTeeth   int     `json:"pinion_teeth" yaml:"pinion_teeth"`
	PressureAngle float64 `json:"pressure_angle" yaml:"pressure_angle"`
	Backlash      float64 `json:"backlash" yaml:"backlash"`
	FaceThickness float64 `json:"face_thickness" yaml:"face_thickness"`
	BoreDiameter  float64 `json:"bore_diameter" yaml:"bore_diameter"`
}

// DefaultPair returns the parameters the generator starts from: module 2,
// 25/10 teeth, 20 degree pressure angle.
func DefaultPair() PairSpec {
	return PairSpec{
		Module:        2,
		WheelTeeth:    25,
		PinionTeeth:   10,
		PressureAngle: Preset20.Radians(),
		Backlash:      0.05,
		FaceThickness: 10,
		BoreDiameter:  8,
	}
}

func (p PairSpec) member(teeth int) Spec {
	return Spec{
		Module:        p.Module,
		Teeth:         teeth,
		PressureAngle: p.PressureAngle,
		Backlash:      p.Backlash,
		FaceThickness: p.FaceThickness,
		BoreDiameter:  p.BoreDiameter,
	}
}

// Wheel returns the spec of the larger member.
func (p PairSpec) Wheel() Spec { return p.member(p.WheelTeeth) }

// Pinion returns the spec of the smaller member.
func (p PairSpec) Pinion() Spec { return p.member(p.PinionTeeth) }

// Ratio is wheelTeeth / pinionTeeth. The pinion uses the inverse.
func (p PairSpec) Ratio() float64 {
	return float64(p.WheelTeeth) / float64(p.PinionTeeth)
}

// Dimensions are the spur-gear diameters derived from module, tooth count
// and pressure angle.
type Dimensions struct {
	PitchDiameter      float64 `json:"pitch_diameter"`
	RootDiameter       float64 `json:"root_diameter"`
	BaseCircleDiameter float64 `json:"base_circle_diameter"`
	OutsideDiameter    float64 `json:"outside_diameter"`
	Addendum           float64 `json:"addendum"`
	Dedendum           float64 `json:"dedendum"`
}

// SpurDimensions derives the dimensions of a spur gear with the given pitch
// diameter module*teeth.
func SpurDimensions(module float64, teeth int, pressureAngle float64) Dimensions {
	return dimensionsFromPitch(module*float64(teeth), module, pressureAngle)
}

func dimensionsFromPitch(pitchDia, module, pressureAngle float64) Dimensions {
	ded := DedendumFactor * module
	return Dimensions{
		PitchDiameter:      pitchDia,
		RootDiameter:       pitchDia - 2*ded,
		BaseCircleDiameter: pitchDia * math.Cos(pressureAngle),
		OutsideDiameter:    pitchDia + 2*module,
		Addendum:           module,
		Dedendum:           ded,
	}
}

// ComponentName is the name given to the component holding one member.
func ComponentName(teeth int) string {
	return fmt.Sprintf("%d Tooth", teeth)
}

// AssemblyName names the component that holds both members.
func (p PairSpec) AssemblyName() string {
	return fmt.Sprintf("%d/%d Bevel Gears", p.WheelTeeth, p.PinionTeeth)
}

// Description is the one-line summary stored on the assembly component.
func (p PairSpec) Description() string {
	return fmt.Sprintf("Gear; Module: %s; Num Teeth: %d; Num Teeth1: %d; Pressure Angle: %s; Backlash: %s",
		formatFloat(p.Module), p.WheelTeeth, p.PinionTeeth,
		formatFloat(Degrees(p.PressureAngle)), formatFloat(p.Backlash))
}

// Degrees converts radians to degrees, rounded to 1e-9 so preset angles
// print as whole numbers.
func Degrees(rad float64) float64 {
	return math.Round(rad*180/math.Pi*1e9) / 1e9
}

// Attribute keys persisted with a generated pair.
const (
	AttrModule        = "module"
	AttrNumTeeth      = "numTeeth"
	AttrNumTeeth1     = "numTeeth1"
	AttrThickness     = "thickness"
	AttrPressureAngle = "pressureAngle"
	AttrHoleDiam      = "holeDiam"
	AttrBacklash      = "backlash"
)

// Attributes returns the input values of the pair as a flat string map.
// Floats use the shortest representation that parses back exactly.
func (p PairSpec) Attributes() map[string]string {
	return map[string]string{
		AttrModule:        formatFloat(p.Module),
		AttrNumTeeth:      strconv.Itoa(p.WheelTeeth),
		AttrNumTeeth1:     strconv.Itoa(p.PinionTeeth),
		AttrThickness:     formatFloat(p.FaceThickness),
		AttrPressureAngle: formatFloat(p.PressureAngle),
		AttrHoleDiam:      formatFloat(p.BoreDiameter),
		AttrBacklash:      formatFloat(p.Backlash),
	}
}

// AttributesToPairSpec parses a map produced by Attributes.
func AttributesToPairSpec(attrs map[string]string) (PairSpec, error) {
	var p PairSpec
	var err error
	floats := []struct {
		key string
		dst *float64
	}{
		{AttrModule, &p.Module},
		{AttrThickness, &p.FaceThickness},
		{AttrPressureAngle, &p.PressureAngle},
		{AttrHoleDiam, &p.BoreDiameter},
		{AttrBacklash, &p.Backlash},
	}
	for _, f := range floats {
		v, ok := attrs[f.key]
		if !ok {
			return PairSpec{}, fmt.Errorf("attributes: missing %q", f.key)
		}
		if *f.dst, err = strconv.ParseFloat(v, 64); err != nil {
			return PairSpec{}, fmt.Errorf("attributes: %s: %w", f.key, err)
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{AttrNumTeeth, &p.WheelTeeth},
		{AttrNumTeeth1, &p.PinionTeeth},
	}
	for _, f := range ints {
		v, ok := attrs[f.key]
		if !ok {
			return PairSpec{}, fmt.Errorf("attributes: missing %q", f.key)
		}
		if *f.dst, err = strconv.Atoi(v); err != nil {
			return PairSpec{}, fmt.Errorf("attributes: %s: %w", f.key, err)
		}
	}
	return p, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
