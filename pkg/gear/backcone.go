package gear

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// BackCone is the back-cone geometry of one member: the cone tangent to
// the gear at its pitch circle, whose development is the equivalent spur
// gear the tooth profile is drawn on.
type BackCone struct {
	Module        float64 `json:"module"`
	Teeth         int     `json:"teeth"`
	MateTeeth     int     `json:"mate_teeth"`
	PressureAngle float64 `json:"pressure_angle"`

	Ratio          float64 `json:"ratio"`
	PitchDiameter  float64 `json:"pitch_diameter"` // spur pitch diameter, module*teeth
	BackConeHeight float64 `json:"back_cone_height"`
	BackAngle      float64 `json:"back_angle"`
	// ApexDistance is the distance from the gear centre to the pitch cone
	// apex along the gear axis: the mate's pitch radius.
	ApexDistance     float64 `json:"apex_distance"`
	EquivalentRadius float64 `json:"equivalent_radius"` // R0
	EquivalentTeeth  float64 `json:"equivalent_teeth"`  // Zi
}

// PlanCone computes the back cone of the member with teethThis teeth that
// meshes with a mate of teethOther teeth.
func PlanCone(module float64, teethThis, teethOther int, pressureAngle float64) (*BackCone, error) {
	if !(module > 0) {
		return nil, invalidf("module must be positive, got %g", module)
	}
	if teethThis < 1 || teethOther < 1 {
		return nil, invalidf("tooth counts must be positive, got %d and %d", teethThis, teethOther)
	}
	ratio := float64(teethThis) / float64(teethOther)
	pd := module * float64(teethThis)
	bch := module * float64(teethThis) * ratio / 2
	if !(bch > 0) || math.IsInf(bch, 0) {
		return nil, infeasiblef("degenerate back cone: height %g", bch)
	}
	R0 := math.Sqrt(pd*pd+4*bch*bch) / 2
	return &BackCone{
		Module:           module,
		Teeth:            teethThis,
		MateTeeth:        teethOther,
		PressureAngle:    pressureAngle,
		Ratio:            ratio,
		PitchDiameter:    pd,
		BackConeHeight:   bch,
		BackAngle:        math.Atan(pd / (2 * bch)),
		ApexDistance:     module * float64(teethOther) / 2,
		EquivalentRadius: R0,
		EquivalentTeeth:  2 * R0 / module,
	}, nil
}

// RootCone returns the axial offset a (from the gear centre toward the
// back) and the radius b of the root-cone base circle that passes through
// the tooth's root point. rootPoint is in tooth-plane coordinates.
func (bc *BackCone) RootCone(rootPoint r2.Vec) (a, b float64) {
	a = bc.BackConeHeight - rootPoint.X*math.Cos(bc.BackAngle)
	b = bc.PitchDiameter/2 - a*math.Tan(bc.BackAngle)
	b = math.Sqrt(b*b + rootPoint.Y*rootPoint.Y)
	return a, b
}

// ConeFrame is a back cone placed in the planar cross-section. The section
// plane is z=0 in world space; the gear axis lies in it.
type ConeFrame struct {
	Center   r2.Vec `json:"center"`
	AxisBack r2.Vec `json:"axis_back"` // unit, from apex toward the back of the gear
	Radial   r2.Vec `json:"radial"`    // unit, toward the pitch tangent point

	Apex         r2.Vec `json:"apex"`
	PitchTangent r2.Vec `json:"pitch_tangent"`
	PlaneOrigin  r2.Vec `json:"plane_origin"`
	// BackApex is the far end of the back-cone line, extended so its
	// midpoint PlaneOrigin lies on the gear axis.
	BackApex r2.Vec `json:"back_apex"`
	PlaneX   r2.Vec `json:"plane_x"`
}

// Place positions the cone with its gear centre at center.
func (bc *BackCone) Place(center, axisBack, radial r2.Vec) ConeFrame {
	axisBack = r2.Unit(axisBack)
	radial = r2.Unit(radial)
	tangent := r2.Add(center, r2.Scale(bc.PitchDiameter/2, radial))
	origin := r2.Add(center, r2.Scale(bc.BackConeHeight, axisBack))
	return ConeFrame{
		Center:       center,
		AxisBack:     axisBack,
		Radial:       radial,
		Apex:         r2.Sub(center, r2.Scale(bc.ApexDistance, axisBack)),
		PitchTangent: tangent,
		PlaneOrigin:  origin,
		BackApex:     r2.Sub(r2.Scale(2, origin), tangent),
		PlaneX:       r2.Unit(r2.Sub(tangent, origin)),
	}
}

// Plane is an oriented plane in world space.
type Plane struct {
	Origin r3.Vec `json:"origin"`
	XAxis  r3.Vec `json:"x_axis"`
	YAxis  r3.Vec `json:"y_axis"`
}

// Normal returns XAxis × YAxis.
func (p Plane) Normal() r3.Vec { return r3.Cross(p.XAxis, p.YAxis) }

// ToWorld maps plane coordinates to world space.
func (p Plane) ToWorld(q r2.Vec) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(q.X, p.XAxis), r3.Scale(q.Y, p.YAxis)))
}

// SectionNormal is the normal of the cross-section sketch plane.
var SectionNormal = r3.Vec{Z: 1}

// ToothPlane returns the construction plane of the tooth sketch: through
// the back-cone line at zero angle, x along the line toward the pitch
// tangent, y along the section normal.
func (f ConeFrame) ToothPlane() Plane {
	return Plane{
		Origin: Lift(f.PlaneOrigin),
		XAxis:  Lift(f.PlaneX),
		YAxis:  SectionNormal,
	}
}

// ToWorld maps a point of the tooth sketch into world space.
func (f ConeFrame) ToWorld(p r2.Vec) r3.Vec { return f.ToothPlane().ToWorld(p) }

// RootConePoints returns the points on the axis (A) and on the root-cone
// base circle (B) for the offsets returned by RootCone.
func (f ConeFrame) RootConePoints(a, b float64) (coneA, coneB r2.Vec) {
	coneA = r2.Add(f.Center, r2.Scale(a, f.AxisBack))
	coneB = r2.Add(coneA, r2.Scale(b, f.Radial))
	return coneA, coneB
}

// Lift embeds a section point in world space at z=0.
func Lift(p r2.Vec) r3.Vec { return r3.Vec{X: p.X, Y: p.Y} }
