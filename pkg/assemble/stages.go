package assemble

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/chazu/bevel/pkg/section"
	"gonum.org/v1/gonum/spatial/r2"
)

// Named points of the cross-section.
const (
	PointWheelCenter  = "wheel-center"
	PointPinionCenter = "pinion-center"
	PointApex         = "apex"
	PointPitchTangent = "pitch-tangent"
)

// sectionPlane names the sketch plane of the cross-section (world z=0).
const sectionPlane = "xy"

// layout places the pitch rectangle of the pair: the wheel axis runs from
// the origin down to the shared apex, the pinion axis runs from the
// pinion centre left to the apex, and the pitch cones touch along the
// line from the pitch tangent point to the apex.
func layout(a *Assembly) error {
	pd := a.Spec.Wheel().Dimensions().PitchDiameter
	pd1 := a.Spec.Pinion().Dimensions().PitchDiameter

	wheelCenter := r2.Vec{}
	apex := r2.Vec{Y: -pd1 / 2}
	tangent := r2.Vec{X: pd / 2}
	pinionCenter := r2.Vec{X: pd / 2, Y: -pd1 / 2}

	s := a.Section
	s.SetPoint(PointWheelCenter, wheelCenter)
	s.SetPoint(PointPinionCenter, pinionCenter)
	s.SetPoint(PointApex, apex)
	s.SetPoint(PointPitchTangent, tangent)

	s.AddConstruction("cone-tangent", tangent, apex)
	s.AddLine("wheel-axis", wheelCenter, apex)
	s.AddConstruction("wheel-base", wheelCenter, tangent)
	s.AddLine("pinion-axis", pinionCenter, apex)
	s.AddConstruction("pinion-base", pinionCenter, tangent)

	a.Wheel.Frame = gear.ConeFrame{Center: wheelCenter, AxisBack: r2.Vec{Y: 1}, Radial: r2.Vec{X: 1}}
	a.Pinion.Frame = gear.ConeFrame{Center: pinionCenter, AxisBack: r2.Vec{X: 1}, Radial: r2.Vec{Y: 1}}

	a.assemblyStep = a.Plan.Add(plan.OpCreateComponent, "assembly", "", plan.ComponentData{
		Name:        a.Spec.AssemblyName(),
		Description: a.Spec.Description(),
		Attributes:  a.Spec.Attributes(),
	})
	a.sketchStep = a.Plan.Add(plan.OpSketchLines, "cross-section", a.Spec.AssemblyName(),
		plan.SketchData{Plane: sectionPlane}, a.assemblyStep)
	return nil
}

// placeCones computes each member's back cone and tooth profile, draws
// the back-cone line and the root-cone outline into the section, and adds
// the tooth plane and tooth sketch steps.
func placeCones(a *Assembly) error {
	s := a.Section
	asm := a.Spec.AssemblyName()
	for _, m := range a.Members() {
		cone, err := gear.PlanCone(m.Spec.Module, m.Spec.Teeth, m.MateTeeth, m.Spec.PressureAngle)
		if err != nil {
			return fmt.Errorf("%s back cone: %w", m.Role, err)
		}
		m.Cone = cone
		m.Frame = cone.Place(m.Frame.Center, m.Frame.AxisBack, m.Frame.Radial)
		m.Axis = plan.Axis{Origin: gear.Lift(m.Frame.Center), Direction: gear.Lift(m.Frame.AxisBack)}

		backCone := string(m.Role) + "-back-cone"
		s.AddConstruction(backCone, m.Frame.BackApex, m.Frame.PitchTangent)
		m.PlaneStep = a.Plan.Add(plan.OpConstructionPlane, string(m.Role)+"-tooth-plane", asm, plan.PlaneData{
			Reference: backCone,
			Plane:     m.Frame.ToothPlane(),
		}, a.sketchStep)

		ratio := float64(m.Spec.Teeth) / float64(m.MateTeeth)
		prof, err := gear.BuildProfile(m.Spec.Module, m.Spec.Teeth, m.Spec.PressureAngle, m.Spec.Backlash, ratio)
		if err != nil {
			return fmt.Errorf("%s tooth profile: %w", m.Role, err)
		}
		m.Profile = prof
		m.ProfileStep = a.Plan.Add(plan.OpSketchProfile, string(m.Role)+"-tooth-profile", asm, plan.ProfileData{
			Plane:     m.Frame.ToothPlane(),
			Outline:   prof.Outline(a.opts.arcSegments),
			Segments:  prof.Segments(),
			Join:      prof.Join.String(),
			RootPoint: prof.RootPoint,
		}, m.PlaneStep)

		ca, cb := cone.RootCone(prof.RootPoint)
		if !(cb > 0) {
			return fmt.Errorf("%w: %s root cone has radius %g", gear.ErrGeometricInfeasibility, m.Role, cb)
		}
		m.ConeA, m.ConeB = m.Frame.RootConePoints(ca, cb)
		s.AddLine(string(m.Role)+"-axis-ext", m.Frame.Center, m.ConeA)
		s.AddLine(string(m.Role)+"-cone-base", m.ConeA, m.ConeB)
		m.slant = s.AddLine(string(m.Role)+"-cone-slant", m.ConeB, m.Frame.Apex)
	}
	return nil
}

// loftTeeth creates each member's component and lofts its tooth sketch
// to the shared apex.
func loftTeeth(a *Assembly) error {
	for _, m := range a.Members() {
		m.ComponentStep = a.Plan.Add(plan.OpCreateComponent, string(m.Role)+"-component", "", plan.ComponentData{
			Name:   m.Component,
			Parent: a.Spec.AssemblyName(),
		}, a.assemblyStep)
		m.LoftStep = a.Plan.Add(plan.OpLoft, string(m.Role)+"-tooth-loft", m.Component, plan.LoftData{
			Profile: m.ProfileStep,
			Apex:    gear.Lift(m.Frame.Apex),
		}, m.ComponentStep, m.ProfileStep)
	}
	return nil
}

// trimFaces marks the face width on both cone slants, measured from the
// cone base, and closes the regions near the apex that the apex trim
// removes.
func trimFaces(a *Assembly) error {
	s := a.Section
	for _, m := range a.Members() {
		slant, err := s.Line(m.slant)
		if err != nil {
			return err
		}
		p, err := s.SplitLineAt(m.slant, a.Spec.FaceThickness)
		if err != nil {
			return fmt.Errorf("%w: face thickness %g does not fit the %s cone slant of length %g",
				gear.ErrGeometricInfeasibility, a.Spec.FaceThickness, m.Role, slant.Length())
		}
		m.FacePoint = p
	}

	wf, pf := a.Wheel.FacePoint, a.Pinion.FacePoint
	s.AddLine("face-trim", wf, pf)
	for _, m := range a.Members() {
		foot := m.onAxis(m.FacePoint)
		if !s.SplitWhere(foot) && !endsAt(s, foot, 1e-9*a.scale()) {
			return failf("%s face trim does not meet the %s axis at %v", m.Role, m.Role, foot)
		}
		s.AddLine(string(m.Role)+"-face", m.FacePoint, foot)
	}

	a.Plan.Get(a.sketchStep).Data = plan.SketchData{
		Plane:  sectionPlane,
		Lines:  append([]section.Line(nil), s.Lines...),
		Points: copyPoints(s.Points),
	}
	return nil
}

// extractProfiles finds the closed regions of the section and picks each
// member's root-cone region: the one farthest from the apex along the
// member's axis.
func extractProfiles(a *Assembly) error {
	profiles, err := a.Section.Profiles()
	if err != nil {
		return err
	}
	if len(profiles) < 3 {
		return failf("cross-section has %d closed profiles, need at least 3", len(profiles))
	}
	a.Profiles = profiles

	picked := make(map[int]Role)
	for _, m := range a.Members() {
		rule := section.FarthestAlong(string(m.Role)+" root cone", m.Frame.Apex, m.Frame.AxisBack)
		i, err := section.Select(profiles, rule)
		if err != nil {
			return err
		}
		if prev, dup := picked[i]; dup {
			return failf("%s and %s select the same root-cone profile", prev, m.Role)
		}
		picked[i] = m.Role
		if !(profiles[i].Area > 0) {
			return failf("%s root-cone profile has no area", m.Role)
		}
		m.RootConeProfile = profiles[i]
	}
	return nil
}

// cutApex revolves every section profile about each member's axis and
// removes it from that member's tooth loft.
func cutApex(a *Assembly) error {
	loops := make([][]r2.Vec, len(a.Profiles))
	for i, p := range a.Profiles {
		loops[i] = p.Loop
	}
	for _, m := range a.Members() {
		m.CutStep = a.Plan.Add(plan.OpRevolveCut, string(m.Role)+"-apex-trim", m.Component, plan.RevolveData{
			Profiles:     loops,
			Axis:         m.Axis,
			Angle:        plan.FullTurn,
			Participants: []plan.StepID{m.LoftStep},
		}, a.sketchStep, m.LoftStep)
	}
	return nil
}

func patternTeeth(a *Assembly) error {
	for _, m := range a.Members() {
		m.PatternStep = a.Plan.Add(plan.OpCircularPattern, string(m.Role)+"-tooth-pattern", m.Component, plan.PatternData{
			Body:       m.CutStep,
			Axis:       m.Axis,
			Count:      m.Spec.Teeth,
			TotalAngle: plan.FullTurn,
		}, m.CutStep)
	}
	return nil
}

func revolveRootCones(a *Assembly) error {
	for _, m := range a.Members() {
		m.RootConeStep = a.Plan.Add(plan.OpRevolveNewBody, string(m.Role)+"-root-cone", m.Component, plan.RevolveData{
			Profiles: [][]r2.Vec{m.RootConeProfile.Loop},
			Axis:     m.Axis,
			Angle:    plan.FullTurn,
		}, a.sketchStep)
	}
	return nil
}

// boreShafts cuts the shaft hole through each root cone. The wheel is cut
// from its face nearest the apex to the back face; the pinion the other
// way round.
func boreShafts(a *Assembly) error {
	eps := 1e-6 * a.scale()
	for _, m := range a.Members() {
		faces := m.planarFaces(eps)
		if len(faces) < 2 {
			return failf("%s root cone has %d planar faces, need 2", m.Role, len(faces))
		}
		for _, f := range faces {
			if m.Spec.BoreDiameter/2 >= f.Radius {
				return fmt.Errorf("%w: the center hole diameter is too large for the %s (bore %g, face radius %g)",
					gear.ErrGeometricInfeasibility, m.Component, m.Spec.BoreDiameter, f.Radius)
			}
		}
		m.PlanarFaces = faces
		from, to := 0, 1
		if m.Role == RolePinion {
			from, to = 1, 0
		}
		m.BoreStep = a.Plan.Add(plan.OpExtrudeCutBore, string(m.Role)+"-bore", m.Component, plan.BoreData{
			Body:     m.RootConeStep,
			Axis:     m.Axis,
			Diameter: m.Spec.BoreDiameter,
			Faces:    faces,
			From:     from,
			To:       to,
		}, m.RootConeStep)
	}
	return nil
}

func groupSteps(a *Assembly) error {
	a.Plan.Add(plan.OpGroup, "group", a.Spec.AssemblyName(), plan.GroupData{
		Name:  gear.GroupName,
		First: a.assemblyStep,
		Last:  a.Plan.Last(),
	})
	return nil
}

// onAxis projects p onto the member's axis.
func (m *Member) onAxis(p r2.Vec) r2.Vec {
	s, _ := m.axial(p)
	return r2.Add(m.Frame.Center, r2.Scale(s, m.Frame.AxisBack))
}

// axial returns the offset of p along the axis from the gear centre and
// its distance from the axis.
func (m *Member) axial(p r2.Vec) (s, r float64) {
	d := r2.Sub(p, m.Frame.Center)
	return r2.Dot(d, m.Frame.AxisBack), math.Abs(r2.Dot(d, m.Frame.Radial))
}

// planarFaces returns the flat faces of the revolved root-cone profile:
// edges perpendicular to the axis, merged by axial offset and ordered by
// distance from the apex.
func (m *Member) planarFaces(eps float64) []plan.PlanarFace {
	type disc struct{ s, r float64 }
	var discs []disc
	for _, e := range m.RootConeProfile.Edges() {
		s0, r0 := m.axial(e[0])
		s1, r1 := m.axial(e[1])
		if math.Abs(s0-s1) > eps || max(r0, r1) <= eps {
			continue
		}
		s, r := (s0+s1)/2, max(r0, r1)
		merged := false
		for i := range discs {
			if math.Abs(discs[i].s-s) <= eps {
				discs[i].r = max(discs[i].r, r)
				merged = true
				break
			}
		}
		if !merged {
			discs = append(discs, disc{s, r})
		}
	}
	sort.Slice(discs, func(i, j int) bool {
		return math.Abs(discs[i].s+m.Cone.ApexDistance) < math.Abs(discs[j].s+m.Cone.ApexDistance)
	})

	faces := make([]plan.PlanarFace, len(discs))
	for i, d := range discs {
		faces[i] = plan.PlanarFace{
			Center: gear.Lift(r2.Add(m.Frame.Center, r2.Scale(d.s, m.Frame.AxisBack))),
			Normal: gear.Lift(m.Frame.AxisBack),
			Radius: d.r,
			Offset: d.s,
		}
	}
	return faces
}

// scale is the size of the layout, used for tolerances.
func (a *Assembly) scale() float64 {
	return a.Spec.Wheel().Dimensions().PitchDiameter + a.Spec.Pinion().Dimensions().PitchDiameter
}

// endsAt reports whether a profile line of the sketch starts or ends at p.
func endsAt(s *section.Context, p r2.Vec, eps float64) bool {
	for _, l := range s.Lines {
		if l.Construction {
			continue
		}
		if r2.Norm(r2.Sub(l.Start, p)) <= eps || r2.Norm(r2.Sub(l.End, p)) <= eps {
			return true
		}
	}
	return false
}

func copyPoints(in map[string]r2.Vec) map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
