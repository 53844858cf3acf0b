// Package tessellate executes a construction plan against a geometry
// kernel and produces triangle meshes. One mesh is produced per component
// that owns bodies.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/kernel"
	"github.com/chazu/bevel/pkg/plan"
	"gonum.org/v1/gonum/spatial/r3"
)

// body is a solid owned by a component. Modifying steps replace its
// solid in place, so every step that touched a body refers to its
// current state.
type body struct {
	solid kernel.Solid
}

// Part is a component and the bodies it owns, in creation order.
type Part struct {
	Name   string
	Parent string
	bodies []*body
}

// BodyCount returns the number of bodies the part owns.
func (p *Part) BodyCount() int { return len(p.bodies) }

// Group is a named step range recorded by a group step.
type Group struct {
	Name        string
	First, Last plan.StepID
}

// Result is the outcome of executing a plan.
type Result struct {
	Plan   *plan.Plan
	Parts  []*Part
	Groups []Group

	bodies   map[plan.StepID]*body
	profiles map[plan.StepID]plan.ProfileData
	k        kernel.Kernel
}

// Part returns the part with the given component name, or nil.
func (r *Result) Part(name string) *Part {
	for _, p := range r.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Body returns the current solid of the body created or modified by step
// id.
func (r *Result) Body(id plan.StepID) (kernel.Solid, bool) {
	b, ok := r.bodies[id]
	if !ok {
		return nil, false
	}
	return b.solid, true
}

// Solid returns the union of the bodies of a part. ok is false when the
// part does not exist or owns no bodies.
func (r *Result) Solid(name string) (s kernel.Solid, ok bool) {
	p := r.Part(name)
	if p == nil || len(p.bodies) == 0 {
		return nil, false
	}
	s = p.bodies[0].solid
	for _, b := range p.bodies[1:] {
		s = r.k.Union(s, b.solid)
	}
	return s, true
}

// Execute runs every step of the plan in order. The plan must pass
// plan.Validate. Any failure, including a kernel error, aborts execution
// with an error wrapping gear.ErrConstructionFailure that names the step.
func Execute(p *plan.Plan, k kernel.Kernel) (*Result, error) {
	if p == nil {
		return nil, errors.New("tessellate: nil plan")
	}
	if errs := plan.Errors(plan.Validate(p)); len(errs) > 0 {
		return nil, fmt.Errorf("tessellate: %w: plan %q is invalid: %v (%d errors)",
			gear.ErrConstructionFailure, p.Name, errs[0], len(errs))
	}

	r := &Result{
		Plan:     p,
		bodies:   make(map[plan.StepID]*body),
		profiles: make(map[plan.StepID]plan.ProfileData),
		k:        k,
	}
	for _, s := range p.Steps {
		if err := r.step(s); err != nil {
			return nil, fmt.Errorf("tessellate: %w: step %s %q: %w", gear.ErrConstructionFailure, s.ID.Short(), s.Name, err)
		}
		monitoring.Debugf("tessellate %s: %s %s %q", p.Name, s.ID.Short(), s.Kind, s.Name)
	}
	return r, nil
}

// Tessellate executes the plan and meshes every part that owns bodies.
// PartName of each mesh is the component name.
func Tessellate(p *plan.Plan, k kernel.Kernel) ([]*kernel.Mesh, error) {
	r, err := Execute(p, k)
	if err != nil {
		return nil, err
	}
	var meshes []*kernel.Mesh
	for _, part := range r.Parts {
		solid, ok := r.Solid(part.Name)
		if !ok {
			continue
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w: ToMesh failed for %q: %w", gear.ErrConstructionFailure, part.Name, err)
		}
		if mesh.IsEmpty() {
			return nil, fmt.Errorf("tessellate: %w: %q meshed to nothing", gear.ErrConstructionFailure, part.Name)
		}
		mesh.PartName = part.Name
		meshes = append(meshes, mesh)
		monitoring.Logf("tessellate %s: %q has %d triangles", p.Name, part.Name, mesh.TriangleCount())
	}
	return meshes, nil
}

func (r *Result) step(s *plan.Step) error {
	switch d := s.Data.(type) {
	case plan.ComponentData:
		r.Parts = append(r.Parts, &Part{Name: d.Name, Parent: d.Parent})
		return nil
	case plan.SketchData, plan.PlaneData:
		// Reference geometry only.
		return nil
	case plan.ProfileData:
		r.profiles[s.ID] = d
		return nil
	case plan.LoftData:
		return r.loft(s, d)
	case plan.RevolveData:
		if s.Kind == plan.OpRevolveCut {
			return r.revolveCut(s, d)
		}
		return r.revolveNewBody(s, d)
	case plan.PatternData:
		return r.pattern(s, d)
	case plan.BoreData:
		return r.bore(s, d)
	case plan.GroupData:
		r.Groups = append(r.Groups, Group{Name: d.Name, First: d.First, Last: d.Last})
		return nil
	default:
		return fmt.Errorf("unsupported step data %T", s.Data)
	}
}

func (r *Result) addBody(s *plan.Step, solid kernel.Solid) error {
	part := r.Part(s.Component)
	if part == nil {
		return fmt.Errorf("component %q does not exist", s.Component)
	}
	b := &body{solid: solid}
	part.bodies = append(part.bodies, b)
	r.bodies[s.ID] = b
	return nil
}

func (r *Result) lookup(id plan.StepID) (*body, error) {
	b, ok := r.bodies[id]
	if !ok {
		return nil, fmt.Errorf("step %s produced no body", id.Short())
	}
	return b, nil
}

func (r *Result) loft(s *plan.Step, d plan.LoftData) error {
	prof, ok := r.profiles[d.Profile]
	if !ok {
		return fmt.Errorf("step %s is not a profile", d.Profile.Short())
	}
	section := kernel.Section{Plane: toPlane(prof.Plane), Outline: prof.Outline}
	solid, err := r.k.Loft(section, d.Apex)
	if err != nil {
		return err
	}
	return r.addBody(s, solid)
}

// revolved returns the union of the profiles revolved about the axis.
func (r *Result) revolved(d plan.RevolveData) (kernel.Solid, error) {
	var tool kernel.Solid
	for i, prof := range d.Profiles {
		s, err := r.k.Revolve(prof, toAxis(d.Axis))
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if tool == nil {
			tool = s
		} else {
			tool = r.k.Union(tool, s)
		}
	}
	return tool, nil
}

// revolveCut removes the revolved profiles from every participant. The
// step refers to its first participant afterwards.
func (r *Result) revolveCut(s *plan.Step, d plan.RevolveData) error {
	tool, err := r.revolved(d)
	if err != nil {
		return err
	}
	for i, id := range d.Participants {
		b, err := r.lookup(id)
		if err != nil {
			return err
		}
		b.solid = r.k.Difference(b.solid, tool)
		if i == 0 {
			r.bodies[s.ID] = b
		}
	}
	return nil
}

func (r *Result) revolveNewBody(s *plan.Step, d plan.RevolveData) error {
	solid, err := r.revolved(d)
	if err != nil {
		return err
	}
	return r.addBody(s, solid)
}

// patternAngles returns the rotation of each copy. The original is copy
// zero. A symmetric pattern spreads the copies to both sides.
func patternAngles(count int, total float64, symmetric bool) []float64 {
	step := total / float64(count)
	if math.Abs(total-plan.FullTurn) > 1e-9 && count > 1 {
		// An open arc places the last copy at the end of the arc.
		step = total / float64(count-1)
	}
	angles := make([]float64, count)
	for i := range angles {
		angles[i] = step * float64(i)
		if symmetric {
			angles[i] -= step * float64(count-1) / 2
		}
	}
	return angles
}

func (r *Result) pattern(s *plan.Step, d plan.PatternData) error {
	b, err := r.lookup(d.Body)
	if err != nil {
		return err
	}
	axis := toAxis(d.Axis)
	var out kernel.Solid
	for _, a := range patternAngles(d.Count, d.TotalAngle, d.Symmetric) {
		c := b.solid
		if a != 0 {
			c = r.k.RotateAbout(b.solid, axis, a)
		}
		if out == nil {
			out = c
		} else {
			out = r.k.Union(out, c)
		}
	}
	b.solid = out
	r.bodies[s.ID] = b
	return nil
}

// boreMargin extends the bore past both end faces so no skin is left.
const boreMargin = 0.01

func (r *Result) bore(s *plan.Step, d plan.BoreData) error {
	b, err := r.lookup(d.Body)
	if err != nil {
		return err
	}
	from, to := d.Faces[d.From].Offset, d.Faces[d.To].Offset
	lo, hi := math.Min(from, to), math.Max(from, to)
	margin := boreMargin*(hi-lo) + boreMargin
	cyl, err := r.k.Cylinder(hi-lo+2*margin, d.Diameter/2)
	if err != nil {
		return err
	}
	unit := toAxis(d.Axis)
	unit.Direction = r3.Unit(unit.Direction)
	cyl = r.k.Align(r.k.Translate(cyl, r3.Vec{Z: (lo + hi) / 2}), unit)
	b.solid = r.k.Difference(b.solid, cyl)
	r.bodies[s.ID] = b
	return nil
}

func toAxis(a plan.Axis) kernel.Axis {
	return kernel.Axis{Origin: a.Origin, Direction: a.Direction}
}

func toPlane(p gear.Plane) kernel.Plane {
	return kernel.Plane{Origin: p.Origin, XAxis: p.XAxis, YAxis: p.YAxis}
}
