// Package assemble turns a validated gear pair into a construction plan.
//
// Assembly runs a fixed sequence of stages over an explicit state value:
// the cross-section layout, the per-gear back cones and tooth profiles,
// the face trim, profile extraction, and finally the solid operations
// (apex trim, tooth pattern, root cone, bore). Each stage records the
// sketch entities and plan steps it creates on the Member it works on.
// The first failing stage aborts the whole assembly.
package assemble

import (
	"errors"
	"fmt"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/chazu/bevel/pkg/section"
	"gonum.org/v1/gonum/spatial/r2"
)

// Role names the position of a member in the pair.
type Role string

const (
	RoleWheel  Role = "wheel"
	RolePinion Role = "pinion"
)

// Member is one gear of the pair as laid out in the cross-section.
type Member struct {
	Role      Role
	Spec      gear.Spec
	MateTeeth int
	Component string

	Cone    *gear.BackCone
	Frame   gear.ConeFrame
	Profile *gear.ToothProfile
	Axis    plan.Axis

	// ConeA lies on the axis and ConeB on the root-cone base circle.
	ConeA, ConeB r2.Vec
	// FacePoint is where the face trim meets the cone slant.
	FacePoint       r2.Vec
	RootConeProfile section.Profile
	PlanarFaces     []plan.PlanarFace

	slant int // section line index of the cone slant

	// Steps created for this member.
	PlaneStep, ProfileStep, ComponentStep plan.StepID
	LoftStep, CutStep, PatternStep       plan.StepID
	RootConeStep, BoreStep               plan.StepID
}

// Assembly is the result of Assemble.
type Assembly struct {
	Spec     gear.PairSpec
	Plan     *plan.Plan
	Section  *section.Context
	Wheel    *Member
	Pinion   *Member
	Profiles []section.Profile

	assemblyStep plan.StepID
	sketchStep   plan.StepID
	opts         options
}

// Members returns the wheel and the pinion, in that order.
func (a *Assembly) Members() []*Member { return []*Member{a.Wheel, a.Pinion} }

// Member returns the member with the given component name, or nil.
func (a *Assembly) Member(component string) *Member {
	for _, m := range a.Members() {
		if m.Component == component {
			return m
		}
	}
	return nil
}

type options struct {
	arcSegments int
	planName    string
}

// Option configures Assemble.
type Option func(*options)

// WithArcSegments sets how many chords approximate the tooth tip arc in
// the lofted outline.
func WithArcSegments(n int) Option {
	return func(o *options) { o.arcSegments = n }
}

// WithPlanName overrides the plan name, which defaults to the assembly
// component name.
func WithPlanName(name string) Option {
	return func(o *options) { o.planName = name }
}

type stage struct {
	name string
	run  func(*Assembly) error
}

var stages = []stage{
	{"layout", layout},
	{"back cones", placeCones},
	{"tooth lofts", loftTeeth},
	{"face trim", trimFaces},
	{"profiles", extractProfiles},
	{"apex trim", cutApex},
	{"tooth pattern", patternTeeth},
	{"root cones", revolveRootCones},
	{"bores", boreShafts},
	{"group", groupSteps},
}

// Assemble validates spec and builds its construction plan. Parameter
// problems are reported as a joined error wrapping gear.ErrInvalidParameter
// or gear.ErrGeometricInfeasibility; a failed stage wraps
// gear.ErrConstructionFailure unless it found an infeasible geometry.
func Assemble(spec gear.PairSpec, opts ...Option) (*Assembly, error) {
	o := options{arcSegments: 8}
	for _, opt := range opts {
		opt(&o)
	}
	if o.planName == "" {
		o.planName = spec.AssemblyName()
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	a := &Assembly{
		Spec:    spec,
		Plan:    plan.New(o.planName),
		Section: section.New(),
		opts:    o,
	}
	a.Wheel = newMember(RoleWheel, spec.Wheel(), spec.PinionTeeth)
	a.Pinion = newMember(RolePinion, spec.Pinion(), spec.WheelTeeth)
	if a.Pinion.Component == a.Wheel.Component {
		a.Pinion.Component += " (2)"
	}

	for _, st := range stages {
		if err := st.run(a); err != nil {
			return nil, fmt.Errorf("assemble %s: %s: %w", spec.AssemblyName(), st.name, classify(err))
		}
		monitoring.Debugf("assemble %s: %s done (%d steps)", spec.AssemblyName(), st.name, a.Plan.Len())
	}

	if errs := plan.Errors(plan.Validate(a.Plan)); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("assemble %s: %w: invalid plan: %w",
			spec.AssemblyName(), gear.ErrConstructionFailure, errors.Join(joined...))
	}
	monitoring.Logf("assembled %s: %d steps, %d profiles", spec.AssemblyName(), a.Plan.Len(), len(a.Profiles))
	return a, nil
}

func newMember(role Role, spec gear.Spec, mate int) *Member {
	return &Member{
		Role:      role,
		Spec:      spec,
		MateTeeth: mate,
		Component: gear.ComponentName(spec.Teeth),
	}
}

// classify leaves gear errors alone and marks anything else as a
// construction failure.
func classify(err error) error {
	if errors.Is(err, gear.ErrInvalidParameter) ||
		errors.Is(err, gear.ErrGeometricInfeasibility) ||
		errors.Is(err, gear.ErrConstructionFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", gear.ErrConstructionFailure, err)
}

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gear.ErrConstructionFailure, fmt.Sprintf(format, args...))
}
