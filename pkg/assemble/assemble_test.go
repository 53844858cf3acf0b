package assemble

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/plan"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r2"
)

func init() {
	monitoring.SetLogger(nil)
}

func mustAssemble(t *testing.T, spec gear.PairSpec, opts ...Option) *Assembly {
	t.Helper()
	a, err := Assemble(spec, opts...)
	if err != nil {
		t.Fatalf("Assemble(%+v): %v", spec, err)
	}
	return a
}

func TestScenarioA(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())

	wantComponents := []string{"25/10 Bevel Gears", "25 Tooth", "10 Tooth"}
	if diff := cmp.Diff(wantComponents, a.Plan.Components()); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}

	groups := a.Plan.ByKind(plan.OpGroup)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0].Data.(plan.GroupData)
	if g.Name != "BevelGears" || g.First != 1 || g.Last != groups[0].ID-1 {
		t.Errorf("group = %+v, want BevelGears over the whole plan", g)
	}

	if got := a.Wheel.Cone.PitchDiameter; math.Abs(got-50) > 1e-12 {
		t.Errorf("wheel pitch diameter = %g, want 50", got)
	}
	if got := a.Pinion.Cone.PitchDiameter; math.Abs(got-20) > 1e-12 {
		t.Errorf("pinion pitch diameter = %g, want 20", got)
	}
	if len(a.Profiles) != 5 {
		t.Errorf("got %d section profiles, want 5", len(a.Profiles))
	}
	if findings := plan.Validate(a.Plan); len(findings) != 0 {
		t.Errorf("plan findings: %v", findings)
	}
}

func TestStepOrder(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())
	want := []plan.OpKind{
		plan.OpCreateComponent, plan.OpSketchLines,
		plan.OpConstructionPlane, plan.OpSketchProfile,
		plan.OpConstructionPlane, plan.OpSketchProfile,
		plan.OpCreateComponent, plan.OpLoft,
		plan.OpCreateComponent, plan.OpLoft,
		plan.OpRevolveCut, plan.OpRevolveCut,
		plan.OpCircularPattern, plan.OpCircularPattern,
		plan.OpRevolveNewBody, plan.OpRevolveNewBody,
		plan.OpExtrudeCutBore, plan.OpExtrudeCutBore,
		plan.OpGroup,
	}
	got := make([]plan.OpKind, a.Plan.Len())
	for i, s := range a.Plan.Steps {
		got[i] = s.Kind
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("step kinds (-want +got):\n%s", diff)
	}
}

func TestSectionLayout(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())
	approx := cmpopts.EquateApprox(0, 1e-9)

	apex, _ := a.Section.Point(PointApex)
	if diff := cmp.Diff(r2.Vec{X: 0, Y: -10}, apex, approx); diff != "" {
		t.Errorf("apex (-want +got):\n%s", diff)
	}
	center, _ := a.Section.Point(PointPinionCenter)
	if diff := cmp.Diff(r2.Vec{X: 25, Y: -10}, center, approx); diff != "" {
		t.Errorf("pinion centre (-want +got):\n%s", diff)
	}
	for _, m := range a.Members() {
		if diff := cmp.Diff(apex, m.Frame.Apex, approx); diff != "" {
			t.Errorf("%s apex (-want +got):\n%s", m.Role, diff)
		}
		// The face point lies FaceThickness from the cone base along the slant.
		if d := r2.Norm(r2.Sub(m.FacePoint, m.ConeB)); math.Abs(d-10) > 1e-9 {
			t.Errorf("%s face point is %g from the cone base, want 10", m.Role, d)
		}
	}
}

func TestRootConeSelection(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())
	for _, m := range a.Members() {
		p := m.RootConeProfile
		if !(p.Area > 0) {
			t.Fatalf("%s root-cone profile has area %g", m.Role, p.Area)
		}
		// The selected region is the one bounded by the cone base.
		found := false
		for _, v := range p.Loop {
			if r2.Norm(r2.Sub(v, m.ConeB)) < 1e-9 {
				found = true
			}
		}
		if !found {
			t.Errorf("%s root-cone profile %v does not contain the cone base corner %v", m.Role, p.Loop, m.ConeB)
		}
	}
}

func TestBoreFaces(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())
	tests := []struct {
		m        *Member
		from, to int
	}{
		{a.Wheel, 0, 1},
		{a.Pinion, 1, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.m.Role), func(t *testing.T) {
			d := a.Plan.Get(tt.m.BoreStep).Data.(plan.BoreData)
			if len(d.Faces) != 2 {
				t.Fatalf("got %d planar faces, want 2", len(d.Faces))
			}
			if d.From != tt.from || d.To != tt.to {
				t.Errorf("bore faces %d..%d, want %d..%d", d.From, d.To, tt.from, tt.to)
			}
			near := math.Abs(d.Faces[0].Offset + tt.m.Cone.ApexDistance)
			far := math.Abs(d.Faces[1].Offset + tt.m.Cone.ApexDistance)
			if near >= far {
				t.Errorf("faces not ordered by distance from the apex: %g, %g", near, far)
			}
			// The back face is the root-cone base circle.
			if got := d.Faces[1].Radius; math.Abs(got-r2.Norm(r2.Sub(tt.m.ConeB, tt.m.ConeA))) > 1e-9 {
				t.Errorf("back face radius = %g", got)
			}
			if d.Diameter != 8 {
				t.Errorf("bore diameter = %g, want 8", d.Diameter)
			}
		})
	}
}

func TestPatternCounts(t *testing.T) {
	a := mustAssemble(t, gear.DefaultPair())
	for _, m := range a.Members() {
		d := a.Plan.Get(m.PatternStep).Data.(plan.PatternData)
		if d.Count != m.Spec.Teeth || d.Symmetric || math.Abs(d.TotalAngle-2*math.Pi) > 1e-12 {
			t.Errorf("%s pattern = %+v", m.Role, d)
		}
		if d.Body != m.CutStep {
			t.Errorf("%s pattern replicates %s, want the trimmed tooth %s", m.Role, d.Body.Short(), m.CutStep.Short())
		}
	}
}

func TestAssemblyMetadata(t *testing.T) {
	spec := gear.DefaultPair()
	a := mustAssemble(t, spec)
	d := a.Plan.Get(1).Data.(plan.ComponentData)
	if d.Description != spec.Description() {
		t.Errorf("description = %q", d.Description)
	}
	back, err := gear.AttributesToPairSpec(d.Attributes)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(spec, back); diff != "" {
		t.Errorf("attributes round trip (-want +got):\n%s", diff)
	}
	if a.Member("10 Tooth") != a.Pinion || a.Member("nope") != nil {
		t.Error("Member lookup by component name")
	}
}

func TestEqualTeeth(t *testing.T) {
	spec := gear.DefaultPair()
	spec.WheelTeeth, spec.PinionTeeth = 20, 20
	a := mustAssemble(t, spec)
	if a.Wheel.Component == a.Pinion.Component {
		t.Fatalf("both members named %q", a.Wheel.Component)
	}
	if a.Pinion.Component != "20 Tooth (2)" {
		t.Errorf("pinion component = %q", a.Pinion.Component)
	}
}

func TestArcSegmentsOption(t *testing.T) {
	coarse := mustAssemble(t, gear.DefaultPair(), WithArcSegments(2))
	fine := mustAssemble(t, gear.DefaultPair(), WithArcSegments(12), WithPlanName("fine"))
	n := func(a *Assembly) int {
		return len(a.Plan.Get(a.Wheel.ProfileStep).Data.(plan.ProfileData).Outline)
	}
	if n(fine)-n(coarse) != 10 {
		t.Errorf("outline sizes %d and %d differ by %d, want 10", n(coarse), n(fine), n(fine)-n(coarse))
	}
	if fine.Plan.Name != "fine" {
		t.Errorf("plan name = %q", fine.Plan.Name)
	}
}

func TestAssembleRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gear.PairSpec)
		want   error
	}{
		{"three teeth", func(p *gear.PairSpec) { p.PinionTeeth = 3 }, gear.ErrInvalidParameter},
		{"bore at root", func(p *gear.PairSpec) {
			p.BoreDiameter = gear.SpurDimensions(p.Module, p.PinionTeeth, p.PressureAngle).RootDiameter
		}, gear.ErrGeometricInfeasibility},
		{"face wider than slant", func(p *gear.PairSpec) { p.FaceThickness = 100 }, gear.ErrGeometricInfeasibility},
		{"zero module", func(p *gear.PairSpec) { p.Module = 0 }, gear.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := gear.DefaultPair()
			tt.mutate(&spec)
			_, err := Assemble(spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Assemble() error = %v, want %v", err, tt.want)
			}
		})
	}
}
