package gear

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSpurDimensionsScenarioA(t *testing.T) {
	p := DefaultPair()
	tests := []struct {
		name string
		spec Spec
		want Dimensions
	}{
		{"wheel", p.Wheel(), Dimensions{
			PitchDiameter:      50,
			RootDiameter:       50 - 4*1.157,
			BaseCircleDiameter: 50 * math.Cos(deg20),
			OutsideDiameter:    54,
			Addendum:           2,
			Dedendum:           2 * 1.157,
		}},
		{"pinion", p.Pinion(), Dimensions{
			PitchDiameter:      20,
			RootDiameter:       20 - 4*1.157,
			BaseCircleDiameter: 20 * math.Cos(deg20),
			OutsideDiameter:    24,
			Addendum:           2,
			Dedendum:           2 * 1.157,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Dimensions()
			opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-12 })
			if diff := cmp.Diff(tt.want, got, opt); diff != "" {
				t.Errorf("dimensions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	root10 := SpurDimensions(2, 10, deg20).RootDiameter
	tests := []struct {
		name    string
		mutate  func(p *PairSpec)
		wantErr error
	}{
		{"defaults", func(p *PairSpec) {}, nil},
		{"three wheel teeth", func(p *PairSpec) { p.WheelTeeth = 3 }, ErrInvalidParameter},
		{"three pinion teeth", func(p *PairSpec) { p.PinionTeeth = 3 }, ErrInvalidParameter},
		{"four teeth is enough", func(p *PairSpec) { p.PinionTeeth = 4; p.BoreDiameter = 1 }, nil},
		{"zero module", func(p *PairSpec) { p.Module = 0 }, ErrInvalidParameter},
		{"negative backlash", func(p *PairSpec) { p.Backlash = -0.1 }, ErrInvalidParameter},
		{"zero thickness", func(p *PairSpec) { p.FaceThickness = 0 }, ErrInvalidParameter},
		{"right pressure angle", func(p *PairSpec) { p.PressureAngle = math.Pi / 2 }, ErrInvalidParameter},
		{"bore equals root", func(p *PairSpec) { p.BoreDiameter = root10 }, ErrGeometricInfeasibility},
		{"bore inside margin", func(p *PairSpec) { p.BoreDiameter = root10 - BoreMargin/2 }, ErrGeometricInfeasibility},
		{"bore just fits", func(p *PairSpec) { p.BoreDiameter = root10 - 2*BoreMargin }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPair()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllFindings(t *testing.T) {
	p := DefaultPair()
	p.WheelTeeth = 2
	p.Module = -1
	err := p.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("want 2 joined findings, got %v", err)
	}
}

func TestNaming(t *testing.T) {
	p := DefaultPair()
	if got := ComponentName(p.WheelTeeth); got != "25 Tooth" {
		t.Errorf("wheel component = %q", got)
	}
	if got := ComponentName(p.PinionTeeth); got != "10 Tooth" {
		t.Errorf("pinion component = %q", got)
	}
	if got := p.AssemblyName(); got != "25/10 Bevel Gears" {
		t.Errorf("assembly = %q", got)
	}
	want := "Gear; Module: 2; Num Teeth: 25; Num Teeth1: 10; Pressure Angle: 20; Backlash: 0.05"
	if got := p.Description(); got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}

func TestAttributesRoundTrip(t *testing.T) {
	in := DefaultPair()
	in.PressureAngle = 17.25 * math.Pi / 180
	in.Backlash = 0.033
	out, err := AttributesToPairSpec(in.Attributes())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
	if diff := cmp.Diff(in.Wheel().Dimensions(), out.Wheel().Dimensions()); diff != "" {
		t.Errorf("derived dimensions changed:\n%s", diff)
	}
}

func TestAttributesMissingKey(t *testing.T) {
	attrs := DefaultPair().Attributes()
	delete(attrs, AttrHoleDiam)
	if _, err := AttributesToPairSpec(attrs); err == nil {
		t.Error("expected error for missing holeDiam")
	}
}

func TestParsePressureAngle(t *testing.T) {
	tests := []struct {
		in      string
		wantDeg float64
		wantErr bool
	}{
		{"14.5 deg", 14.5, false},
		{"20 deg", 20, false},
		{"25 DEG", 25, false},
		{"17.5", 17.5, false},
		{"22deg", 22, false},
		{"Custom", 0, true},
		{"ninety", 0, true},
		{"95", 0, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePressureAngle(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && math.Abs(Degrees(got)-tt.wantDeg) > 1e-9 {
				t.Errorf("got %g deg, want %g", Degrees(got), tt.wantDeg)
			}
		})
	}
	if PresetFor(Preset25.Radians()) != Preset25 || PresetFor(0.3) != PresetCustom {
		t.Error("PresetFor mismatch")
	}
}
