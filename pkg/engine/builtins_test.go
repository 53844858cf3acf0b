package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/bevel/pkg/gear"
	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(bevel-gears :module 2)`,
			expect: `(bevel_gears "__kw_module" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(bevel-gears :bore 8 :backlash 0.1)`,
			expect: `(bevel_gears "__kw_bore" 8 "__kw_backlash" 0.1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(pitch-diameter m z)`,
			expect: `(pitch_diameter m z)`,
		},
		{
			name:   "arrow identifier",
			input:  `(deg->rad 20)`,
			expect: `(deg_to_rad 20)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:wheel-teeth`,
			expect: `"__kw_wheel-teeth"`,
		},
		{
			name:   "arrow in string preserved",
			input:  `"deg->rad"`,
			expect: `"deg->rad"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// bevel-gears
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) []gear.PairSpec {
	t.Helper()
	pairs, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return pairs
}

func TestBevelGearsDefaults(t *testing.T) {
	pairs := mustEvaluate(t, `(bevel-gears)`)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if diff := cmp.Diff(gear.DefaultPair(), pairs[0]); diff != "" {
		t.Errorf("default pair (-want +got):\n%s", diff)
	}
}

func TestBevelGearsKeywords(t *testing.T) {
	pairs := mustEvaluate(t, `
(bevel-gears :module 1.5 :wheel-teeth 40 :pinion-teeth 16
             :pressure-angle 14.5 :backlash 0 :thickness 6 :bore 5)
`)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	want := gear.PairSpec{
		Module:        1.5,
		WheelTeeth:    40,
		PinionTeeth:   16,
		PressureAngle: 14.5 * math.Pi / 180,
		Backlash:      0,
		FaceThickness: 6,
		BoreDiameter:  5,
	}
	if diff := cmp.Diff(want, pairs[0]); diff != "" {
		t.Errorf("pair (-want +got):\n%s", diff)
	}
}

func TestPressureAnglePreset(t *testing.T) {
	pairs := mustEvaluate(t, `(bevel-gears :pressure-angle "25 deg")`)
	if got := pairs[0].PressureAngle; got != gear.Preset25.Radians() {
		t.Errorf("pressure angle = %g, want %g", got, gear.Preset25.Radians())
	}
}

func TestVariablesAndHelpers(t *testing.T) {
	source := `
; a 3:1 pair sized from the wheel's pitch diameter
(def m 1)
(def z 36)
(def pd (pitch-diameter m z))
(bevel-gears :module m :wheel-teeth z :pinion-teeth (/ z 3) :bore (/ pd 12))
(bevel-gears :wheel-teeth 30 :pinion-teeth 15)
`
	pairs := mustEvaluate(t, source)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].PinionTeeth != 12 || pairs[0].BoreDiameter != 3 {
		t.Errorf("first pair = %+v", pairs[0])
	}
	if pairs[1].WheelTeeth != 30 || pairs[1].Module != 2 {
		t.Errorf("second pair = %+v", pairs[1])
	}
}

func TestDegToRad(t *testing.T) {
	// Declaring through the builtin checks the value inside the sandbox.
	pairs := mustEvaluate(t, `(bevel-gears :backlash (deg->rad 180))`)
	if got := pairs[0].Backlash; math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("deg->rad 180 = %g", got)
	}
}

func TestBevelGearsErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"too few teeth", `(bevel-gears :pinion-teeth 3)`, "4 or more"},
		{"bore too large", `(bevel-gears :bore 30)`, "center hole"},
		{"unknown keyword", `(bevel-gears :helix 30)`, "unknown keyword :helix"},
		{"fractional teeth", `(bevel-gears :wheel-teeth 25.5)`, "whole number"},
		{"bad preset", `(bevel-gears :pressure-angle "steep")`, "pressure angle"},
		{"positional", `(bevel-gears 2)`, "positional"},
		{"pitch-diameter arity", `(pitch-diameter 2)`, "pitch-diameter requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if pairs != nil {
				t.Errorf("expected nil pairs, got %v", pairs)
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message %q does not contain %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	pairs := mustEvaluate(t, `(def a (* 2 (+ 3 4)))`)
	if len(pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(pairs))
	}
}
