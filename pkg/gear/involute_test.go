package gear

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestInvolutePointRadius(t *testing.T) {
	tests := []struct {
		name   string
		base   float64
		target float64
	}{
		{"on base circle", 10, 10},
		{"just outside", 10, 10.001},
		{"pitch of small gear", 9.397, 10},
		{"far out", 5, 40},
		{"tiny base", 0.01, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := InvolutePoint(tt.base, tt.target)
			if err != nil {
				t.Fatalf("InvolutePoint(%g, %g): %v", tt.base, tt.target, err)
			}
			if got := r2.Norm(p); math.Abs(got-tt.target) > 1e-9 {
				t.Errorf("|p| = %.12f, want %.12f", got, tt.target)
			}
		})
	}
}

func TestInvolutePointStartsOnAxis(t *testing.T) {
	p, err := InvolutePoint(7, 7)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.X-7) > 1e-12 || math.Abs(p.Y) > 1e-12 {
		t.Errorf("involute at base radius = %v, want (7, 0)", p)
	}
}

func TestInvolutePointUnwindsCounterClockwise(t *testing.T) {
	prev := 0.0
	for _, r := range []float64{10.5, 11, 12, 14, 18} {
		p, err := InvolutePoint(10, r)
		if err != nil {
			t.Fatal(err)
		}
		a := math.Atan2(p.Y, p.X)
		if a <= prev {
			t.Errorf("angle at r=%g is %g, not beyond %g", r, a, prev)
		}
		prev = a
	}
}

func TestInvolutePointInsideBaseCircle(t *testing.T) {
	_, err := InvolutePoint(10, 9.99)
	if !errors.Is(err, ErrGeometricInfeasibility) {
		t.Fatalf("err = %v, want ErrGeometricInfeasibility", err)
	}
	_, err = InvolutePoint(0, 5)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}
