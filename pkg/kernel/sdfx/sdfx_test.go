package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/bevel/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const testCells = 40

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax r3.Vec, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	got := [][2]float64{{min.X, wantMin.X}, {min.Y, wantMin.Y}, {min.Z, wantMin.Z},
		{max.X, wantMax.X}, {max.Y, wantMax.Y}, {max.Z, wantMax.Z}}
	for i, g := range got {
		if math.Abs(g[0]-g[1]) > tol {
			t.Errorf("bounds[%d] = %f, expected ~%f (min %v, max %v)", i, g[0], g[1], min, max)
		}
	}
}

func mustCylinder(t *testing.T, k *SdfxKernel, h, r float64) kernel.Solid {
	t.Helper()
	c, err := k.Cylinder(h, r)
	if err != nil {
		t.Fatalf("Cylinder(%g, %g): %v", h, r, err)
	}
	return c
}

func TestCylinder(t *testing.T) {
	k := New(WithMeshCells(testCells))
	cyl := mustCylinder(t, k, 50, 10)
	checkBounds(t, cyl, r3.Vec{X: -10, Y: -10, Z: -25}, r3.Vec{X: 10, Y: 10, Z: 25}, 1e-9)

	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestCylinderRejectsBadSize(t *testing.T) {
	k := New()
	if _, err := k.Cylinder(-1, 5); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestDifference(t *testing.T) {
	k := New(WithMeshCells(testCells))
	outer := mustCylinder(t, k, 20, 10)
	outerMesh, err := k.ToMesh(outer)
	if err != nil {
		t.Fatalf("ToMesh(outer) failed: %v", err)
	}
	hole := mustCylinder(t, k, 30, 4)
	diffMesh, err := k.ToMesh(k.Difference(outer, hole))
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// A tube has an inner wall as well as the outer one.
	if diffMesh.TriangleCount() <= outerMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than the cylinder (%d triangles)",
			diffMesh.TriangleCount(), outerMesh.TriangleCount())
	}
}

func TestUnionBounds(t *testing.T) {
	k := New()
	a := mustCylinder(t, k, 10, 1)
	b := k.Translate(mustCylinder(t, k, 10, 1), r3.Vec{X: 5})
	checkBounds(t, k.Union(a, b), r3.Vec{X: -1, Y: -1, Z: -5}, r3.Vec{X: 6, Y: 1, Z: 5}, 1e-9)
}

func TestAlign(t *testing.T) {
	k := New()
	cyl := mustCylinder(t, k, 10, 1)
	tests := []struct {
		name     string
		axis     kernel.Axis
		min, max r3.Vec
	}{
		{"x axis", kernel.Axis{Origin: r3.Vec{X: 5}, Direction: r3.Vec{X: 1}},
			r3.Vec{X: 0, Y: -1, Z: -1}, r3.Vec{X: 10, Y: 1, Z: 1}},
		{"y axis", kernel.Axis{Origin: r3.Vec{Y: -5}, Direction: r3.Vec{Y: 2}},
			r3.Vec{X: -1, Y: -10, Z: -1}, r3.Vec{X: 1, Y: 0, Z: 1}},
		{"reversed z", kernel.Axis{Direction: r3.Vec{Z: -1}},
			r3.Vec{X: -1, Y: -1, Z: -5}, r3.Vec{X: 1, Y: 1, Z: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkBounds(t, k.Align(cyl, tt.axis), tt.min, tt.max, 1e-6)
		})
	}
}

func TestRotateAbout(t *testing.T) {
	k := New()
	// A thin cylinder standing at x=3 swings to y=3 after a quarter turn
	// about the Z axis.
	post := k.Translate(mustCylinder(t, k, 2, 0.5), r3.Vec{X: 3})
	turned := k.RotateAbout(post, kernel.Axis{Direction: r3.Vec{Z: 1}}, math.Pi/2)
	checkBounds(t, turned, r3.Vec{X: -0.5, Y: 2.5, Z: -1}, r3.Vec{X: 0.5, Y: 3.5, Z: 1}, 1e-6)
}

func TestRevolve(t *testing.T) {
	k := New(WithMeshCells(testCells))
	// Rectangle 1..3 from the Y axis, 2..5 along it: a thick washer.
	rect := []r2.Vec{{X: 1, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 5}, {X: 1, Y: 5}}
	ring, err := k.Revolve(rect, kernel.Axis{Direction: r3.Vec{Y: 1}})
	if err != nil {
		t.Fatal(err)
	}
	checkBounds(t, ring, r3.Vec{X: -3, Y: 2, Z: -3}, r3.Vec{X: 3, Y: 5, Z: 3}, 1e-6)

	s := unwrap(ring)
	inside := []v3.Vec{{X: 2, Y: 3.5}, {X: 0, Y: 3.5, Z: -2}, {X: -1.5, Y: 2.5, Z: 1.2}}
	for _, p := range inside {
		if d := s.Evaluate(p); d >= 0 {
			t.Errorf("Evaluate(%v) = %g, want inside", p, d)
		}
	}
	outside := []v3.Vec{{Y: 3.5}, {X: 2, Y: 6}, {X: 4, Y: 3}}
	for _, p := range outside {
		if d := s.Evaluate(p); d <= 0 {
			t.Errorf("Evaluate(%v) = %g, want outside", p, d)
		}
	}

	mesh, err := k.ToMesh(ring)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.IsEmpty() {
		t.Error("revolve mesh is empty")
	}
}

func TestRevolveErrors(t *testing.T) {
	k := New()
	axis := kernel.Axis{Direction: r3.Vec{Y: 1}}
	tests := []struct {
		name    string
		profile []r2.Vec
		axis    kernel.Axis
	}{
		{"too few points", []r2.Vec{{X: 1}, {X: 2}}, axis},
		{"crosses axis", []r2.Vec{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, axis},
		{"no direction", []r2.Vec{{X: 1}, {X: 2}, {X: 2, Y: 1}}, kernel.Axis{}},
		{"axis out of plane", []r2.Vec{{X: 1}, {X: 2}, {X: 2, Y: 1}}, kernel.Axis{Direction: r3.Vec{Z: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := k.Revolve(tt.profile, tt.axis); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoft(t *testing.T) {
	k := New(WithMeshCells(testCells))
	square := []r2.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	sec := kernel.Section{
		Plane:   kernel.Plane{Origin: r3.Vec{Z: 10}, XAxis: r3.Vec{X: 1}, YAxis: r3.Vec{Y: 1}},
		Outline: square,
	}
	pyramid, err := k.Loft(sec, r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	checkBounds(t, pyramid, r3.Vec{X: -1, Y: -1}, r3.Vec{X: 1, Y: 1, Z: 10}, 1e-12)

	s := unwrap(pyramid)
	tests := []struct {
		p      v3.Vec
		inside bool
	}{
		{v3.Vec{Z: 5}, true},
		{v3.Vec{X: 0.4, Y: -0.4, Z: 5}, true},
		{v3.Vec{X: 0.6, Z: 5}, false}, // half way up the square is half as wide
		{v3.Vec{Z: 11}, false},
		{v3.Vec{Z: -1}, false},
		{v3.Vec{X: 0.9, Y: 0.9, Z: 9.5}, true},
	}
	for _, tt := range tests {
		if d := s.Evaluate(tt.p); (d < 0) != tt.inside {
			t.Errorf("Evaluate(%v) = %g, inside = %v", tt.p, d, tt.inside)
		}
	}

	mesh, err := k.ToMesh(pyramid)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.IsEmpty() {
		t.Error("loft mesh is empty")
	}
}

func TestLoftErrors(t *testing.T) {
	k := New()
	tri := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	flat := kernel.Plane{XAxis: r3.Vec{X: 1}, YAxis: r3.Vec{Y: 1}}
	if _, err := k.Loft(kernel.Section{Plane: flat, Outline: tri}, r3.Vec{X: 3}); err == nil {
		t.Error("expected error for an apex in the section plane")
	}
	if _, err := k.Loft(kernel.Section{Plane: flat, Outline: tri[:2]}, r3.Vec{Z: 1}); err == nil {
		t.Error("expected error for a two point section")
	}
	parallel := kernel.Plane{XAxis: r3.Vec{X: 1}, YAxis: r3.Vec{X: 2}}
	if _, err := k.Loft(kernel.Section{Plane: parallel, Outline: tri}, r3.Vec{Z: 1}); err == nil {
		t.Error("expected error for a degenerate plane")
	}
}

func TestMeshCellsOption(t *testing.T) {
	coarse := New(WithMeshCells(12))
	fine := New(WithMeshCells(48))
	cyl := mustCylinder(t, coarse, 10, 5)
	a, err := coarse.ToMesh(cyl)
	if err != nil {
		t.Fatal(err)
	}
	b, err := fine.ToMesh(cyl)
	if err != nil {
		t.Fatal(err)
	}
	if b.TriangleCount() <= a.TriangleCount() {
		t.Errorf("48 cells gave %d triangles, 12 cells gave %d", b.TriangleCount(), a.TriangleCount())
	}
	if New(WithMeshCells(0)).meshCells != defaultMeshCells {
		t.Error("WithMeshCells(0) should keep the default")
	}
}
