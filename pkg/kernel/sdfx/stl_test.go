package sdfx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/bevel/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func triangleMesh(name string) *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
		PartName: name,
	}
}

func TestSaveSTLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.stl")
	if err := SaveSTL(path, triangleMesh("25 Tooth"), triangleMesh("10 Tooth")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 80+4+2*50 {
		t.Errorf("STL size = %d bytes, want %d", info.Size(), 80+4+2*50)
	}
	tris, err := render.LoadSTL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 2 {
		t.Fatalf("loaded %d triangles, want 2", len(tris))
	}
	if v := tris[0][1]; v.X != 1 || v.Y != 0 || v.Z != 0 {
		t.Errorf("second vertex = %v", v)
	}
	if n := tris[1].Normal(); n.Z != 1 {
		t.Errorf("normal = %v, want +Z", n)
	}
}

func TestSaveSTLMesh(t *testing.T) {
	k := New(WithMeshCells(testCells))
	m, err := k.ToMesh(mustCylinder(t, k, 10, 5))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cylinder.stl")
	if err := SaveSTL(path, m); err != nil {
		t.Fatal(err)
	}
	tris, err := render.LoadSTL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != m.TriangleCount() {
		t.Errorf("loaded %d triangles, mesh has %d", len(tris), m.TriangleCount())
	}
}

func TestSaveSTLErrors(t *testing.T) {
	dir := t.TempDir()
	if err := SaveSTL(filepath.Join(dir, "empty.stl"), &kernel.Mesh{}); err == nil {
		t.Error("expected error for an empty mesh")
	}
	bad := triangleMesh("bad")
	bad.Indices = []uint32{0, 1, 7}
	if err := SaveSTL(filepath.Join(dir, "bad.stl"), bad); err == nil {
		t.Error("expected error for an out of range index")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.stl")); !os.IsNotExist(err) {
		t.Error("a rejected mesh should not leave a file behind")
	}
}

func TestDistance(t *testing.T) {
	k := New()
	cyl := mustCylinder(t, k, 10, 5)
	if d := Distance(cyl, r3.Vec{}); d >= 0 {
		t.Errorf("distance at center = %f, want negative", d)
	}
	if d := Distance(cyl, r3.Vec{X: 8}); d <= 0 {
		t.Errorf("distance outside = %f, want positive", d)
	}
}
