package kernel

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, -2, 3, -4, 5, 0.5, 2, 2, 2}}
	min, max := m.Bounds()
	if min != (r3.Vec{X: -4, Y: -2, Z: 0.5}) || max != (r3.Vec{X: 2, Y: 5, Z: 3}) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
	if min, max := (&Mesh{}).Bounds(); min != (r3.Vec{}) || max != (r3.Vec{}) {
		t.Errorf("empty Bounds() = %v, %v", min, max)
	}
}

func TestPlaneToWorld(t *testing.T) {
	p := Plane{Origin: r3.Vec{X: 1}, XAxis: r3.Vec{Y: 1}, YAxis: r3.Vec{Z: 1}}
	got := p.ToWorld(r2.Vec{X: 2, Y: 3})
	if got != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("ToWorld = %v", got)
	}
	if n := p.Normal(); n != (r3.Vec{X: 1}) {
		t.Errorf("Normal = %v", n)
	}
}
