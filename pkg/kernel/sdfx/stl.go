package sdfx

import (
	"fmt"

	"github.com/chazu/bevel/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangles converts the indexed triangles of a mesh into sdfx triangles.
func Triangles(m *kernel.Mesh) ([]*sdf.Triangle3, error) {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		var tri sdf.Triangle3
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[3*t+j])
			if 3*idx+2 >= len(m.Vertices) {
				return nil, fmt.Errorf("stl: %s: triangle %d references vertex %d of %d", m.PartName, t, idx, m.VertexCount())
			}
			tri[j] = v3.Vec{
				X: float64(m.Vertices[3*idx]),
				Y: float64(m.Vertices[3*idx+1]),
				Z: float64(m.Vertices[3*idx+2]),
			}
		}
		tris = append(tris, &tri)
	}
	return tris, nil
}

// SaveSTL writes the meshes to path as one binary STL file.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	var all []*sdf.Triangle3
	for _, m := range meshes {
		tris, err := Triangles(m)
		if err != nil {
			return err
		}
		all = append(all, tris...)
	}
	if len(all) == 0 {
		return fmt.Errorf("stl: no triangles to write")
	}
	if err := render.SaveSTL(path, all); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	return nil
}
