// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/bevel/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// eps is the length below which directions and offsets count as zero.
const eps = 1e-9

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max r3.Vec) {
	bb := s.s.BoundingBox()
	return fromV3(bb.Min), fromV3(bb.Max)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the number of marching cubes cells along the longest
// side of a solid's bounding box.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: defaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func toV3(v r3.Vec) v3.Vec   { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromV3(v v3.Vec) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Distance returns the signed distance from p to the surface of s,
// negative inside the solid.
func Distance(s kernel.Solid, p r3.Vec) float64 {
	return unwrap(s).Evaluate(toV3(p))
}

func toV2s(pts []r2.Vec) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		out[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return out
}

// Loft sweeps the section polygon to apex. The result is the cone over
// the polygon: every cross-section parallel to the section plane is the
// polygon scaled about the apex.
func (k *SdfxKernel) Loft(section kernel.Section, apex r3.Vec) (kernel.Solid, error) {
	if len(section.Outline) < 3 {
		return nil, fmt.Errorf("sdfx: loft section has %d points", len(section.Outline))
	}
	poly, err := sdf.Polygon2D(toV2s(section.Outline))
	if err != nil {
		return nil, fmt.Errorf("sdfx: loft section: %w", err)
	}
	n := section.Plane.Normal()
	if r3.Norm(n) < eps {
		return nil, errors.New("sdfx: loft section plane has parallel axes")
	}
	n = r3.Unit(n)
	h := r3.Dot(r3.Sub(section.Plane.Origin, apex), n)
	if math.Abs(h) < eps {
		return nil, errors.New("sdfx: loft apex lies in the section plane")
	}
	if h < 0 {
		n, h = r3.Scale(-1, n), -h
	}

	lo, hi := apex, apex
	for _, p := range section.Outline {
		w := section.Plane.ToWorld(p)
		lo = r3.Vec{X: math.Min(lo.X, w.X), Y: math.Min(lo.Y, w.Y), Z: math.Min(lo.Z, w.Z)}
		hi = r3.Vec{X: math.Max(hi.X, w.X), Y: math.Max(hi.Y, w.Y), Z: math.Max(hi.Z, w.Z)}
	}
	return wrap(&cone3{
		section: poly,
		plane:   section.Plane,
		apex:    apex,
		normal:  n,
		height:  h,
		bb:      sdf.Box3{Min: toV3(lo), Max: toV3(hi)},
	}), nil
}

// cone3 is the SDF3 of a polygon lofted to a point.
type cone3 struct {
	section sdf.SDF2
	plane   kernel.Plane
	apex    r3.Vec
	normal  r3.Vec  // unit, from the apex toward the section plane
	height  float64 // apex to section plane
	bb      sdf.Box3
}

// Evaluate returns an approximate distance to the cone. The polygon
// distance is taken in the cross-section through p and scaled back, which
// keeps the sign exact and the magnitude within the scale factor.
func (c *cone3) Evaluate(p v3.Vec) float64 {
	rel := r3.Sub(fromV3(p), c.apex)
	t := r3.Dot(rel, c.normal) / c.height
	if t <= eps {
		return math.Max(r3.Norm(rel), -t*c.height)
	}
	d := r3.Sub(r3.Add(c.apex, r3.Scale(1/t, rel)), c.plane.Origin)
	uv := v2.Vec{X: r3.Dot(d, c.plane.XAxis), Y: r3.Dot(d, c.plane.YAxis)}
	return math.Max(t*c.section.Evaluate(uv), (t-1)*c.height)
}

// BoundingBox returns the bounding box of the section and the apex.
func (c *cone3) BoundingBox() sdf.Box3 {
	return c.bb
}

// Revolve spins the profile a full turn about the axis. Profile and axis
// lie in the z=0 plane; the profile is expressed as (distance from axis,
// offset along axis), revolved about Z and then aligned with the axis.
func (k *SdfxKernel) Revolve(profile []r2.Vec, axis kernel.Axis) (kernel.Solid, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("sdfx: revolve profile has %d points", len(profile))
	}
	if r3.Norm(axis.Direction) < eps {
		return nil, errors.New("sdfx: revolve axis has no direction")
	}
	d := r3.Unit(axis.Direction)
	if math.Abs(d.Z) > eps || math.Abs(axis.Origin.Z) > eps {
		return nil, fmt.Errorf("sdfx: revolve axis %v is not in the z=0 plane", axis)
	}
	o := r2.Vec{X: axis.Origin.X, Y: axis.Origin.Y}
	dir := r2.Unit(r2.Vec{X: d.X, Y: d.Y})

	pts := make([]v2.Vec, len(profile))
	side := 0.0
	for i, p := range profile {
		rel := r2.Sub(p, o)
		r := r2.Cross(dir, rel)
		switch {
		case math.Abs(r) <= eps:
		case side == 0:
			side = math.Copysign(1, r)
		case r*side < 0:
			return nil, fmt.Errorf("sdfx: revolve profile crosses the axis at point %d", i)
		}
		pts[i] = v2.Vec{X: math.Abs(r), Y: r2.Dot(rel, dir)}
	}
	poly, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve profile: %w", err)
	}
	s, err := sdf.Revolve3D(poly)
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	return k.Align(wrap(s), axis), nil
}

// Cylinder creates a cylinder with the given height and radius, centred
// on the origin along Z.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(toV3(v))))
}

// Align maps the Z axis onto axis: a rotation taking +Z to the axis
// direction, then a translation to the axis origin.
func (k *SdfxKernel) Align(s kernel.Solid, axis kernel.Axis) kernel.Solid {
	d := r3.Unit(axis.Direction)
	z := r3.Vec{Z: 1}
	m := sdf.Identity3d()
	if c := r3.Cross(z, d); r3.Norm(c) > eps {
		m = sdf.Rotate3d(toV3(r3.Unit(c)), math.Acos(math.Max(-1, math.Min(1, d.Z))))
	} else if d.Z < 0 {
		m = sdf.RotateX(math.Pi)
	}
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(toV3(axis.Origin)).Mul(m)))
}

// RotateAbout rotates a solid by angle radians about axis.
func (k *SdfxKernel) RotateAbout(s kernel.Solid, axis kernel.Axis, angle float64) kernel.Solid {
	m := sdf.Translate3d(toV3(axis.Origin)).
		Mul(sdf.Rotate3d(toV3(r3.Unit(axis.Direction)), angle)).
		Mul(sdf.Translate3d(toV3(r3.Scale(-1, axis.Origin))))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (mesh *kernel.Mesh, err error) {
	sdf3 := unwrap(s)
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("sdfx: meshing failed: %v", r)
		}
	}()

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
