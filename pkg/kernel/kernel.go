// Package kernel defines the abstract geometry kernel interface consumed by
// the plan executor. Implementations (sdfx) provide solid modelling and
// boolean operations behind this interface, so the gear construction never
// depends on a particular backend.
package kernel

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max r3.Vec)
}

// Axis is a directed line in world space. Direction need not be unit
// length but must not be zero.
type Axis struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// Plane is an oriented plane in world space with orthonormal in-plane axes.
type Plane struct {
	Origin r3.Vec
	XAxis  r3.Vec
	YAxis  r3.Vec
}

// ToWorld maps plane coordinates to world space.
func (p Plane) ToWorld(q r2.Vec) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(q.X, p.XAxis), r3.Scale(q.Y, p.YAxis)))
}

// Normal returns XAxis × YAxis.
func (p Plane) Normal() r3.Vec { return r3.Cross(p.XAxis, p.YAxis) }

// Section is a closed polygon drawn on a plane.
type Section struct {
	Plane   Plane
	Outline []r2.Vec
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Loft sweeps section to a single point, producing a pyramid-like
	// solid whose cross-sections shrink linearly to apex.
	Loft(section Section, apex r3.Vec) (Solid, error)
	// Revolve spins a closed profile drawn in the z=0 plane a full turn
	// about axis, which must lie in the same plane. The profile may touch
	// the axis but not cross it.
	Revolve(profile []r2.Vec, axis Axis) (Solid, error)
	// Cylinder creates a cylinder on the Z axis, centred on the origin.
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, v r3.Vec) Solid
	// Align maps the Z axis through the origin onto axis.
	Align(s Solid, axis Axis) Solid
	// RotateAbout rotates s by angle radians about axis, right handed.
	RotateAbout(s Solid, axis Axis, angle float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
