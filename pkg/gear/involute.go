package gear

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// InvolutePoint returns the point at distance targetRadius from the origin
// on the involute of the circle with radius baseRadius. The involute starts
// on the positive x axis and unwinds counter-clockwise.
//
// The curve is parametrised by radius rather than by roll angle, which is
// what evenly spaced radial sampling needs. A target inside the base circle
// has no involute point and yields ErrGeometricInfeasibility.
func InvolutePoint(baseRadius, targetRadius float64) (r2.Vec, error) {
	if !(baseRadius > 0) {
		return r2.Vec{}, invalidf("involute base radius must be positive, got %g", baseRadius)
	}
	if targetRadius < baseRadius {
		return r2.Vec{}, infeasiblef("involute target radius %g is inside base circle %g", targetRadius, baseRadius)
	}
	triangleSide := math.Sqrt(targetRadius*targetRadius - baseRadius*baseRadius)
	alpha := triangleSide / baseRadius
	theta := alpha - math.Acos(baseRadius/targetRadius)
	return r2.Vec{
		X: targetRadius * math.Cos(theta),
		Y: targetRadius * math.Sin(theta),
	}, nil
}

// rotate turns p about the origin by angle radians.
func rotate(p r2.Vec, angle float64) r2.Vec {
	sin, cos := math.Sincos(angle)
	return r2.Vec{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// mirror reflects p about the x axis.
func mirror(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X, Y: -p.Y}
}
