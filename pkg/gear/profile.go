package gear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// RootJoin selects how the involute flanks are connected at the root.
type RootJoin int

const (
	// DirectJoin joins the two flank start points with one line. Used when
	// the involute reaches down to the root circle.
	DirectJoin RootJoin = iota
	// TangentFillet drops a line from each flank start to the root circle
	// and joins the two feet with a base line.
	TangentFillet
)

func (j RootJoin) String() string {
	switch j {
	case DirectJoin:
		return "direct"
	case TangentFillet:
		return "tangent-fillet"
	default:
		return fmt.Sprintf("RootJoin(%d)", int(j))
	}
}

// rootInset pulls the fillet feet just inside the root circle so the
// profile overlaps the root cone.
const rootInset = 0.001

// SegmentKind tags a sketch entity of a tooth outline.
type SegmentKind string

const (
	SegmentSpline SegmentKind = "spline"
	SegmentArc    SegmentKind = "arc"
	SegmentLine   SegmentKind = "line"
)

// Segment is one sketch entity. Splines carry their fit points, arcs their
// start, mid and end points, lines their two end points.
type Segment struct {
	Kind   SegmentKind `json:"kind"`
	Points []r2.Vec    `json:"points"`
}

// ToothProfile is the closed planar outline of one tooth on the back-cone
// plane, centred on the +x axis.
type ToothProfile struct {
	Module float64 `json:"module"`
	Teeth  int     `json:"teeth"`
	Ratio  float64 `json:"ratio"`

	// Equivalent spur gear on the back cone.
	EquivalentRadius   float64 `json:"equivalent_radius"`
	EquivalentTeeth    float64 `json:"equivalent_teeth"`
	PitchDiameter      float64 `json:"pitch_diameter"`
	RootDiameter       float64 `json:"root_diameter"`
	BaseCircleDiameter float64 `json:"base_circle_diameter"`
	OutsideDiameter    float64 `json:"outside_diameter"`

	PitchPointAngle float64 `json:"pitch_point_angle"`
	ThicknessAngle  float64 `json:"thickness_angle"`
	BacklashAngle   float64 `json:"backlash_angle"`
	RotateAngle     float64 `json:"rotate_angle"`

	Flank1 []r2.Vec `json:"flank1"` // lower flank, root to tip
	Flank2 []r2.Vec `json:"flank2"` // Flank1 mirrored about the x axis
	TipArc Arc3     `json:"tip_arc"`

	Join RootJoin `json:"join"`
	// RootPoints are the fillet feet. For DirectJoin they are the flank
	// start points.
	RootPoints [2]r2.Vec `json:"root_points"`
	// RootPoint seeds the root-cone construction.
	RootPoint r2.Vec `json:"root_point"`
}

// BuildProfile computes the tooth profile of a bevel gear member with the
// given tooth count. ratio is this member's teeth over its mate's teeth;
// it sizes the back cone that turns the bevel tooth into an equivalent
// spur tooth (Tredgold's approximation).
func BuildProfile(module float64, teeth int, pressureAngle, backlash, ratio float64) (*ToothProfile, error) {
	switch {
	case !(module > 0):
		return nil, invalidf("module must be positive, got %g", module)
	case teeth < 1:
		return nil, invalidf("tooth count must be positive, got %d", teeth)
	case !(pressureAngle > 0) || pressureAngle >= halfPi:
		return nil, invalidf("pressure angle out of range: %g rad", pressureAngle)
	case backlash < 0:
		return nil, invalidf("backlash must not be negative, got %g", backlash)
	case !(ratio > 0):
		return nil, invalidf("gear ratio must be positive, got %g", ratio)
	}

	r0 := module * float64(teeth) / 2
	bca := module * float64(teeth) * ratio
	R0 := math.Sqrt(bca*bca+4*r0*r0) / 2
	zi := 2 * R0 / module

	dims := dimensionsFromPitch(2*R0, module, pressureAngle)
	tp := &ToothProfile{
		Module:             module,
		Teeth:              teeth,
		Ratio:              ratio,
		EquivalentRadius:   R0,
		EquivalentTeeth:    zi,
		PitchDiameter:      dims.PitchDiameter,
		RootDiameter:       dims.RootDiameter,
		BaseCircleDiameter: dims.BaseCircleDiameter,
		OutsideDiameter:    dims.OutsideDiameter,
	}
	baseR := tp.BaseCircleDiameter / 2

	radii := floats.Span(make([]float64, ProfileSamples), tp.RootDiameter/2, tp.OutsideDiameter/2)
	flank := make([]r2.Vec, 0, len(radii))
	for _, r := range radii {
		if r < baseR {
			continue
		}
		p, err := InvolutePoint(baseR, r)
		if err != nil {
			return nil, fmt.Errorf("tooth profile: %w", err)
		}
		flank = append(flank, p)
	}
	if len(flank) < 2 {
		return nil, infeasiblef("only %d involute samples lie outside the base circle", len(flank))
	}

	pitchPoint, err := InvolutePoint(baseR, tp.PitchDiameter/2)
	if err != nil {
		return nil, fmt.Errorf("tooth profile: pitch point: %w", err)
	}
	tp.PitchPointAngle = math.Atan(pitchPoint.Y / pitchPoint.X)
	tp.ThicknessAngle = math.Pi / zi
	tp.BacklashAngle = (backlash / (tp.PitchDiameter / 2)) * 0.25
	tp.RotateAngle = -(tp.ThicknessAngle/2 + tp.PitchPointAngle - tp.BacklashAngle)

	tp.Flank1 = make([]r2.Vec, len(flank))
	tp.Flank2 = make([]r2.Vec, len(flank))
	for i, p := range flank {
		tp.Flank1[i] = rotate(p, tp.RotateAngle)
		tp.Flank2[i] = mirror(tp.Flank1[i])
	}

	last := len(flank) - 1
	tp.TipArc = Arc3{
		Start: tp.Flank1[last],
		Mid:   r2.Vec{X: tp.OutsideDiameter / 2, Y: 0},
		End:   tp.Flank2[last],
	}

	if tp.BaseCircleDiameter < tp.RootDiameter {
		tp.Join = DirectJoin
		tp.RootPoints = [2]r2.Vec{tp.Flank1[0], tp.Flank2[0]}
		tp.RootPoint = tp.Flank1[0]
		return tp, nil
	}

	footR := tp.RootDiameter/2 - rootInset
	if !(footR > 0) {
		return nil, infeasiblef("root circle radius %g leaves no room for a root fillet", tp.RootDiameter/2)
	}
	angle := math.Atan(tp.Flank1[0].Y / tp.Flank1[0].X)
	foot := r2.Vec{X: footR * math.Cos(angle), Y: footR * math.Sin(angle)}
	tp.Join = TangentFillet
	tp.RootPoints = [2]r2.Vec{foot, mirror(foot)}
	tp.RootPoint = foot
	return tp, nil
}

// Outline returns the tooth as a closed counter-clockwise polygon without a
// repeated closing vertex. The tip arc is split into arcSegments pieces.
func (tp *ToothProfile) Outline(arcSegments int) []r2.Vec {
	if arcSegments < 2 {
		arcSegments = 2
	}
	n := len(tp.Flank1)
	pts := make([]r2.Vec, 0, 2*n+arcSegments+2)
	pts = append(pts, tp.Flank1...)
	arc := tp.TipArc.Sample(arcSegments)
	pts = append(pts, arc[1:len(arc)-1]...)
	for i := n - 1; i >= 0; i-- {
		pts = append(pts, tp.Flank2[i])
	}
	if tp.Join == TangentFillet {
		pts = append(pts, tp.RootPoints[1], tp.RootPoints[0])
	}
	return pts
}

// Segments returns the sketch entities that make up the outline.
func (tp *ToothProfile) Segments() []Segment {
	segs := []Segment{
		{Kind: SegmentSpline, Points: append([]r2.Vec(nil), tp.Flank1...)},
		{Kind: SegmentSpline, Points: append([]r2.Vec(nil), tp.Flank2...)},
		{Kind: SegmentArc, Points: []r2.Vec{tp.TipArc.Start, tp.TipArc.Mid, tp.TipArc.End}},
	}
	switch tp.Join {
	case DirectJoin:
		segs = append(segs, Segment{Kind: SegmentLine, Points: []r2.Vec{tp.Flank2[0], tp.Flank1[0]}})
	case TangentFillet:
		segs = append(segs,
			Segment{Kind: SegmentLine, Points: []r2.Vec{tp.RootPoints[0], tp.Flank1[0]}},
			Segment{Kind: SegmentLine, Points: []r2.Vec{tp.RootPoints[1], tp.Flank2[0]}},
			Segment{Kind: SegmentLine, Points: []r2.Vec{tp.RootPoints[0], tp.RootPoints[1]}},
		)
	}
	return segs
}

// Arc3 is a circular arc given by three points it passes through.
type Arc3 struct {
	Start r2.Vec `json:"start"`
	Mid   r2.Vec `json:"mid"`
	End   r2.Vec `json:"end"`
}

// Circle returns the centre and radius of the circle through the three
// points. ok is false for collinear points.
func (a Arc3) Circle() (center r2.Vec, radius float64, ok bool) {
	ax, ay := a.Start.X, a.Start.Y
	bx, by := a.Mid.X, a.Mid.Y
	cx, cy := a.End.X, a.End.Y
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-15 {
		return r2.Vec{}, 0, false
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	center = r2.Vec{
		X: (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d,
		Y: (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d,
	}
	return center, r2.Norm(r2.Sub(a.Start, center)), true
}

// Sample returns n+1 points from Start to End along the arc, passing
// through Mid. Collinear points degrade to a straight polyline.
func (a Arc3) Sample(n int) []r2.Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]r2.Vec, n+1)
	c, r, ok := a.Circle()
	if !ok {
		for i := range pts {
			t := float64(i) / float64(n)
			pts[i] = r2.Add(a.Start, r2.Scale(t, r2.Sub(a.End, a.Start)))
		}
		return pts
	}
	a0 := angleOf(r2.Sub(a.Start, c))
	a1 := angleOf(r2.Sub(a.Mid, c))
	a2 := angleOf(r2.Sub(a.End, c))
	sweep := normAngle(a2 - a0)
	if normAngle(a1-a0) > sweep {
		sweep -= 2 * math.Pi
	}
	for i := range pts {
		t := a0 + sweep*float64(i)/float64(n)
		pts[i] = r2.Vec{X: c.X + r*math.Cos(t), Y: c.Y + r*math.Sin(t)}
	}
	pts[0], pts[n] = a.Start, a.End
	return pts
}

func angleOf(v r2.Vec) float64 { return math.Atan2(v.Y, v.X) }

// normAngle maps a into [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
