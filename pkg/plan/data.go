package plan

import (
	"math"

	"github.com/chazu/bevel/pkg/gear"
	"github.com/chazu/bevel/pkg/section"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Shared geometry
// ---------------------------------------------------------------------------

// Axis is a directed line in world space.
type Axis struct {
	Origin    r3.Vec `json:"origin"`
	Direction r3.Vec `json:"direction"`
}

// AxisThrough returns the axis from a toward b in the section plane.
func AxisThrough(a, b r2.Vec) Axis {
	return Axis{Origin: gear.Lift(a), Direction: r3.Unit(gear.Lift(r2.Sub(b, a)))}
}

// PlanarFace is a flat circular face of a body of revolution.
type PlanarFace struct {
	Center r3.Vec  `json:"center"`
	Normal r3.Vec  `json:"normal"`
	Radius float64 `json:"radius"`
	// Offset is the signed distance of the face from the axis origin.
	Offset float64 `json:"offset"`
}

// ---------------------------------------------------------------------------
// Step payloads
// ---------------------------------------------------------------------------

// ComponentData describes a new component.
type ComponentData struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Parent      string            `json:"parent,omitempty"`
}

func (ComponentData) stepData() {}

// SketchData is a planar sketch of straight lines and named points.
type SketchData struct {
	Plane  string            `json:"plane"`
	Lines  []section.Line    `json:"lines"`
	Points map[string]r2.Vec `json:"points,omitempty"`
}

func (SketchData) stepData() {}

// PlaneData is a construction plane through a sketch line at an angle.
type PlaneData struct {
	Reference string     `json:"reference"`
	Angle     float64    `json:"angle"`
	Plane     gear.Plane `json:"plane"`
}

func (PlaneData) stepData() {}

// ProfileData is a closed tooth outline on a plane.
type ProfileData struct {
	Plane     gear.Plane     `json:"plane"`
	Outline   []r2.Vec       `json:"outline"`
	Segments  []gear.Segment `json:"segments"`
	Join      string         `json:"join"`
	RootPoint r2.Vec         `json:"root_point"`
}

func (ProfileData) stepData() {}

// LoftData lofts a profile to a single point.
type LoftData struct {
	Profile StepID `json:"profile"`
	Apex    r3.Vec `json:"apex"`
}

func (LoftData) stepData() {}

// RevolveData revolves section-plane profiles about an axis. Participants
// are the bodies a cut applies to; a new body has none.
type RevolveData struct {
	Profiles     [][]r2.Vec `json:"profiles"`
	Axis         Axis       `json:"axis"`
	Angle        float64    `json:"angle"`
	Participants []StepID   `json:"participants,omitempty"`
}

func (RevolveData) stepData() {}

// PatternData replicates a body about an axis.
type PatternData struct {
	Body       StepID  `json:"body"`
	Axis       Axis    `json:"axis"`
	Count      int     `json:"count"`
	TotalAngle float64 `json:"total_angle"`
	Symmetric  bool    `json:"symmetric"`
}

func (PatternData) stepData() {}

// BoreData cuts a circle of Diameter, centred on Axis, from planar face
// From through to planar face To of Body.
type BoreData struct {
	Body     StepID       `json:"body"`
	Axis     Axis         `json:"axis"`
	Diameter float64      `json:"diameter"`
	Faces    []PlanarFace `json:"faces"`
	From     int          `json:"from"`
	To       int          `json:"to"`
}

func (BoreData) stepData() {}

// GroupData names the inclusive step range First..Last.
type GroupData struct {
	Name  string `json:"name"`
	First StepID `json:"first"`
	Last  StepID `json:"last"`
}

func (GroupData) stepData() {}

// FullTurn is a 360 degree revolve or pattern extent.
const FullTurn = 2 * math.Pi
