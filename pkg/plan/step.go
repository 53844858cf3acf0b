package plan

import "fmt"

// OpKind enumerates the solid-modelling operations of a construction plan.
type OpKind int

const (
	OpCreateComponent   OpKind = iota // new component (occurrence)
	OpSketchLines                     // planar sketch of straight lines
	OpConstructionPlane               // plane through a sketch line
	OpSketchProfile                   // closed tooth outline on a plane
	OpLoft                            // profile lofted to a point
	OpRevolveCut                      // revolved profiles removed from bodies
	OpRevolveNewBody                  // revolved profile as a new body
	OpCircularPattern                 // body replicated about an axis
	OpExtrudeCutBore                  // circular cut between two planar faces
	OpGroup                           // timeline group over a step range
)

func (k OpKind) String() string {
	switch k {
	case OpCreateComponent:
		return "create-component"
	case OpSketchLines:
		return "sketch-lines"
	case OpConstructionPlane:
		return "construction-plane"
	case OpSketchProfile:
		return "sketch-profile"
	case OpLoft:
		return "loft"
	case OpRevolveCut:
		return "revolve-cut"
	case OpRevolveNewBody:
		return "revolve-new-body"
	case OpCircularPattern:
		return "circular-pattern"
	case OpExtrudeCutBore:
		return "extrude-cut-bore"
	case OpGroup:
		return "group"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k OpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// StepID identifies a step by its 1-based position in the plan. The zero
// value means "no step".
type StepID int

// IsZero reports whether the ID is unset.
func (id StepID) IsZero() bool { return id == 0 }

// Short returns a compact form for messages.
func (id StepID) Short() string { return fmt.Sprintf("#%d", int(id)) }

// Step is one operation of the plan. Inputs lists the steps whose output
// this step consumes; every input precedes the step.
type Step struct {
	ID        StepID   `json:"id"`
	Kind      OpKind   `json:"kind"`
	Name      string   `json:"name"`
	Component string   `json:"component,omitempty"`
	Inputs    []StepID `json:"inputs,omitempty"`
	Data      StepData `json:"data"`
}

// StepData is the interface for kind-specific step payloads.
type StepData interface {
	stepData() // marker method restricting implementations to this package
}
