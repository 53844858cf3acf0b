// Package plan defines the construction plan: the ordered list of
// solid-modelling operations handed to a geometry kernel. Steps reference
// the steps they consume by ID, and every reference points backwards, so
// executing the steps in order always satisfies their dependencies.
package plan

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Plan is an ordered construction plan.
type Plan struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Steps     []*Step           `json:"steps"`
	NameIndex map[string]StepID `json:"name_index"`
}

// New creates an empty plan with a fresh ID.
func New(name string) *Plan {
	return &Plan{
		ID:        uuid.New().String(),
		Name:      name,
		NameIndex: make(map[string]StepID),
	}
}

// Add appends a step and returns its ID. It does not check for duplicate
// names; Validate does.
func (p *Plan) Add(kind OpKind, name, component string, data StepData, inputs ...StepID) StepID {
	id := StepID(len(p.Steps) + 1)
	p.Steps = append(p.Steps, &Step{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Component: component,
		Inputs:    inputs,
		Data:      data,
	})
	if name != "" {
		if _, dup := p.NameIndex[name]; !dup {
			p.NameIndex[name] = id
		}
	}
	return id
}

// Get returns the step with the given ID, or nil.
func (p *Plan) Get(id StepID) *Step {
	if id < 1 || int(id) > len(p.Steps) {
		return nil
	}
	return p.Steps[id-1]
}

// Lookup returns the step with the given name, or nil.
func (p *Plan) Lookup(name string) *Step {
	id, ok := p.NameIndex[name]
	if !ok {
		return nil
	}
	return p.Get(id)
}

// Last returns the ID of the most recently added step.
func (p *Plan) Last() StepID { return StepID(len(p.Steps)) }

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.Steps) }

// ByKind returns the steps of the given kind in plan order.
func (p *Plan) ByKind(k OpKind) []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Kind == k {
			out = append(out, s)
		}
	}
	return out
}

// Components returns the names of the components created by the plan.
func (p *Plan) Components() []string {
	var names []string
	for _, s := range p.ByKind(OpCreateComponent) {
		if d, ok := s.Data.(ComponentData); ok {
			names = append(names, d.Name)
		}
	}
	return names
}

// Inputs returns the steps s consumes.
func (p *Plan) Inputs(s *Step) []*Step {
	out := make([]*Step, 0, len(s.Inputs))
	for _, id := range s.Inputs {
		if in := p.Get(id); in != nil {
			out = append(out, in)
		}
	}
	return out
}

// JSON renders the plan as indented JSON.
func (p *Plan) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
