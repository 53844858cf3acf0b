package plan

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ValidationSeverity indicates whether a validation finding blocks
// execution or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks execution
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	StepID   StepID             // which step has the problem (zero if plan-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.StepID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] step %s: %s", e.Severity, e.StepID.Short(), e.Message)
}

// Errors filters out warnings.
func Errors(findings []ValidationError) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Validate runs all structural checks on the plan and returns the
// findings. A plan with no error-severity findings can be executed.
// Validate never mutates the plan.
func Validate(p *Plan) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIDs(p)...)
	errs = append(errs, validateDAG(p)...)
	errs = append(errs, validateReferences(p)...)
	errs = append(errs, validateNames(p)...)
	errs = append(errs, validateComponents(p)...)
	errs = append(errs, validateData(p)...)
	errs = append(errs, validateGroups(p)...)
	return errs
}

func errorf(id StepID, format string, args ...any) ValidationError {
	return ValidationError{StepID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(id StepID, format string, args ...any) ValidationError {
	return ValidationError{StepID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// validateIDs checks that every step's ID matches its position.
func validateIDs(p *Plan) []ValidationError {
	var errs []ValidationError
	for i, s := range p.Steps {
		if s.ID != StepID(i+1) {
			errs = append(errs, errorf(s.ID, "step at position %d has ID %s", i+1, s.ID.Short()))
		}
	}
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(p *Plan) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[StepID]int)
	var errs []ValidationError

	var visit func(id StepID) bool // returns true if cycle found
	visit = func(id StepID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, errorf(id, "cycle detected: step %s depends on itself", id.Short()))
			return true
		}
		color[id] = gray
		s := p.Get(id)
		if s == nil {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, in := range dataRefs(s) {
			if visit(in) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, s := range p.Steps {
		if color[s.ID] == white && visit(s.ID) {
			break
		}
	}
	return errs
}

// dataRefs returns every step a step depends on: its inputs plus the
// references held in its payload.
func dataRefs(s *Step) []StepID {
	refs := append([]StepID(nil), s.Inputs...)
	switch d := s.Data.(type) {
	case LoftData:
		refs = append(refs, d.Profile)
	case RevolveData:
		refs = append(refs, d.Participants...)
	case PatternData:
		refs = append(refs, d.Body)
	case BoreData:
		refs = append(refs, d.Body)
	}
	return refs
}

// validateReferences checks that every referenced step exists and comes
// earlier in the plan.
func validateReferences(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, s := range p.Steps {
		for _, ref := range dataRefs(s) {
			switch {
			case p.Get(ref) == nil:
				errs = append(errs, errorf(s.ID, "reference %s does not exist", ref.Short()))
			case ref >= s.ID:
				errs = append(errs, errorf(s.ID, "reference %s does not precede the step", ref.Short()))
			}
		}
	}
	return errs
}

// validateNames checks that every step is named and names are unique.
func validateNames(p *Plan) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]StepID)
	for _, s := range p.Steps {
		if s.Name == "" {
			errs = append(errs, errorf(s.ID, "%s step has no name", s.Kind))
			continue
		}
		if prev, dup := seen[s.Name]; dup {
			errs = append(errs, errorf(s.ID, "duplicate step name %q (first used by %s)", s.Name, prev.Short()))
			continue
		}
		seen[s.Name] = s.ID
	}
	return errs
}

// validateComponents checks that every step targets a component created
// by an earlier step.
func validateComponents(p *Plan) []ValidationError {
	var errs []ValidationError
	created := make(map[string]bool)
	for _, s := range p.Steps {
		if s.Kind == OpCreateComponent {
			d, ok := s.Data.(ComponentData)
			if !ok {
				continue // reported by validateData
			}
			if d.Parent != "" && !created[d.Parent] {
				errs = append(errs, errorf(s.ID, "parent component %q not created yet", d.Parent))
			}
			if created[d.Name] {
				errs = append(errs, errorf(s.ID, "component %q created twice", d.Name))
			}
			created[d.Name] = true
			continue
		}
		if s.Component == "" {
			errs = append(errs, errorf(s.ID, "%s step has no component", s.Kind))
			continue
		}
		if !created[s.Component] {
			errs = append(errs, errorf(s.ID, "component %q not created before use", s.Component))
		}
	}
	return errs
}

// validateData checks the payload of every step against its kind.
func validateData(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, s := range p.Steps {
		switch d := s.Data.(type) {
		case ComponentData:
			errs = append(errs, expectKind(s, OpCreateComponent)...)
			if d.Name == "" {
				errs = append(errs, errorf(s.ID, "component has no name"))
			}
		case SketchData:
			errs = append(errs, expectKind(s, OpSketchLines)...)
			if len(d.Lines) == 0 {
				errs = append(errs, warnf(s.ID, "sketch has no lines"))
			}
		case PlaneData:
			errs = append(errs, expectKind(s, OpConstructionPlane)...)
			if r3.Norm(d.Plane.Normal()) < 1e-12 {
				errs = append(errs, errorf(s.ID, "construction plane axes are parallel"))
			}
		case ProfileData:
			errs = append(errs, expectKind(s, OpSketchProfile)...)
			if len(d.Outline) < 3 {
				errs = append(errs, errorf(s.ID, "profile has %d points, need at least 3", len(d.Outline)))
			}
		case LoftData:
			errs = append(errs, expectKind(s, OpLoft)...)
			if prof := p.Get(d.Profile); prof != nil && prof.Kind != OpSketchProfile {
				errs = append(errs, errorf(s.ID, "loft profile %s is a %s step", d.Profile.Short(), prof.Kind))
			}
		case RevolveData:
			errs = append(errs, expectKind(s, OpRevolveCut, OpRevolveNewBody)...)
			errs = append(errs, checkAxis(s.ID, d.Axis)...)
			if len(d.Profiles) == 0 {
				errs = append(errs, errorf(s.ID, "revolve has no profiles"))
			}
			for i, prof := range d.Profiles {
				if len(prof) < 3 {
					errs = append(errs, errorf(s.ID, "revolve profile %d has %d points", i, len(prof)))
				}
			}
			if !(d.Angle > 0) || d.Angle > FullTurn+1e-12 {
				errs = append(errs, errorf(s.ID, "revolve angle %g outside (0, 2π]", d.Angle))
			}
			if s.Kind == OpRevolveCut && len(d.Participants) == 0 {
				errs = append(errs, errorf(s.ID, "revolve cut has no participant bodies"))
			}
		case PatternData:
			errs = append(errs, expectKind(s, OpCircularPattern)...)
			errs = append(errs, checkAxis(s.ID, d.Axis)...)
			if d.Count < 1 {
				errs = append(errs, errorf(s.ID, "pattern count %d, need at least 1", d.Count))
			}
			if !(d.TotalAngle > 0) || d.TotalAngle > FullTurn+1e-12 {
				errs = append(errs, errorf(s.ID, "pattern angle %g outside (0, 2π]", d.TotalAngle))
			}
		case BoreData:
			errs = append(errs, expectKind(s, OpExtrudeCutBore)...)
			errs = append(errs, checkAxis(s.ID, d.Axis)...)
			if !(d.Diameter > 0) {
				errs = append(errs, errorf(s.ID, "bore diameter %g must be positive", d.Diameter))
			}
			n := len(d.Faces)
			if d.From < 0 || d.From >= n || d.To < 0 || d.To >= n {
				errs = append(errs, errorf(s.ID, "bore faces %d..%d out of range (body has %d planar faces)", d.From, d.To, n))
			} else if d.From == d.To {
				errs = append(errs, errorf(s.ID, "bore starts and ends on face %d", d.From))
			}
		case GroupData:
			errs = append(errs, expectKind(s, OpGroup)...)
		case nil:
			errs = append(errs, errorf(s.ID, "%s step has no data", s.Kind))
		}
	}
	return errs
}

func expectKind(s *Step, kinds ...OpKind) []ValidationError {
	for _, k := range kinds {
		if s.Kind == k {
			return nil
		}
	}
	return []ValidationError{errorf(s.ID, "%T does not belong to a %s step", s.Data, s.Kind)}
}

func checkAxis(id StepID, a Axis) []ValidationError {
	if r3.Norm(a.Direction) < 1e-12 {
		return []ValidationError{errorf(id, "axis has no direction")}
	}
	return nil
}

// validateGroups checks group ranges. A group that leaves steps outside
// its range is only a warning.
func validateGroups(p *Plan) []ValidationError {
	var errs []ValidationError
	for _, s := range p.ByKind(OpGroup) {
		d, ok := s.Data.(GroupData)
		if !ok {
			continue
		}
		if d.First < 1 || d.Last >= s.ID || d.First > d.Last {
			errs = append(errs, errorf(s.ID, "group range %s..%s is invalid", d.First.Short(), d.Last.Short()))
			continue
		}
		if d.First != 1 || d.Last != s.ID-1 {
			errs = append(errs, warnf(s.ID, "group %q covers %s..%s, not the whole plan", d.Name, d.First.Short(), d.Last.Short()))
		}
	}
	return errs
}
