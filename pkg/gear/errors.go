package gear

import (
	"errors"
	"fmt"
)

// Error classes. Callers match them with errors.Is; concrete errors wrap
// one of these with a message naming the offending value.
var (
	// ErrInvalidParameter reports an input outside its domain, rejected
	// before any geometry is computed.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrGeometricInfeasibility reports valid-looking inputs whose geometry
	// cannot be built (bore too large, degenerate cone).
	ErrGeometricInfeasibility = errors.New("geometrically infeasible")

	// ErrConstructionFailure reports a failed construction step, either in
	// plan assembly or inside the geometry kernel.
	ErrConstructionFailure = errors.New("construction failed")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func infeasiblef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrGeometricInfeasibility, fmt.Sprintf(format, args...))
}

// Validate checks the pair against the input contract. All findings are
// returned together as one joined error.
func (p PairSpec) Validate() error {
	var errs []error
	if p.WheelTeeth < MinTeeth || p.PinionTeeth < MinTeeth {
		errs = append(errs, invalidf("the number of teeth must be %d or more (wheel %d, pinion %d)",
			MinTeeth, p.WheelTeeth, p.PinionTeeth))
	}
	if !(p.Module > 0) {
		errs = append(errs, invalidf("module must be positive, got %g", p.Module))
	}
	if !(p.PressureAngle > 0) || p.PressureAngle >= halfPi {
		errs = append(errs, invalidf("pressure angle must be in (0, 90) degrees, got %g", Degrees(p.PressureAngle)))
	}
	if p.Backlash < 0 {
		errs = append(errs, invalidf("backlash must not be negative, got %g", p.Backlash))
	}
	if !(p.FaceThickness > 0) {
		errs = append(errs, invalidf("face thickness must be positive, got %g", p.FaceThickness))
	}
	if !(p.BoreDiameter > 0) {
		errs = append(errs, invalidf("bore diameter must be positive, got %g", p.BoreDiameter))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, m := range []Spec{p.Wheel(), p.Pinion()} {
		if err := m.checkBore(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// checkBore rejects a bore that leaves less than BoreMargin of material
// below the root circle.
func (s Spec) checkBore() error {
	root := s.Dimensions().RootDiameter
	if s.BoreDiameter >= root-BoreMargin {
		return infeasiblef("the center hole diameter is too large for the %s (bore %g, root diameter %g)",
			ComponentName(s.Teeth), s.BoreDiameter, root)
	}
	return nil
}
