package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/bevel/pkg/gear"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms DSL source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: bevel-gears -> bevel_gears
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Arrow names: deg->rad -> deg_to_rad
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform arrow identifiers: alpha->alpha -> alpha_to_alpha.
		if b[i] == '-' && i > 0 && i+2 < len(b) && b[i+1] == '>' &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+2]) {
			result = append(result, "_to_"...)
			i += 2
			continue
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPair wraps a gear.PairSpec so it can be returned from bevel-gears.
type sexpPair struct {
	spec gear.PairSpec
}

func (p *sexpPair) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(bevel-gears %d/%d :module %g)", p.spec.WheelTeeth, p.spec.PinionTeeth, p.spec.Module)
}
func (p *sexpPair) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toInt extracts a whole number from a SexpInt or an integral SexpFloat.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected whole number, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected whole number, got %T (%s)", s, s.SexpString(nil))
}

// toPressureAngle accepts degrees as a number or a preset string such as
// "20 deg", and returns radians.
func toPressureAngle(s zygo.Sexp) (float64, error) {
	if str, err := toKeywordString(s); err == nil {
		return gear.ParsePressureAngle(str)
	}
	deg, err := toFloat64(s)
	if err != nil {
		return 0, fmt.Errorf("expected degrees or a preset name: %w", err)
	}
	return gear.ParsePressureAngle(fmt.Sprint(deg))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// collector accumulates the pairs declared during one evaluation.
type collector struct {
	pairs []gear.PairSpec
}

// pairKeys lists the keywords accepted by bevel-gears.
var pairKeys = []string{"module", "wheel-teeth", "pinion-teeth", "pressure-angle", "backlash", "thickness", "bore"}

// registerBuiltins installs the DSL builtins into a zygomys environment.
// Declared pairs are appended to c.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// -----------------------------------------------------------------------
	// (bevel-gears :module 2 :wheel-teeth 25 :pinion-teeth 10
	//              :pressure-angle 20 :backlash 0.05 :thickness 10 :bore 8)
	//
	// Omitted keywords keep the default pair's value.
	// -----------------------------------------------------------------------
	env.AddFunction("bevel_gears", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("bevel-gears: unexpected positional argument %s", pa.positional[0].SexpString(nil))
		}
		for k := range pa.kw {
			known := false
			for _, want := range pairKeys {
				known = known || k == want
			}
			if !known {
				return zygo.SexpNull, fmt.Errorf("bevel-gears: unknown keyword :%s", k)
			}
		}

		spec := gear.DefaultPair()
		floats := []struct {
			key string
			dst *float64
		}{
			{"module", &spec.Module},
			{"backlash", &spec.Backlash},
			{"thickness", &spec.FaceThickness},
			{"bore", &spec.BoreDiameter},
		}
		for _, f := range floats {
			if v, ok := pa.kw[f.key]; ok {
				x, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("bevel-gears: %s: %w", f.key, err)
				}
				*f.dst = x
			}
		}
		if v, ok := pa.kw["wheel-teeth"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-gears: wheel-teeth: %w", err)
			}
			spec.WheelTeeth = n
		}
		if v, ok := pa.kw["pinion-teeth"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-gears: pinion-teeth: %w", err)
			}
			spec.PinionTeeth = n
		}
		if v, ok := pa.kw["pressure-angle"]; ok {
			a, err := toPressureAngle(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bevel-gears: pressure-angle: %w", err)
			}
			spec.PressureAngle = a
		}

		if err := spec.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("bevel-gears: %w", err)
		}
		c.pairs = append(c.pairs, spec)
		return &sexpPair{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (pitch-diameter 2 25) => 50.0
	// -----------------------------------------------------------------------
	env.AddFunction("pitch_diameter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pitch-diameter requires a module and a tooth count, got %d arguments", len(args))
		}
		m, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pitch-diameter: module: %w", err)
		}
		z, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pitch-diameter: teeth: %w", err)
		}
		return &zygo.SexpFloat{Val: m * float64(z)}, nil
	})

	// -----------------------------------------------------------------------
	// (deg->rad 180) => 3.14159...
	// -----------------------------------------------------------------------
	env.AddFunction("deg_to_rad", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg->rad requires exactly 1 argument, got %d", len(args))
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg->rad: %w", err)
		}
		return &zygo.SexpFloat{Val: d * math.Pi / 180}, nil
	})
}
