package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/bevel/pkg/catalog"
	"github.com/chazu/bevel/pkg/config"
	"github.com/chazu/bevel/pkg/plan"
)

// printParameterErrors lists each joined error on its own line.
func printParameterErrors(w io.Writer, err error) {
	var errs []error
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	} else {
		errs = []error{err}
	}
	fmt.Fprintf(w, "ERRORS (%d):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Result: INVALID")
}

func printFindings(w io.Writer, findings []plan.ValidationError) {
	errs := plan.Errors(findings)
	if len(errs) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintln(w)
	}
	if n := len(findings) - len(errs); n > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", n)
		for _, f := range findings {
			if f.Severity == plan.SeverityWarning {
				fmt.Fprintf(w, "  %s\n", f)
			}
		}
		fmt.Fprintln(w)
	}
}

func printEvalResult(w io.Writer, script string, r EvalResult) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", script, e.Line, e.Col, e.Message)
		} else {
			fmt.Fprintf(w, "%s: %s\n", script, e.Message)
		}
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "%s: warning: %s\n", script, e.Message)
	}
	for _, p := range r.Pairs {
		fmt.Fprintf(w, "%s: %s, %d steps\n", p.Name, p.Description, p.Steps)
		for _, m := range p.Meshes {
			fmt.Fprintf(w, "  %s: %d triangles\n", m.PartName, len(m.Indices)/3)
		}
	}
}

func printRecords(w io.Writer, recs []*catalog.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no saved pairs")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION\tSTEPS\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Description, r.StepCount, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printRecord(w io.Writer, r *catalog.Record) {
	s := r.Spec
	fmt.Fprintf(w, "id:             %s\n", r.ID)
	fmt.Fprintf(w, "name:           %s\n", r.Name)
	fmt.Fprintf(w, "description:    %s\n", r.Description)
	fmt.Fprintf(w, "created:        %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "module:         %g\n", s.Module)
	fmt.Fprintf(w, "wheel teeth:    %d\n", s.WheelTeeth)
	fmt.Fprintf(w, "pinion teeth:   %d\n", s.PinionTeeth)
	fmt.Fprintf(w, "pressure angle: %s\n", config.FormatPressureAngle(s.PressureAngle))
	fmt.Fprintf(w, "backlash:       %g\n", s.Backlash)
	fmt.Fprintf(w, "face thickness: %g\n", s.FaceThickness)
	fmt.Fprintf(w, "bore:           %g\n", s.BoreDiameter)
	if r.PlanID != "" {
		fmt.Fprintf(w, "plan:           %s (%d steps)\n", r.PlanID, r.StepCount)
	}
}

// isNotFound reports whether err is a missing catalog record.
func isNotFound(err error) bool { return errors.Is(err, catalog.ErrNotFound) }
