// Package section holds the planar cross-section sketch of a gear pair:
// named points and lines, line splitting, and extraction of the closed
// profiles (faces) the lines enclose.
//
// The sketch is an explicit value. Assembly stages receive a *Context,
// add the entities they need and return what they created.
package section

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Line is a straight sketch line. Construction lines are reference
// geometry only and never bound a profile.
type Line struct {
	Name         string `json:"name"`
	Start        r2.Vec `json:"start"`
	End          r2.Vec `json:"end"`
	Construction bool   `json:"construction,omitempty"`
}

// Length returns the length of the line.
func (l Line) Length() float64 { return r2.Norm(r2.Sub(l.End, l.Start)) }

// At returns the point distance along the line from Start.
func (l Line) At(distance float64) r2.Vec {
	return r2.Add(l.Start, r2.Scale(distance/l.Length(), r2.Sub(l.End, l.Start)))
}

// ErrNoLine is returned for a line index or name that does not exist.
var ErrNoLine = errors.New("section: no such line")

// Context is the cross-section sketch.
type Context struct {
	Lines  []Line            `json:"lines"`
	Points map[string]r2.Vec `json:"points"`
}

// New returns an empty sketch.
func New() *Context {
	return &Context{Points: make(map[string]r2.Vec)}
}

// AddLine adds a profile line and returns its index.
func (c *Context) AddLine(name string, a, b r2.Vec) int {
	c.Lines = append(c.Lines, Line{Name: name, Start: a, End: b})
	return len(c.Lines) - 1
}

// AddConstruction adds a construction line and returns its index.
func (c *Context) AddConstruction(name string, a, b r2.Vec) int {
	c.Lines = append(c.Lines, Line{Name: name, Start: a, End: b, Construction: true})
	return len(c.Lines) - 1
}

// SetPoint records a named sketch point.
func (c *Context) SetPoint(name string, p r2.Vec) { c.Points[name] = p }

// Point looks up a named sketch point.
func (c *Context) Point(name string) (r2.Vec, bool) {
	p, ok := c.Points[name]
	return p, ok
}

// LineIndex returns the index of the first line named name.
func (c *Context) LineIndex(name string) (int, error) {
	for i, l := range c.Lines {
		if l.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNoLine, name)
}

// Line returns the line at index i.
func (c *Context) Line(i int) (Line, error) {
	if i < 0 || i >= len(c.Lines) {
		return Line{}, fmt.Errorf("%w: index %d", ErrNoLine, i)
	}
	return c.Lines[i], nil
}

// SplitLineAt places a point distance along line i from its start,
// splits the line there and returns the point. The first part keeps
// index i; the second is appended.
func (c *Context) SplitLineAt(i int, distance float64) (r2.Vec, error) {
	l, err := c.Line(i)
	if err != nil {
		return r2.Vec{}, err
	}
	length := l.Length()
	if length == 0 {
		return r2.Vec{}, fmt.Errorf("section: split of zero-length line %q", l.Name)
	}
	if distance <= 0 || distance >= length {
		return r2.Vec{}, fmt.Errorf("section: split distance %g outside line %q of length %g", distance, l.Name, length)
	}
	p := l.At(distance)
	c.split(i, p)
	return p, nil
}

// SplitWhere splits the first profile line whose interior contains p.
// It reports whether a line was split.
func (c *Context) SplitWhere(p r2.Vec) bool {
	eps := 1e-9 * c.scale()
	for i, l := range c.Lines {
		if l.Construction {
			continue
		}
		n := l.Length()
		if t, ok := interiorParam(l, p, eps); ok && t*n > eps && (1-t)*n > eps {
			c.split(i, p)
			return true
		}
	}
	return false
}

func (c *Context) split(i int, p r2.Vec) {
	l := c.Lines[i]
	c.Lines[i] = Line{Name: l.Name + "/0", Start: l.Start, End: p, Construction: l.Construction}
	c.Lines = append(c.Lines, Line{Name: l.Name + "/1", Start: p, End: l.End, Construction: l.Construction})
}

// interiorParam returns the parameter of p along l if p lies on l within
// eps.
func interiorParam(l Line, p r2.Vec, eps float64) (float64, bool) {
	d := r2.Sub(l.End, l.Start)
	n := r2.Norm(d)
	if n == 0 {
		return 0, false
	}
	rel := r2.Sub(p, l.Start)
	if abs(r2.Cross(d, rel))/n > eps {
		return 0, false
	}
	t := r2.Dot(rel, d) / (n * n)
	if t < -eps/n || t > 1+eps/n {
		return 0, false
	}
	return t, true
}

// scale is the diagonal of the sketch bounding box, used to size
// tolerances.
func (c *Context) scale() float64 {
	if len(c.Lines) == 0 {
		return 1
	}
	lo, hi := c.Lines[0].Start, c.Lines[0].Start
	for _, l := range c.Lines {
		for _, p := range []r2.Vec{l.Start, l.End} {
			lo = r2.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
			hi = r2.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
		}
	}
	s := r2.Norm(r2.Sub(hi, lo))
	if s == 0 {
		return 1
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
