package section

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is a closed region bounded by sketch lines.
type Profile struct {
	Loop     []r2.Vec `json:"loop"` // counter-clockwise, no repeated closing vertex
	Area     float64  `json:"area"`
	Centroid r2.Vec   `json:"centroid"`
}

// Contains reports whether p lies strictly inside the profile (even-odd
// rule).
func (pr Profile) Contains(p r2.Vec) bool {
	in := false
	n := len(pr.Loop)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pr.Loop[i], pr.Loop[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// Edges returns the loop as consecutive point pairs, wrapping around.
func (pr Profile) Edges() [][2]r2.Vec {
	edges := make([][2]r2.Vec, len(pr.Loop))
	for i := range pr.Loop {
		edges[i] = [2]r2.Vec{pr.Loop[i], pr.Loop[(i+1)%len(pr.Loop)]}
	}
	return edges
}

// ErrNoProfile is returned when the sketch encloses no region, or a
// selection has nothing to choose from.
var ErrNoProfile = errors.New("section: no profile")

// Profiles computes the bounded regions enclosed by the profile lines.
// Lines are split at every crossing and touching point; the resulting
// planar graph is walked face by face. The unbounded face and faces with
// no area are dropped. Order is deterministic for a given sketch.
func (c *Context) Profiles() ([]Profile, error) {
	scale := c.scale()
	eps := 1e-9 * scale

	var segs []Line
	for _, l := range c.Lines {
		if !l.Construction && l.Length() > eps {
			segs = append(segs, l)
		}
	}
	if len(segs) < 3 {
		return nil, fmt.Errorf("%w: %d profile lines", ErrNoProfile, len(segs))
	}

	g := newArrangement(eps)
	params := make([][]float64, len(segs))
	for i := range segs {
		params[i] = []float64{0, 1}
	}
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			ti, tj := intersect(segs[i], segs[j], eps)
			params[i] = append(params[i], ti...)
			params[j] = append(params[j], tj...)
		}
	}
	for i, s := range segs {
		ts := params[i]
		sort.Float64s(ts)
		prev := -1
		for _, t := range ts {
			v := g.vertex(r2.Add(s.Start, r2.Scale(t, r2.Sub(s.End, s.Start))))
			if prev >= 0 && prev != v {
				g.edge(prev, v)
			}
			prev = v
		}
	}

	faces := g.faces()
	minArea := eps * scale
	var out []Profile
	for _, loop := range faces {
		area := signedArea(loop)
		if area <= minArea {
			continue
		}
		out = append(out, Profile{Loop: loop, Area: area, Centroid: centroid(loop, area)})
	}
	if len(out) == 0 {
		return nil, ErrNoProfile
	}
	return out, nil
}

// intersect returns the parameters along a and b of their common points.
// Collinear overlaps contribute the endpoints that fall on the other line.
func intersect(a, b Line, eps float64) (ta, tb []float64) {
	r := r2.Sub(a.End, a.Start)
	s := r2.Sub(b.End, b.Start)
	rl, sl := r2.Norm(r), r2.Norm(s)
	qp := r2.Sub(b.Start, a.Start)
	den := r2.Cross(r, s)

	if math.Abs(den) > eps*(rl+sl) {
		t := r2.Cross(qp, s) / den
		u := r2.Cross(qp, r) / den
		if t >= -eps/rl && t <= 1+eps/rl && u >= -eps/sl && u <= 1+eps/sl {
			return []float64{clamp01(t)}, []float64{clamp01(u)}
		}
		return nil, nil
	}
	if math.Abs(r2.Cross(qp, r))/rl > eps {
		return nil, nil // parallel, not collinear
	}
	for _, p := range []r2.Vec{b.Start, b.End} {
		if t, ok := interiorParam(a, p, eps); ok {
			ta = append(ta, clamp01(t))
		}
	}
	for _, p := range []r2.Vec{a.Start, a.End} {
		if t, ok := interiorParam(b, p, eps); ok {
			tb = append(tb, clamp01(t))
		}
	}
	return ta, tb
}

func clamp01(t float64) float64 { return math.Max(0, math.Min(1, t)) }

// arrangement is a planar straight-line graph with merged vertices.
type arrangement struct {
	eps   float64
	verts []r2.Vec
	adj   [][]int
	seen  map[[2]int]bool
}

func newArrangement(eps float64) *arrangement {
	return &arrangement{eps: eps, seen: make(map[[2]int]bool)}
}

// vertex returns the index of the vertex at p, merging with any existing
// vertex closer than eps.
func (g *arrangement) vertex(p r2.Vec) int {
	for i, v := range g.verts {
		if r2.Norm(r2.Sub(v, p)) <= g.eps {
			return i
		}
	}
	g.verts = append(g.verts, p)
	g.adj = append(g.adj, nil)
	return len(g.verts) - 1
}

func (g *arrangement) edge(u, v int) {
	key := [2]int{min(u, v), max(u, v)}
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// faces walks every half-edge once, keeping the face on its left. Bounded
// faces come out counter-clockwise; the outer face clockwise.
func (g *arrangement) faces() [][]r2.Vec {
	angle := func(u, v int) float64 {
		d := r2.Sub(g.verts[v], g.verts[u])
		return math.Atan2(d.Y, d.X)
	}
	for u := range g.adj {
		sort.SliceStable(g.adj[u], func(i, j int) bool {
			return angle(u, g.adj[u][i]) < angle(u, g.adj[u][j])
		})
	}
	// next returns the neighbour of v that follows u clockwise.
	next := func(u, v int) int {
		nb := g.adj[v]
		for i, w := range nb {
			if w == u {
				return nb[(i-1+len(nb))%len(nb)]
			}
		}
		return -1
	}

	used := make(map[[2]int]bool)
	var out [][]r2.Vec
	for u := range g.adj {
		for _, v := range g.adj[u] {
			if used[[2]int{u, v}] {
				continue
			}
			var loop []r2.Vec
			a, b := u, v
			for steps := 0; !used[[2]int{a, b}]; steps++ {
				if steps > 4*len(g.seen)+4 {
					break
				}
				used[[2]int{a, b}] = true
				loop = append(loop, g.verts[a])
				a, b = b, next(a, b)
				if b < 0 {
					break
				}
			}
			out = append(out, loop)
		}
	}
	return out
}

// signedArea is the shoelace area; positive for counter-clockwise loops.
func signedArea(loop []r2.Vec) float64 {
	var a float64
	for i := range loop {
		j := (i + 1) % len(loop)
		a += loop[i].X*loop[j].Y - loop[j].X*loop[i].Y
	}
	return a / 2
}

func centroid(loop []r2.Vec, area float64) r2.Vec {
	if area == 0 {
		var c r2.Vec
		for _, p := range loop {
			c = r2.Add(c, p)
		}
		return r2.Scale(1/float64(len(loop)), c)
	}
	var cx, cy float64
	for i := range loop {
		j := (i + 1) % len(loop)
		cross := loop[i].X*loop[j].Y - loop[j].X*loop[i].Y
		cx += (loop[i].X + loop[j].X) * cross
		cy += (loop[i].Y + loop[j].Y) * cross
	}
	return r2.Vec{X: cx / (6 * area), Y: cy / (6 * area)}
}
