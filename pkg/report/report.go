// Package report draws a generated pair: a PNG of the cross-section with
// gonum/plot and an interactive HTML page of the tooth profiles with
// go-echarts.
package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/chazu/bevel/pkg/assemble"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PNGSize is the edge length of the square PNG images.
const PNGSize = 6 * vg.Inch

var (
	lineColor         = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	constructionColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	profileColor      = color.RGBA{R: 120, G: 160, B: 220, A: 90}
	rootConeColor     = color.RGBA{R: 230, G: 140, B: 60, A: 160}
	pointColor        = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

func xys(pts []r2.Vec) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

// square widens the plot ranges so one unit is the same length on both
// axes.
func square(p *plot.Plot, pad float64) {
	cx, cy := (p.X.Min+p.X.Max)/2, (p.Y.Min+p.Y.Max)/2
	half := math.Max(p.X.Max-p.X.Min, p.Y.Max-p.Y.Min)/2 + pad
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}

// SectionPlot draws the cross-section sketch of an assembly: every line,
// the closed profiles, the two root-cone profiles and the named points.
func SectionPlot(a *assemble.Assembly) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s cross-section", a.Spec.AssemblyName())
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"

	for _, prof := range a.Profiles {
		poly, err := plotter.NewPolygon(xys(prof.Loop))
		if err != nil {
			return nil, err
		}
		poly.Color = profileColor
		poly.LineStyle.Width = 0
		p.Add(poly)
	}
	for i, m := range a.Members() {
		poly, err := plotter.NewPolygon(xys(m.RootConeProfile.Loop))
		if err != nil {
			return nil, err
		}
		poly.Color = rootConeColor
		poly.LineStyle.Width = 0
		p.Add(poly)
		if i == 0 {
			p.Legend.Add("root cone", poly)
		}
	}

	for _, l := range a.Section.Lines {
		line, err := plotter.NewLine(xys([]r2.Vec{l.Start, l.End}))
		if err != nil {
			return nil, err
		}
		line.Color = lineColor
		line.Width = vg.Points(1)
		if l.Construction {
			line.Color = constructionColor
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		}
		p.Add(line)
	}

	names := []string{assemble.PointWheelCenter, assemble.PointPinionCenter, assemble.PointApex, assemble.PointPitchTangent}
	var pts []r2.Vec
	for _, n := range names {
		pt, _ := a.Section.Point(n)
		pts = append(pts, pt)
	}
	sc, err := plotter.NewScatter(xys(pts))
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = pointColor
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(sc)
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys(pts), Labels: names})
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	square(p, 2)
	return p, nil
}

// ProfilePlot draws the tooth outline of one member with its reference
// circles.
func ProfilePlot(m *assemble.Member, arcSegments int) (*plot.Plot, error) {
	tp := m.Profile
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s tooth profile", m.Component)
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"

	outline := tp.Outline(arcSegments)
	closed := append(append([]r2.Vec{}, outline...), outline[0])
	line, err := plotter.NewLine(xys(closed))
	if err != nil {
		return nil, err
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("outline", line)

	circles := []struct {
		name string
		dia  float64
		c    color.RGBA
	}{
		{"pitch", tp.PitchDiameter, color.RGBA{R: 30, G: 120, B: 30, A: 255}},
		{"base", tp.BaseCircleDiameter, color.RGBA{R: 30, G: 30, B: 160, A: 255}},
		{"root", tp.RootDiameter, constructionColor},
	}
	lo, hi := outlineAngles(outline)
	for _, c := range circles {
		arc, err := plotter.NewLine(xys(arcPoints(c.dia/2, lo, hi, 24)))
		if err != nil {
			return nil, err
		}
		arc.Color = c.c
		arc.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
		p.Add(arc)
		p.Legend.Add(c.name, arc)
	}

	root, err := plotter.NewScatter(xys([]r2.Vec{tp.RootPoint}))
	if err != nil {
		return nil, err
	}
	root.GlyphStyle.Color = pointColor
	root.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(root)
	p.Legend.Add("root point", root)

	p.Legend.Top = true
	square(p, 0.5)
	return p, nil
}

func outlineAngles(pts []r2.Vec) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		a := math.Atan2(p.Y, p.X)
		lo, hi = math.Min(lo, a), math.Max(hi, a)
	}
	return lo, hi
}

func arcPoints(r, lo, hi float64, n int) []r2.Vec {
	pts := make([]r2.Vec, n+1)
	for i := range pts {
		a := lo + (hi-lo)*float64(i)/float64(n)
		pts[i] = r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return pts
}

// WritePNG renders p as a square PNG.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(PNGSize, PNGSize, "png")
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("report: write png: %w", err)
	}
	return nil
}

func scatterData(pts []r2.Vec) []opts.ScatterData {
	data := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}

func bounds(sets ...[]r2.Vec) (lo, hi r2.Vec) {
	lo = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, pts := range sets {
		for _, p := range pts {
			lo = r2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
			hi = r2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
		}
	}
	return lo, hi
}

func newScatter(title, subtitle string, lo, hi r2.Vec) *charts.Scatter {
	half := math.Max(hi.X-lo.X, hi.Y-lo.Y)/2 + 1
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "700px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: math.Floor(cx - half), Max: math.Ceil(cx + half), Name: "x (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: math.Floor(cy - half), Max: math.Ceil(cy + half), Name: "y (mm)", NameLocation: "middle", NameGap: 30}),
	)
	return sc
}

// ProfileChart is an interactive scatter of one member's tooth profile.
func ProfileChart(m *assemble.Member, arcSegments int) *charts.Scatter {
	tp := m.Profile
	outline := tp.Outline(arcSegments)
	lo, hi := bounds(outline)
	sc := newScatter(m.Component, fmt.Sprintf("module %g, equivalent teeth %.2f, %s",
		tp.Module, tp.EquivalentTeeth, tp.Join), lo, hi)
	sc.AddSeries("outline", scatterData(outline), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	sc.AddSeries("root point", scatterData([]r2.Vec{tp.RootPoint}), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return sc
}

// SectionChart is an interactive scatter of the cross-section profiles,
// one series per profile.
func SectionChart(a *assemble.Assembly) *charts.Scatter {
	loops := make([][]r2.Vec, len(a.Profiles))
	for i, p := range a.Profiles {
		loops[i] = p.Loop
	}
	lo, hi := bounds(loops...)
	sc := newScatter(a.Spec.AssemblyName(), a.Spec.Description(), lo, hi)
	for i, loop := range loops {
		sc.AddSeries(fmt.Sprintf("profile %d", i+1), scatterData(loop), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	return sc
}

// WriteHTML renders a page with the section chart and both profile charts.
func WriteHTML(w io.Writer, a *assemble.Assembly, arcSegments int) error {
	page := components.NewPage()
	page.PageTitle = a.Spec.AssemblyName()
	page.AddCharts(SectionChart(a))
	for _, m := range a.Members() {
		page.AddCharts(ProfileChart(m, arcSegments))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}
	return nil
}

// Summary lists the derived dimensions of both members.
func Summary(w io.Writer, a *assemble.Assembly) error {
	for _, m := range a.Members() {
		d := m.Spec.Dimensions()
		pitchAngle := math.Atan2(float64(m.Spec.Teeth), float64(m.MateTeeth))
		_, err := fmt.Fprintf(w, "%s: pitch %.3f, root %.3f, outside %.3f, pitch cone %.3f deg, equivalent teeth %.2f\n",
			m.Component, d.PitchDiameter, d.RootDiameter, d.OutsideDiameter,
			gear.Degrees(pitchAngle), m.Profile.EquivalentTeeth)
		if err != nil {
			return err
		}
	}
	return nil
}
