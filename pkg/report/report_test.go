package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/bevel/internal/monitoring"
	"github.com/chazu/bevel/pkg/assemble"
	"github.com/chazu/bevel/pkg/gear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

func defaultAssembly(t *testing.T) *assemble.Assembly {
	t.Helper()
	a, err := assemble.Assemble(gear.DefaultPair())
	require.NoError(t, err)
	return a
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestSectionPlotPNG(t *testing.T) {
	a := defaultAssembly(t)
	p, err := SectionPlot(a)
	require.NoError(t, err)
	assert.Equal(t, "25/10 Bevel Gears cross-section", p.Title.Text)
	// One unit is as long on both axes.
	assert.InDelta(t, p.X.Max-p.X.Min, p.Y.Max-p.Y.Min, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output is not a PNG")
}

func TestProfilePlotPNG(t *testing.T) {
	a := defaultAssembly(t)
	for _, m := range a.Members() {
		p, err := ProfilePlot(m, 8)
		require.NoError(t, err)
		assert.Contains(t, p.Title.Text, m.Component)

		var buf bytes.Buffer
		require.NoError(t, WritePNG(&buf, p))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "%s: output is not a PNG", m.Component)
	}
}

func TestWriteHTML(t *testing.T) {
	a := defaultAssembly(t)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, a, 8))
	html := buf.String()
	for _, want := range []string{"25/10 Bevel Gears", "25 Tooth", "10 Tooth", "profile 1", "outline", "root point"} {
		assert.Contains(t, html, want)
	}
}

func TestSectionChartSeries(t *testing.T) {
	a := defaultAssembly(t)
	sc := SectionChart(a)
	assert.Len(t, sc.MultiSeries, len(a.Profiles))
}

func TestSummary(t *testing.T) {
	a := defaultAssembly(t)
	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, a))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "25 Tooth: pitch 50.000"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "10 Tooth: pitch 20.000"), lines[1])
}
