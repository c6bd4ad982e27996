package render

import (
	"bytes"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"sentencestats/domain/stats"
	"sentencestats/internal"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
)

const testDPI = 50

func quietRenderer() *Renderer {
	logger := internal.NewLogger(internal.LogLevelError)
	logger.SetOutput(io.Discard)
	return NewRenderer(logger)
}

func series(category string, test stats.TestKind, years []int, values ...float64) stats.Series {
	s := stats.Series{Name: category, Category: category, Test: test, Stat: stats.StatPValue}
	for i, y := range years {
		v := values[i]
		s.Points = append(s.Points, stats.SeriesPoint{Year: y, Value: v, Defined: !math.IsNaN(v)})
	}
	return s
}

var years = []int{2010, 2011, 2012, 2013}

func decode(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderPNG_ChiTrendFigure(t *testing.T) {
	var panels []TrendPanel
	for _, c := range []string{"RACE", "GENDER", "AGE_GROUP"} {
		panels = append(panels, TrendPanel{
			Category:  c,
			Statistic: series(c, stats.TestChiSquared, years, 3.2, 5.1, 1.7, 8.4),
			PValue:    series(c, stats.TestChiSquared, years, 0.2, 0.04, 0.6, 0.01),
		})
	}
	fig := ChiTrendFigure(panels, years, 0.05, testDPI)

	var buf bytes.Buffer
	require.NoError(t, quietRenderer().RenderPNG(&buf, fig))

	w, h := decode(t, buf.Bytes())
	wantW, wantH := fig.Size()
	assert.Equal(t, 500, wantW)
	assert.Equal(t, wantW, w)
	assert.Equal(t, wantH, h)
	assert.InDelta(t, 20*testDPI, h, 3)
}

func TestRenderPNG_UndefinedAndFlatSeries(t *testing.T) {
	panels := []TrendPanel{{
		Category:  "GENDER",
		Statistic: series("GENDER", stats.TestChiSquared, years, 2, 2, math.NaN(), 2),
		PValue:    series("GENDER", stats.TestChiSquared, years, math.NaN(), math.NaN(), math.NaN(), math.NaN()),
	}}

	var buf bytes.Buffer
	err := quietRenderer().RenderPNG(&buf, ChiTrendFigure(panels, years, 0.05, testDPI))
	require.NoError(t, err)
	decode(t, buf.Bytes())
}

func TestRenderPNG_CombinedFigure(t *testing.T) {
	var all []stats.Series
	for _, c := range []string{"GENDER", "RACE"} {
		all = append(all,
			series(c, stats.TestANOVA, years, 0.01, 0.2, 0.03, 0.5),
			series(c, stats.TestChiSquared, years, 0.3, math.NaN(), 0.07, 0.02),
			series(c, stats.TestFisher, years, 0.02, math.NaN(), 0.01, 0.06),
		)
	}
	fig := CombinedFigure(all, []string{"GENDER", "RACE"}, years, 0.05, testDPI)
	require.Len(t, fig.Panels, 1)
	require.Len(t, fig.Panels[0].Lines, 6)
	assert.Equal(t, "Chi-Square: RACE", fig.Panels[0].Lines[4].Label)
	assert.Equal(t, 2.0, fig.Panels[0].Lines[4].Width)
	assert.Equal(t, DashDashed, fig.Panels[0].Lines[4].Dash)
	assert.True(t, fig.LegendBelow)

	var buf bytes.Buffer
	require.NoError(t, quietRenderer().RenderPNG(&buf, fig))
	w, h := decode(t, buf.Bytes())
	assert.Equal(t, 10*testDPI, w)
	assert.Equal(t, 8*testDPI, h)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chart.png")
	fig := CombinedFigure([]stats.Series{series("GENDER", stats.TestANOVA, years, 0.1, 0.2, 0.3, 0.4)}, []string{"GENDER"}, years, 0.05, testDPI)

	require.NoError(t, quietRenderer().WriteFile(path, fig))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decode(t, data)
}

func TestRenderPNG_InvalidFigure(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, quietRenderer().RenderPNG(&buf, Figure{DPI: 300, WidthInches: 10, PanelHeightInches: 8}))
	assert.Error(t, quietRenderer().RenderPNG(&buf, Figure{Panels: []Panel{{}}, DPI: 0, WidthInches: 10, PanelHeightInches: 8}))
	assert.Zero(t, buf.Len())
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{0.2, 0.2})
	assert.Less(t, r.Min, 0.2)
	assert.Greater(t, r.Max, 0.2)

	r = paddedRange(nil)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = paddedRange([]float64{math.NaN(), 0, 10})
	assert.InDelta(t, -0.5, r.Min, 1e-12)
	assert.InDelta(t, 10.5, r.Max, 1e-12)
}

func TestYearAxis(t *testing.T) {
	rng, ticks := yearAxis([]int{2012, 2010})
	assert.Equal(t, 2010.0, rng.Min)
	assert.Equal(t, 2012.0, rng.Max)
	require.Len(t, ticks, 2)
	assert.Equal(t, "2012", ticks[0].Label)

	// a single year still spans a non-zero range
	rng, ticks = yearAxis([]int{2015})
	assert.Equal(t, 2014.5, rng.Min)
	assert.Equal(t, 2015.5, rng.Max)
	require.Len(t, ticks, 3)
	assert.Empty(t, ticks[1].Label)
}

func TestRenderPNG_SingleYear(t *testing.T) {
	one := []int{2015}
	panels := []TrendPanel{{
		Category:  "RACE",
		Statistic: series("RACE", stats.TestChiSquared, one, 4.2),
		PValue:    series("RACE", stats.TestChiSquared, one, 0.04),
	}}
	var buf bytes.Buffer
	require.NoError(t, quietRenderer().RenderPNG(&buf, ChiTrendFigure(panels, one, 0.05, testDPI)))
	decode(t, buf.Bytes())
}

func TestYAxisType(t *testing.T) {
	// go-chart draws the secondary axis on the left
	assert.Equal(t, chart.YAxisSecondary, yAxisType(AxisLeft))
	assert.Equal(t, chart.YAxisPrimary, yAxisType(AxisRight))
}

func seriesByName(t *testing.T, ch chart.Chart, name string) chart.ContinuousSeries {
	t.Helper()
	for _, s := range ch.Series {
		if cs, ok := s.(chart.ContinuousSeries); ok && cs.Name == name {
			return cs
		}
	}
	t.Fatalf("no series named %q", name)
	return chart.ContinuousSeries{}
}

func trendChart(t *testing.T) (chart.Chart, Figure) {
	t.Helper()
	fig := ChiTrendFigure([]TrendPanel{{
		Category:  "RACE",
		Statistic: series("RACE", stats.TestChiSquared, years, 10, 20, 30, 50),
		PValue:    series("RACE", stats.TestChiSquared, years, 0.2, 0.1, 0.06, 0.04),
	}}, years, 0.05, testDPI)
	w, h := fig.Size()
	return quietRenderer().buildChart(fig.Panels[0], fig, w, h), fig
}

func combinedChart(t *testing.T) (chart.Chart, Figure) {
	t.Helper()
	var all []stats.Series
	for _, c := range []string{"GENDER", "RACE"} {
		all = append(all,
			series(c, stats.TestANOVA, years, 0.01, 0.2, 0.03, 0.5),
			series(c, stats.TestChiSquared, years, 0.3, 0.1, 0.07, 0.02),
			series(c, stats.TestFisher, years, 0.02, 0.4, 0.01, 0.06),
		)
	}
	fig := CombinedFigure(all, []string{"GENDER", "RACE"}, years, 0.05, testDPI)
	w, h := fig.Size()
	return quietRenderer().buildChart(fig.Panels[0], fig, w, h), fig
}

func TestBuildChart_TrendAxes(t *testing.T) {
	ch, _ := trendChart(t)

	assert.Equal(t, "Chi-squared", ch.YAxisSecondary.Name)
	assert.Equal(t, "p-value", ch.YAxis.Name)
	assert.False(t, ch.YAxisSecondary.Style.Hidden)
	assert.False(t, ch.YAxis.Style.Hidden)

	assert.Equal(t, chart.YAxisSecondary, seriesByName(t, ch, "Chi-squared").YAxis)
	assert.Equal(t, chart.YAxisPrimary, seriesByName(t, ch, "p-value").YAxis)

	// statistic range on the left, p-value range on the right
	assert.Greater(t, ch.YAxisSecondary.Range.GetMax(), 50.0)
	assert.Less(t, ch.YAxis.Range.GetMax(), 1.0)

	// the alpha line runs from the first to the last year, inside the plot
	threshold := seriesByName(t, ch, "p = 0.05")
	assert.Equal(t, chart.YAxisPrimary, threshold.YAxis)
	if diff := cmp.Diff([]float64{2010, 2013}, threshold.XValues); diff != "" {
		t.Errorf("threshold x values mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildChart_CombinedHidesUnusedAxis(t *testing.T) {
	ch, _ := combinedChart(t)

	assert.Equal(t, "p-value", ch.YAxisSecondary.Name)
	assert.False(t, ch.YAxisSecondary.Style.Hidden)
	assert.True(t, ch.YAxis.Style.Hidden)
	for _, s := range ch.Series {
		assert.Equal(t, chart.YAxisSecondary, s.GetYAxis(), s.GetName())
	}
	assert.True(t, ch.XAxis.NameStyle.Hidden, "x axis name is drawn under the rotated ticks")
}

func testChartRenderer(t *testing.T, fig Figure) (chart.Renderer, chart.Style) {
	t.Helper()
	w, h := fig.Size()
	r, err := chart.PNG(w, h)
	require.NoError(t, err)
	r.SetDPI(fig.DPI)
	font, err := chart.GetDefaultFont()
	require.NoError(t, err)
	return r, chart.Style{Font: font}
}

func TestBelowLegendLayout(t *testing.T) {
	ch, fig := combinedChart(t)
	r, defaults := testChartRenderer(t, fig)
	_, h := fig.Size()

	entries := legendEntries(ch.Series)
	require.Len(t, entries, 7, "six test lines and the alpha line")

	cb := chart.Box{Top: 30, Left: 60, Right: 460, Bottom: 250}
	axisStyle := axisTextStyle(defaults)
	ticksBottom := xTickBottom(r, ch.XAxis, cb, axisStyle)
	nameBaseline := xAxisBottom(r, ch.XAxis, cb, axisStyle)
	layout := belowLayout(r, entries, cb, nameBaseline+legendMargin, legendStyle(defaults))

	assert.Greater(t, ticksBottom, cb.Bottom)
	assert.Greater(t, nameBaseline, ticksBottom)
	assert.Greater(t, layout.Box.Top, nameBaseline, "legend sits below the x axis, not over the title")
	assert.LessOrEqual(t, layout.Box.Bottom, h)
	assert.InDelta(t, (cb.Left+cb.Right)/2, (layout.Box.Left+layout.Box.Right)/2, 1)

	require.Len(t, layout.Cells, 7)
	assert.Equal(t, layout.Cells[0].Y, layout.Cells[2].Y, "three entries per row")
	assert.Greater(t, layout.Cells[3].Y, layout.Cells[0].Y)
	for _, c := range layout.Cells {
		assert.Greater(t, c.Y, layout.Box.Top)
		assert.LessOrEqual(t, c.Y, layout.Box.Bottom)
	}
}

func TestCornerLegendLayout(t *testing.T) {
	ch, fig := trendChart(t)
	r, defaults := testChartRenderer(t, fig)
	style := legendStyle(defaults)

	entries := legendEntries(ch.Series)
	left := entriesOn(entries, yAxisType(AxisLeft))
	right := entriesOn(entries, yAxisType(AxisRight))
	require.Len(t, left, 1)
	require.Len(t, right, 2)
	assert.Equal(t, "Chi-squared", left[0].Label)
	assert.Equal(t, []string{"p-value", "p = 0.05"}, []string{right[0].Label, right[1].Label})

	cb := chart.Box{Top: 30, Left: 60, Right: 460, Bottom: 250}
	l := cornerLayout(r, left, cb, legendUpperLeft, style)
	assert.Equal(t, cb.Left+legendMargin, l.Box.Left)
	assert.Equal(t, cb.Top+legendMargin, l.Box.Top)

	rt := cornerLayout(r, right, cb, legendUpperRight, style)
	assert.Equal(t, cb.Right-legendMargin, rt.Box.Right)
	assert.Equal(t, cb.Top+legendMargin, rt.Box.Top)
	assert.Less(t, l.Box.Right, rt.Box.Left)
	require.Len(t, rt.Cells, 2)
	assert.Greater(t, rt.Cells[1].Y, rt.Cells[0].Y)
}
