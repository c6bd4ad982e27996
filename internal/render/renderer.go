package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentencestats/domain/stats"
	"sentencestats/internal"
)

// Renderer draws figures to PNG with go-chart
type Renderer struct {
	logger *internal.Logger
}

// NewRenderer creates a renderer; a nil logger falls back to the default
func NewRenderer(logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Renderer{logger: logger.WithComponent("ChartRenderer")}
}

// RenderPNG renders every panel and stacks them top to bottom into one PNG
func (r *Renderer) RenderPNG(w io.Writer, fig Figure) error {
	if err := fig.Validate(); err != nil {
		return err
	}

	width, height := fig.Size()
	panelHeight := height / len(fig.Panels)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, p := range fig.Panels {
		img, err := r.renderPanel(p, fig, width, panelHeight)
		if err != nil {
			return fmt.Errorf("panel %d (%s): %w", i, p.Title, err)
		}
		dst := image.Rect(0, i*panelHeight, width, (i+1)*panelHeight)
		draw.Draw(canvas, dst, img, img.Bounds().Min, draw.Src)
	}

	return png.Encode(w, canvas)
}

// WriteFile renders fig and writes it to path, creating parent directories.
// Nothing is written if rendering fails.
func (r *Renderer) WriteFile(path string, fig Figure) error {
	var buf bytes.Buffer
	if err := r.RenderPNG(&buf, fig); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	w, h := fig.Size()
	r.logger.Info("wrote %s (%dx%d px, %.0f DPI, %d panel(s))", path, w, h, fig.DPI, len(fig.Panels))
	return nil
}

func (r *Renderer) renderPanel(p Panel, fig Figure, width, height int) (image.Image, error) {
	ch := r.buildChart(p, fig, width, height)
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// buildChart maps a panel onto a go-chart chart. go-chart draws the
// primary y axis on the right and the secondary on the left; yAxisType
// hides that from the layouts.
func (r *Renderer) buildChart(p Panel, fig Figure, width, height int) chart.Chart {
	scale := fig.DPI / 100
	xRange, ticks := yearAxis(p.Years)

	used := map[AxisSide]bool{}
	var series []chart.Series
	values := map[AxisSide][]float64{}
	for _, l := range p.Lines {
		used[l.Axis] = true
		xs, ys := definedXY(l.Series)
		if len(xs) == 0 {
			r.logger.Warn("%s: no defined points in %q", p.Title, l.label())
			continue
		}
		values[l.Axis] = append(values[l.Axis], ys...)
		series = append(series, chart.ContinuousSeries{
			Name:    l.label(),
			YAxis:   yAxisType(l.Axis),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor:     l.Color,
				StrokeWidth:     math.Max(1, l.Width) * scale,
				StrokeDashArray: scaleDash(l.Dash, scale),
			},
		})
	}

	for _, t := range p.Thresholds {
		used[t.Axis] = true
		values[t.Axis] = append(values[t.Axis], t.Value)
		series = append(series, chart.ContinuousSeries{
			Name:    t.Label,
			YAxis:   yAxisType(t.Axis),
			XValues: []float64{xRange.Min, xRange.Max},
			YValues: []float64{t.Value, t.Value},
			Style: chart.Style{
				StrokeColor:     t.Color,
				StrokeWidth:     scale,
				StrokeDashArray: scaleDash(t.Dash, scale),
			},
		})
	}

	left := paddedRange(values[AxisLeft])
	right := paddedRange(values[AxisRight])
	entries := legendEntries(series)
	series = append(series, undefinedMarkers(p.Lines, left, right)...)

	if len(series) == 0 {
		// go-chart refuses to draw a chart without a visible series
		used[AxisLeft] = true
		series = append(series, chart.ContinuousSeries{
			YAxis:   yAxisType(AxisLeft),
			Style:   chart.Style{StrokeColor: drawing.ColorWhite},
			XValues: []float64{xRange.Min, xRange.Max},
			YValues: []float64{left.Min, left.Min},
		})
	}

	ch := chart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		DPI:        fig.DPI,
		Background: chart.Style{Padding: chart.Box{Top: int(30 * scale), Left: int(20 * scale), Right: int(20 * scale), Bottom: bottomPadding(fig, len(entries), scale)}},
		XAxis: chart.XAxis{
			Name:      "Year",
			NameStyle: chart.Style{Hidden: true},
			Range:     xRange,
			Ticks:     ticks,
			TickStyle: chart.Style{TextRotationDegrees: 90},
		},
		YAxisSecondary: chart.YAxis{
			Name:           p.LeftLabel,
			Range:          left,
			ValueFormatter: compactFormatter,
			Style:          chart.Style{Hidden: !used[AxisLeft]},
		},
		YAxis: chart.YAxis{
			Name:           p.RightLabel,
			Range:          right,
			ValueFormatter: compactFormatter,
			Style:          chart.Style{Hidden: !used[AxisRight]},
		},
		Series: series,
	}

	ch.Elements = []chart.Renderable{xAxisName(ch.XAxis)}
	if fig.LegendBelow {
		ch.Elements = append(ch.Elements, belowLegend(entries, ch.XAxis))
	} else {
		ch.Elements = append(ch.Elements,
			cornerLegend(entriesOn(entries, yAxisType(AxisLeft)), legendUpperLeft),
			cornerLegend(entriesOn(entries, yAxisType(AxisRight)), legendUpperRight),
		)
	}
	return ch
}

// bottomPadding leaves room under the plot for the rotated year labels, the
// axis name and, below those, the legend rows
func bottomPadding(fig Figure, entries int, scale float64) int {
	if !fig.LegendBelow {
		return int(50*scale) + 20
	}
	rows := max(1, (entries+legendColumns-1)/legendColumns)
	return int((70+18*float64(rows))*scale) + 40
}

// yearAxis returns an x range spanning the years and one tick per year.
// go-chart pins the x range to the tick extent, so a single year gets two
// unlabeled ticks half a year either side.
func yearAxis(years []int) (*chart.ContinuousRange, []chart.Tick) {
	if len(years) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}, nil
	}
	lo, hi := years[0], years[0]
	ticks := make([]chart.Tick, 0, len(years))
	for _, y := range years {
		lo, hi = min(lo, y), max(hi, y)
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	if lo == hi {
		ticks = append(ticks, chart.Tick{Value: float64(lo) - 0.5}, chart.Tick{Value: float64(hi) + 0.5})
		return &chart.ContinuousRange{Min: float64(lo) - 0.5, Max: float64(hi) + 0.5}, ticks
	}
	return &chart.ContinuousRange{Min: float64(lo), Max: float64(hi)}, ticks
}

// paddedRange spans values with 5% headroom. A flat or empty set still gets
// a non-zero span so go-chart never sees a zero range.
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}

	span := hi - lo
	if span < 1e-12 {
		span = math.Max(math.Abs(hi), 1)
		return &chart.ContinuousRange{Min: lo - 0.1*span, Max: hi + 0.1*span}
	}
	return &chart.ContinuousRange{Min: lo - 0.05*span, Max: hi + 0.05*span}
}

func definedXY(s stats.Series) (xs, ys []float64) {
	for _, pt := range s.Points {
		if !pt.Defined || math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			continue
		}
		xs = append(xs, float64(pt.Year))
		ys = append(ys, pt.Value)
	}
	return xs, ys
}

// undefinedMarkers labels every undefined point "n/a" just above the axis floor
func undefinedMarkers(lines []Line, left, right *chart.ContinuousRange) []chart.Series {
	byAxis := map[AxisSide][]chart.Value2{}
	seen := map[AxisSide]map[int]bool{AxisLeft: {}, AxisRight: {}}
	for _, l := range lines {
		rng := left
		if l.Axis == AxisRight {
			rng = right
		}
		for _, pt := range l.Series.Points {
			if pt.Defined || seen[l.Axis][pt.Year] {
				continue
			}
			seen[l.Axis][pt.Year] = true
			byAxis[l.Axis] = append(byAxis[l.Axis], chart.Value2{
				XValue: float64(pt.Year),
				YValue: rng.Min + 0.04*(rng.Max-rng.Min),
				Label:  "n/a",
			})
		}
	}

	var out []chart.Series
	for _, axis := range []AxisSide{AxisLeft, AxisRight} {
		if len(byAxis[axis]) == 0 {
			continue
		}
		out = append(out, chart.AnnotationSeries{
			Name:        "undefined",
			YAxis:       yAxisType(axis),
			Annotations: byAxis[axis],
			Style:       chart.Style{FontSize: 7},
		})
	}
	return out
}

// yAxisType maps a side to the go-chart axis drawn there
func yAxisType(side AxisSide) chart.YAxisType {
	if side == AxisRight {
		return chart.YAxisPrimary
	}
	return chart.YAxisSecondary
}

func scaleDash(dash []float64, scale float64) []float64 {
	if len(dash) == 0 {
		return nil
	}
	out := make([]float64, len(dash))
	for i, d := range dash {
		out[i] = d * scale
	}
	return out
}

func compactFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(f, 'g', 3, 64)
}
