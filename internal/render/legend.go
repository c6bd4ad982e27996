package render

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	legendPadding    = 5
	legendMargin     = 8
	legendRowGap     = 5
	legendLineLength = 25
	legendLineGap    = 5
	legendColumns    = 3
)

type legendAnchor int

const (
	legendUpperLeft legendAnchor = iota
	legendUpperRight
)

// legendEntry is one line sample and its label
type legendEntry struct {
	Label string
	Axis  chart.YAxisType
	Style chart.Style
}

// legendCell places an entry; X, Y is where the sample line starts, Y on
// the text baseline
type legendCell struct {
	legendEntry
	X, Y int
}

type legendLayout struct {
	Box        chart.Box
	Cells      []legendCell
	TextHeight int
}

// legendEntries lists the visible, named line series
func legendEntries(series []chart.Series) []legendEntry {
	var entries []legendEntry
	for _, s := range series {
		if s.GetStyle().Hidden || s.GetName() == "" {
			continue
		}
		if _, isAnnotation := s.(chart.AnnotationSeries); isAnnotation {
			continue
		}
		entries = append(entries, legendEntry{Label: s.GetName(), Axis: s.GetYAxis(), Style: s.GetStyle()})
	}
	return entries
}

func entriesOn(entries []legendEntry, axis chart.YAxisType) []legendEntry {
	var out []legendEntry
	for _, e := range entries {
		if e.Axis == axis {
			out = append(out, e)
		}
	}
	return out
}

func legendStyle(defaults chart.Style) chart.Style {
	return defaults.InheritFrom(chart.Style{
		FillColor:   drawing.ColorWhite,
		FontColor:   chart.DefaultTextColor,
		FontSize:    8.0,
		StrokeColor: chart.DefaultAxisColor,
		StrokeWidth: chart.DefaultAxisLineWidth,
	})
}

// axisTextStyle matches the text go-chart uses for axis ticks and names
func axisTextStyle(defaults chart.Style) chart.Style {
	return defaults.InheritFrom(chart.Style{
		FontColor: chart.DefaultAxisColor,
		FontSize:  chart.DefaultAxisFontSize,
	})
}

func measureEntries(r chart.Renderer, entries []legendEntry, style chart.Style) (width, height int) {
	for _, e := range entries {
		tb := chart.Draw.MeasureText(r, e.Label, style)
		width = max(width, tb.Width())
		height = max(height, tb.Height())
	}
	return width, height
}

// cornerLayout stacks entries in a box inside the top corner of the plot
func cornerLayout(r chart.Renderer, entries []legendEntry, cb chart.Box, anchor legendAnchor, style chart.Style) legendLayout {
	textW, textH := measureEntries(r, entries, style)
	n := len(entries)
	boxW := 2*legendPadding + legendLineLength + legendLineGap + textW
	boxH := 2*legendPadding + n*textH + (n-1)*legendRowGap

	left := cb.Left + legendMargin
	if anchor == legendUpperRight {
		left = cb.Right - legendMargin - boxW
	}
	top := cb.Top + legendMargin

	layout := legendLayout{
		Box:        chart.Box{Top: top, Left: left, Right: left + boxW, Bottom: top + boxH},
		TextHeight: textH,
	}
	for i, e := range entries {
		layout.Cells = append(layout.Cells, legendCell{
			legendEntry: e,
			X:           left + legendPadding,
			Y:           top + legendPadding + textH + i*(textH+legendRowGap),
		})
	}
	return layout
}

// belowLayout arranges entries in rows of up to legendColumns, centred
// under the plot with its top edge at top
func belowLayout(r chart.Renderer, entries []legendEntry, cb chart.Box, top int, style chart.Style) legendLayout {
	textW, textH := measureEntries(r, entries, style)
	cols := min(legendColumns, len(entries))
	rows := (len(entries) + cols - 1) / cols
	cellW := legendLineLength + legendLineGap + textW

	boxW := 2*legendPadding + cols*cellW + (cols-1)*chart.DefaultMinimumTickHorizontalSpacing
	boxH := 2*legendPadding + rows*textH + (rows-1)*legendRowGap
	left := cb.Left + (cb.Width()-boxW)/2

	layout := legendLayout{
		Box:        chart.Box{Top: top, Left: left, Right: left + boxW, Bottom: top + boxH},
		TextHeight: textH,
	}
	for i, e := range entries {
		col, row := i%cols, i/cols
		layout.Cells = append(layout.Cells, legendCell{
			legendEntry: e,
			X:           left + legendPadding + col*(cellW+chart.DefaultMinimumTickHorizontalSpacing),
			Y:           top + legendPadding + textH + row*(textH+legendRowGap),
		})
	}
	return layout
}

func drawLegend(r chart.Renderer, layout legendLayout, style chart.Style) {
	chart.Draw.Box(r, layout.Box, style)

	mid := layout.TextHeight >> 1
	for _, c := range layout.Cells {
		r.SetStrokeColor(c.Style.GetStrokeColor())
		r.SetStrokeWidth(c.Style.GetStrokeWidth())
		r.SetStrokeDashArray(c.Style.GetStrokeDashArray())
		r.MoveTo(c.X, c.Y-mid)
		r.LineTo(c.X+legendLineLength, c.Y-mid)
		r.Stroke()
		r.ResetStyle()

		chart.Draw.Text(r, c.Label, c.X+legendLineLength+legendLineGap, c.Y, style)
	}
}

// cornerLegend draws entries in one top corner of the plot area
func cornerLegend(entries []legendEntry, anchor legendAnchor) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if len(entries) == 0 {
			return
		}
		style := legendStyle(defaults)
		drawLegend(r, cornerLayout(r, entries, cb, anchor, style), style)
	}
}

// belowLegend draws entries under the x axis tick labels and name, in the
// bottom padding of the chart
func belowLegend(entries []legendEntry, xa chart.XAxis) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if len(entries) == 0 {
			return
		}
		top := xAxisBottom(r, xa, cb, axisTextStyle(defaults)) + legendMargin
		style := legendStyle(defaults)
		drawLegend(r, belowLayout(r, entries, cb, top, style), style)
	}
}

// xTickBottom is the lowest row reached by the x tick labels. go-chart
// measures rotated labels unrotated; turned 90 degrees a label extends by
// its width below the tick.
func xTickBottom(r chart.Renderer, xa chart.XAxis, cb chart.Box, style chart.Style) int {
	rotated := xa.TickStyle.TextRotationDegrees != 0
	extent := 0
	for _, t := range xa.Ticks {
		tb := chart.Draw.MeasureText(r, t.Label, style)
		if rotated {
			extent = max(extent, tb.Width())
		} else {
			extent = max(extent, tb.Height())
		}
	}
	if rotated {
		return cb.Bottom + 2*chart.DefaultXAxisMargin + extent
	}
	return cb.Bottom + chart.DefaultXAxisMargin + extent
}

// xAxisBottom is the baseline of the x axis name, under the tick labels
func xAxisBottom(r chart.Renderer, xa chart.XAxis, cb chart.Box, style chart.Style) int {
	bottom := xTickBottom(r, xa, cb, style)
	if xa.Name == "" {
		return bottom
	}
	return bottom + chart.DefaultXAxisMargin + chart.Draw.MeasureText(r, xa.Name, style).Height()
}

// xAxisName draws the x axis name below rotated tick labels, where
// go-chart's own placement would overlap them
func xAxisName(xa chart.XAxis) chart.Renderable {
	return func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
		if xa.Name == "" {
			return
		}
		style := axisTextStyle(defaults)
		tb := chart.Draw.MeasureText(r, xa.Name, style)
		x := cb.Left + (cb.Width()-tb.Width())/2
		chart.Draw.Text(r, xa.Name, x, xAxisBottom(r, xa, cb, style), style)
	}
}
