package render

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentencestats/domain/stats"
)

// AxisSide binds a line to the left or right y axis of its panel
type AxisSide int

const (
	AxisLeft AxisSide = iota
	AxisRight
)

// Dash patterns in pixels at 100 DPI; scaled with the figure DPI.
var (
	DashSolid   []float64
	DashDashed  = []float64{6, 4}
	DashDotted  = []float64{2, 3}
	DashDashDot = []float64{6, 3, 2, 3}
)

// Line is one series drawn on a panel
type Line struct {
	Series stats.Series
	Label  string // legend text; Series.Name when empty
	Axis   AxisSide
	Color  drawing.Color
	Width  float64
	Dash   []float64
}

func (l Line) label() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Series.Name
}

// Threshold is a horizontal reference line, e.g. alpha = 0.05
type Threshold struct {
	Value float64
	Axis  AxisSide
	Label string
	Color drawing.Color
	Dash  []float64
}

// Panel is one chart in a figure
type Panel struct {
	Title      string
	Years      []int
	LeftLabel  string
	RightLabel string
	Lines      []Line
	Thresholds []Threshold
}

// Figure is a vertical stack of panels rendered into a single image
type Figure struct {
	Panels            []Panel
	WidthInches       float64
	PanelHeightInches float64
	DPI               float64
	LegendBelow       bool
}

// Size returns the output image dimensions in pixels
func (f Figure) Size() (width, height int) {
	w := int(math.Round(f.WidthInches * f.DPI))
	ph := int(math.Round(f.PanelHeightInches * f.DPI))
	return w, ph * len(f.Panels)
}

// Validate rejects figures that cannot be drawn
func (f Figure) Validate() error {
	if len(f.Panels) == 0 {
		return fmt.Errorf("figure has no panels")
	}
	if f.DPI <= 0 || f.WidthInches <= 0 || f.PanelHeightInches <= 0 {
		return fmt.Errorf("figure size %.2fx%.2f in at %.0f DPI is not drawable", f.WidthInches, f.PanelHeightInches, f.DPI)
	}
	w, h := f.Size()
	if w < 50 || h < 50*len(f.Panels) {
		return fmt.Errorf("figure %dx%d px too small", w, h)
	}
	return nil
}

// ThresholdLine returns the red significance reference line at alpha
func ThresholdLine(alpha float64, axis AxisSide, dash []float64) Threshold {
	return Threshold{
		Value: alpha,
		Axis:  axis,
		Label: fmt.Sprintf("p = %g", alpha),
		Color: drawing.ColorRed,
		Dash:  dash,
	}
}

// TestDash maps a test kind to its line style in combined charts
func TestDash(kind stats.TestKind) []float64 {
	switch kind {
	case stats.TestChiSquared:
		return DashDashed
	case stats.TestFisher:
		return DashDashDot
	default:
		return DashSolid
	}
}
