package render

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentencestats/domain/stats"
)

// TrendPanel is the statistic and p-value pair for one category
type TrendPanel struct {
	Category  string
	Statistic stats.Series
	PValue    stats.Series
}

// ChiTrendFigure lays out one dual-axis panel per category: the chi-squared
// statistic on the left axis (solid), its p-value on the right (dashed), and
// a red dotted alpha line on the p-value axis. Panels share a 10in width and
// split a 20in height.
func ChiTrendFigure(panels []TrendPanel, years []int, alpha, dpi float64) Figure {
	fig := Figure{
		WidthInches:       10,
		PanelHeightInches: 20,
		DPI:               dpi,
	}
	if len(panels) > 0 {
		fig.PanelHeightInches = 20 / float64(len(panels))
	}

	for _, tp := range panels {
		fig.Panels = append(fig.Panels, Panel{
			Title:      fmt.Sprintf("Chi-squared and p-value for %s", tp.Category),
			Years:      years,
			LeftLabel:  "Chi-squared",
			RightLabel: "p-value",
			Lines: []Line{
				{Series: tp.Statistic, Label: "Chi-squared", Axis: AxisLeft, Color: drawing.ColorBlack, Width: 1, Dash: DashSolid},
				{Series: tp.PValue, Label: "p-value", Axis: AxisRight, Color: drawing.ColorBlack, Width: 1, Dash: DashDashed},
			},
			Thresholds: []Threshold{ThresholdLine(alpha, AxisRight, DashDotted)},
		})
	}
	return fig
}

// CombinedFigure overlays p-value series for every test and category on one
// panel. Line style encodes the test, line width alternates per category.
func CombinedFigure(series []stats.Series, categories []string, years []int, alpha, dpi float64) Figure {
	widths := map[string]float64{}
	for i, c := range categories {
		widths[c] = float64(i%2 + 1)
	}

	panel := Panel{
		Title:      "Combined p-values by year",
		Years:      years,
		LeftLabel:  "p-value",
		Thresholds: []Threshold{ThresholdLine(alpha, AxisLeft, DashDashed)},
	}
	for _, s := range series {
		w, ok := widths[s.Category]
		if !ok {
			w = 1
		}
		panel.Lines = append(panel.Lines, Line{
			Series: s,
			Label:  fmt.Sprintf("%s: %s", s.Test.Label(), s.Category),
			Axis:   AxisLeft,
			Color:  drawing.ColorBlack,
			Width:  w,
			Dash:   TestDash(s.Test),
		})
	}

	return Figure{
		Panels:            []Panel{panel},
		WidthInches:       10,
		PanelHeightInches: 8,
		DPI:               dpi,
		LegendBelow:       true,
	}
}
