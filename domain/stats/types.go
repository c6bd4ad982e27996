package stats

import (
	"math"
	"sort"
)

// ============================================================================
// TEST PRIMITIVES
// ============================================================================

// TestKind names the hypothesis test that produced a result
type TestKind string

const (
	TestChiSquared TestKind = "chi_squared"
	TestANOVA      TestKind = "anova"
	TestFisher     TestKind = "fisher"
)

// Label is the display name used in legends and reports.
func (k TestKind) Label() string {
	switch k {
	case TestChiSquared:
		return "Chi-Square"
	case TestANOVA:
		return "ANOVA"
	case TestFisher:
		return "Fisher"
	default:
		return string(k)
	}
}

// StatKind selects which value of a TestResult a series carries
type StatKind string

const (
	StatStatistic StatKind = "statistic"
	StatPValue    StatKind = "p_value"
)

// ContingencyTable cross-tabulates category values (rows) against outcome
// values (columns). Counts are never negative.
type ContingencyTable struct {
	Rows   []string `json:"rows"`
	Cols   []string `json:"cols"`
	Counts [][]int  `json:"counts"`
}

// RowTotals returns the marginal count of each row
func (t ContingencyTable) RowTotals() []int {
	totals := make([]int, len(t.Counts))
	for i, row := range t.Counts {
		for _, c := range row {
			totals[i] += c
		}
	}
	return totals
}

// ColTotals returns the marginal count of each column
func (t ContingencyTable) ColTotals() []int {
	if len(t.Counts) == 0 {
		return nil
	}
	totals := make([]int, len(t.Counts[0]))
	for _, row := range t.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}

// Total returns the grand total
func (t ContingencyTable) Total() int {
	n := 0
	for _, c := range t.RowTotals() {
		n += c
	}
	return n
}

// TestResult is one test's output for one (category, year).
// For combined results HasStatistic is false and Statistic holds the
// combination statistic for reference only.
type TestResult struct {
	Kind         TestKind `json:"kind"`
	Statistic    float64  `json:"statistic"`
	PValue       float64  `json:"p_value"`
	EffectSize   float64  `json:"effect_size,omitempty"` // Cramer's V or eta squared
	DF1          int      `json:"df1"`
	DF2          int      `json:"df2,omitempty"`
	N            int      `json:"n"`
	HasStatistic bool     `json:"has_statistic"`
}

// Value extracts the requested stat
func (r TestResult) Value(stat StatKind) (float64, bool) {
	switch stat {
	case StatStatistic:
		return r.Statistic, r.HasStatistic
	case StatPValue:
		return r.PValue, true
	default:
		return math.NaN(), false
	}
}

// Outcome is the result of one (category, year) test. A non-nil Err marks
// the point undefined.
type Outcome struct {
	Result TestResult
	Err    error
}

// Defined reports whether the outcome holds a usable result
func (o Outcome) Defined() bool {
	return o.Err == nil
}

// YearResults maps sentence year to outcome
type YearResults map[int]Outcome

// Years returns the keys in ascending order
func (yr YearResults) Years() []int {
	years := make([]int, 0, len(yr))
	for y := range yr {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// CategoryResults maps category field name to per-year outcomes
type CategoryResults map[string]YearResults

// Categories returns the category names in ascending order
func (cr CategoryResults) Categories() []string {
	names := make([]string, 0, len(cr))
	for c := range cr {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Undefined counts outcomes that carry an error
func (cr CategoryResults) Undefined() int {
	n := 0
	for _, yr := range cr {
		for _, o := range yr {
			if !o.Defined() {
				n++
			}
		}
	}
	return n
}

// ============================================================================
// SERIES
// ============================================================================

// SeriesPoint is one plotted value. Undefined points keep their year so the
// x-axis stays aligned across series.
type SeriesPoint struct {
	Year    int     `json:"year"`
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Series is an ordered sequence of points, strictly ascending by year
type Series struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Test     TestKind      `json:"test"`
	Stat     StatKind      `json:"stat"`
	Points   []SeriesPoint `json:"points"`
}

// Years returns the x values
func (s Series) Years() []int {
	years := make([]int, len(s.Points))
	for i, p := range s.Points {
		years[i] = p.Year
	}
	return years
}

// DefinedValues returns the finite values of defined points
func (s Series) DefinedValues() []float64 {
	var vals []float64
	for _, p := range s.Points {
		if p.Defined && !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			vals = append(vals, p.Value)
		}
	}
	return vals
}
