package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContingencyTableTotals(t *testing.T) {
	table := ContingencyTable{
		Rows:   []string{"F", "M"},
		Cols:   []string{"Prison", "Probation"},
		Counts: [][]int{{10, 10}, {50, 30}},
	}

	assert.Equal(t, []int{20, 80}, table.RowTotals())
	assert.Equal(t, []int{60, 40}, table.ColTotals())
	assert.Equal(t, 100, table.Total())
	assert.Nil(t, ContingencyTable{}.ColTotals())
}

func TestTestResultValue(t *testing.T) {
	chi := TestResult{Kind: TestChiSquared, Statistic: 3.2, PValue: 0.07, HasStatistic: true}
	v, ok := chi.Value(StatStatistic)
	assert.True(t, ok)
	assert.Equal(t, 3.2, v)

	fisher := TestResult{Kind: TestFisher, Statistic: 9.1, PValue: 0.02}
	_, ok = fisher.Value(StatStatistic)
	assert.False(t, ok, "combined results expose no statistic")
	v, ok = fisher.Value(StatPValue)
	assert.True(t, ok)
	assert.Equal(t, 0.02, v)

	v, ok = chi.Value(StatKind("bogus"))
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestCategoryResultsHelpers(t *testing.T) {
	cr := CategoryResults{
		"RACE": YearResults{
			2012: {Result: TestResult{PValue: 0.5}},
			2010: {Err: errors.New("degenerate")},
		},
		"GENDER": YearResults{2011: {}},
	}

	assert.Equal(t, []string{"GENDER", "RACE"}, cr.Categories())
	assert.Equal(t, []int{2010, 2012}, cr["RACE"].Years())
	assert.Equal(t, 1, cr.Undefined())
}

func TestSeriesDefinedValues(t *testing.T) {
	s := Series{Points: []SeriesPoint{
		{Year: 2010, Value: 1, Defined: true},
		{Year: 2011, Value: math.NaN(), Defined: false},
		{Year: 2012, Value: math.Inf(1), Defined: true},
		{Year: 2013, Value: 2, Defined: true},
	}}

	assert.Equal(t, []float64{1, 2}, s.DefinedValues())
	assert.Equal(t, []int{2010, 2011, 2012, 2013}, s.Years())
}

func TestTestKindLabel(t *testing.T) {
	assert.Equal(t, "ANOVA", TestANOVA.Label())
	assert.Equal(t, "Chi-Square", TestChiSquared.Label())
	assert.Equal(t, "Fisher", TestFisher.Label())
}
