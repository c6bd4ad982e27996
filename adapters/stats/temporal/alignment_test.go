package temporal

import (
	"errors"
	"math"
	"testing"

	"sentencestats/domain/core"
	"sentencestats/domain/stats"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chiOutcome(stat, p float64) stats.Outcome {
	return stats.Outcome{Result: stats.TestResult{Kind: stats.TestChiSquared, Statistic: stat, PValue: p, HasStatistic: true}}
}

func TestAssemble_AscendingAndAligned(t *testing.T) {
	perYear := stats.YearResults{
		2012: chiOutcome(3, 0.08),
		2010: chiOutcome(1, 0.30),
		2011: chiOutcome(2, 0.15),
	}

	s, err := Assemble(perYear, []int{2012, 2010, 2011, 2010}, SeriesSpec{Category: "RACE", Test: stats.TestChiSquared, Stat: stats.StatPValue})
	require.NoError(t, err)

	want := []stats.SeriesPoint{
		{Year: 2010, Value: 0.30, Defined: true},
		{Year: 2011, Value: 0.15, Defined: true},
		{Year: 2012, Value: 0.08, Defined: true},
	}
	if diff := cmp.Diff(want, s.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "RACE Chi-Square", s.Name)
}

func TestAssemble_Statistic(t *testing.T) {
	perYear := stats.YearResults{2010: chiOutcome(4.5, 0.03)}
	s, err := Assemble(perYear, []int{2010}, SeriesSpec{Name: "stat", Stat: stats.StatStatistic})
	require.NoError(t, err)
	assert.Equal(t, 4.5, s.Points[0].Value)
}

func TestAssemble_UndefinedPointKeepsSlot(t *testing.T) {
	perYear := stats.YearResults{
		2010: chiOutcome(1, 0.3),
		2011: {Err: core.NewPointError("chi_squared", "GENDER", 2011, core.NewDegenerateTableError("1 row"))},
		2012: chiOutcome(2, 0.1),
	}

	s, err := Assemble(perYear, []int{2010, 2011, 2012}, SeriesSpec{Stat: stats.StatPValue})
	require.NoError(t, err)
	require.Len(t, s.Points, 3)
	assert.False(t, s.Points[1].Defined)
	assert.True(t, math.IsNaN(s.Points[1].Value))
	assert.Equal(t, []float64{0.3, 0.1}, s.DefinedValues())
}

func TestAssemble_MissingYear(t *testing.T) {
	perYear := stats.YearResults{2010: chiOutcome(1, 0.3)}
	_, err := Assemble(perYear, []int{2010, 2011}, SeriesSpec{Name: "RACE", Stat: stats.StatPValue})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMissingYear))
	assert.Contains(t, err.Error(), "2011")
}

func TestAssemble_StatisticOfCombinedResult(t *testing.T) {
	perYear := stats.YearResults{
		2010: {Result: stats.TestResult{Kind: stats.TestFisher, Statistic: 9.2, PValue: 0.05}},
	}
	_, err := Assemble(perYear, []int{2010}, SeriesSpec{Test: stats.TestFisher, Stat: stats.StatStatistic})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	s, err := Assemble(perYear, []int{2010}, SeriesSpec{Test: stats.TestFisher, Stat: stats.StatPValue})
	require.NoError(t, err)
	assert.Equal(t, 0.05, s.Points[0].Value)
}

func TestAssembleObserved(t *testing.T) {
	perYear := stats.YearResults{2019: chiOutcome(1, 0.2), 2015: chiOutcome(1, 0.4)}
	s, err := AssembleObserved(perYear, SeriesSpec{Stat: stats.StatPValue})
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2019}, s.Years())
}

func TestAssembleAll(t *testing.T) {
	results := stats.CategoryResults{
		"RACE":   {2010: chiOutcome(1, 0.2)},
		"GENDER": {2010: chiOutcome(2, 0.1)},
	}
	series, err := AssembleAll(results, []int{2010}, stats.TestChiSquared, stats.StatPValue)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "GENDER", series[0].Category)
	assert.Equal(t, "RACE", series[1].Category)
}

func TestCheckAligned(t *testing.T) {
	mk := func(name string, years ...int) stats.Series {
		s := stats.Series{Name: name}
		for _, y := range years {
			s.Points = append(s.Points, stats.SeriesPoint{Year: y})
		}
		return s
	}

	assert.NoError(t, CheckAligned())
	assert.NoError(t, CheckAligned(mk("a", 2010, 2011), mk("b", 2010, 2011)))

	err := CheckAligned(mk("a", 2010, 2011, 2012), mk("b", 2010, 2012))
	require.Error(t, err)
	assert.True(t, core.IsAlignmentError(err))
	assert.Contains(t, err.Error(), "b")

	err = CheckAligned(mk("a", 2010), mk("b", 2010, 2011))
	assert.True(t, core.IsAlignmentError(err))
}

func TestNormalizeYears(t *testing.T) {
	got := normalizeYears([]int{2014, 2010, 2014, 2012})
	if diff := cmp.Diff([]int{2010, 2012, 2014}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, normalizeYears(nil))
}
