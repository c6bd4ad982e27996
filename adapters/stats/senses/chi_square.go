package senses

import (
	"fmt"
	"math"
	"sort"

	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal/analysis/dist"
)

// ChiSquareSense runs Pearson's chi-squared test of independence
type ChiSquareSense struct {
	yates bool
	dists *dist.StatisticalDistributions
}

// NewChiSquareSense creates a Chi-Square sense. With yates set, 2x2 tables
// get the continuity correction.
func NewChiSquareSense(yates bool) *ChiSquareSense {
	return &ChiSquareSense{yates: yates, dists: dist.NewDistributions()}
}

// Name returns the sense name
func (s *ChiSquareSense) Name() stats.TestKind {
	return stats.TestChiSquared
}

// Description returns a human-readable description
func (s *ChiSquareSense) Description() string {
	if s.yates {
		return "Pearson chi-squared test of independence with Yates correction on 2x2 tables"
	}
	return "Pearson chi-squared test of independence"
}

// Test crosses categoryField against outcomeField within the subgroup
func (s *ChiSquareSense) Test(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) (stats.TestResult, error) {
	return s.TestTable(BuildContingencyTable(subgroup, categoryField, outcomeField))
}

// TestTable computes the statistic for a prepared table
func (s *ChiSquareSense) TestTable(table stats.ContingencyTable) (stats.TestResult, error) {
	rows := len(table.Counts)
	if rows < 2 {
		return stats.TestResult{}, core.NewDegenerateTableError(fmt.Sprintf("%d distinct row value(s)", rows))
	}
	cols := len(table.Counts[0])
	if cols < 2 {
		return stats.TestResult{}, core.NewDegenerateTableError(fmt.Sprintf("%d distinct column value(s)", cols))
	}
	for i, row := range table.Counts {
		if len(row) != cols {
			return stats.TestResult{}, core.NewInvalidInputError(fmt.Sprintf("row %d has %d columns, want %d", i, len(row), cols))
		}
		for _, c := range row {
			if c < 0 {
				return stats.TestResult{}, core.NewInvalidInputError("negative count")
			}
		}
	}

	rowTotals := table.RowTotals()
	colTotals := table.ColTotals()
	total := table.Total()

	df := (rows - 1) * (cols - 1)
	correct := s.yates && df == 1

	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := float64(rowTotals[i]) * float64(colTotals[j]) / float64(total)
			if expected == 0 || math.IsNaN(expected) {
				return stats.TestResult{}, core.NewDegenerateTableError(
					fmt.Sprintf("zero expected count at (%s, %s)", label(table.Rows, i), label(table.Cols, j)))
			}
			observed := float64(table.Counts[i][j])
			if correct {
				// move each observed count up to 0.5 towards its expectation
				diff := expected - observed
				observed += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			chiSq += (observed - expected) * (observed - expected) / expected
		}
	}

	return stats.TestResult{
		Kind:         stats.TestChiSquared,
		Statistic:    chiSq,
		PValue:       s.dists.ChiSquarePValue(chiSq, df),
		EffectSize:   s.dists.CramersV(chiSq, total, rows, cols),
		DF1:          df,
		N:            total,
		HasStatistic: true,
	}, nil
}

// ChiSquaredTest runs the uncorrected Pearson test on a subgroup
func ChiSquaredTest(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) (stats.TestResult, error) {
	return NewChiSquareSense(false).Test(subgroup, categoryField, outcomeField)
}

// ChiSquaredTable runs the uncorrected Pearson test on a table
func ChiSquaredTable(table stats.ContingencyTable) (stats.TestResult, error) {
	return NewChiSquareSense(false).TestTable(table)
}

// BuildContingencyTable cross-tabulates the observed category values against
// the observed outcome values. Records blank in either field are excluded.
// Labels are sorted so the table is deterministic.
func BuildContingencyTable(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) stats.ContingencyTable {
	type cell struct{ row, col string }
	counts := make(map[cell]int)
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)

	for _, r := range subgroup {
		rv, ok := r.Value(categoryField)
		if !ok {
			continue
		}
		cv, ok := r.Value(outcomeField)
		if !ok {
			continue
		}
		rowSet[rv] = true
		colSet[cv] = true
		counts[cell{rv, cv}]++
	}

	rowLabels := sortedKeys(rowSet)
	colLabels := sortedKeys(colSet)

	table := stats.ContingencyTable{
		Rows:   rowLabels,
		Cols:   colLabels,
		Counts: make([][]int, len(rowLabels)),
	}
	for i, rv := range rowLabels {
		table.Counts[i] = make([]int, len(colLabels))
		for j, cv := range colLabels {
			table.Counts[i][j] = counts[cell{rv, cv}]
		}
	}
	return table
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("#%d", i)
}
