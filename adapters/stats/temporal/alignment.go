package temporal

import (
	"fmt"
	"math"
	"sort"

	"sentencestats/domain/core"
	"sentencestats/domain/stats"
)

// ============================================================================
// YEARLY ALIGNMENT LAYER
// ============================================================================
// Turns per-year test outcomes into plot-ready series on a shared year axis.
// A series never drops a year: undefined outcomes stay on the grid as
// Defined=false points so every series in a panel lines up.
// ============================================================================

// SeriesSpec names the series being assembled
type SeriesSpec struct {
	Name     string
	Category string
	Test     stats.TestKind
	Stat     stats.StatKind
}

// Assemble extracts stat from perYear for each expected year. Years are
// deduplicated and sorted. A year with no outcome at all is an alignment
// failure; an outcome carrying an error becomes an undefined point.
func Assemble(perYear stats.YearResults, years []int, spec SeriesSpec) (stats.Series, error) {
	grid := normalizeYears(years)
	series := stats.Series{
		Name:     spec.Name,
		Category: spec.Category,
		Test:     spec.Test,
		Stat:     spec.Stat,
		Points:   make([]stats.SeriesPoint, 0, len(grid)),
	}
	if series.Name == "" {
		series.Name = defaultName(spec)
	}

	for _, year := range grid {
		o, ok := perYear[year]
		if !ok {
			return stats.Series{}, core.NewMissingYearError(series.Name, year)
		}

		point := stats.SeriesPoint{Year: year, Value: math.NaN()}
		if o.Defined() {
			if spec.Stat == stats.StatStatistic && !o.Result.HasStatistic {
				return stats.Series{}, core.NewInvalidInputError(fmt.Sprintf("%s has no %s for %d", series.Name, spec.Stat, year))
			}
			v, ok := o.Result.Value(spec.Stat)
			if ok {
				point.Value = v
				point.Defined = !math.IsNaN(v)
			}
		}
		series.Points = append(series.Points, point)
	}

	return series, nil
}

// AssembleObserved is Assemble over the years present in perYear
func AssembleObserved(perYear stats.YearResults, spec SeriesSpec) (stats.Series, error) {
	return Assemble(perYear, perYear.Years(), spec)
}

// AssembleAll builds one series per category of results, in category order
func AssembleAll(results stats.CategoryResults, years []int, test stats.TestKind, stat stats.StatKind) ([]stats.Series, error) {
	out := make([]stats.Series, 0, len(results))
	for _, category := range results.Categories() {
		s, err := Assemble(results[category], years, SeriesSpec{Category: category, Test: test, Stat: stat})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CheckAligned verifies all series share the same year sequence
func CheckAligned(series ...stats.Series) error {
	if len(series) < 2 {
		return nil
	}
	ref := series[0].Years()
	for _, s := range series[1:] {
		years := s.Years()
		for i := 0; i < len(ref) || i < len(years); i++ {
			switch {
			case i >= len(years):
				return core.NewMissingYearError(s.Name, ref[i])
			case i >= len(ref):
				return core.NewMissingYearError(series[0].Name, years[i])
			case ref[i] != years[i]:
				missing, name := ref[i], s.Name
				if years[i] < ref[i] {
					missing, name = years[i], series[0].Name
				}
				return core.NewMissingYearError(name, missing)
			}
		}
	}
	return nil
}

// normalizeYears returns the distinct years in ascending order
func normalizeYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

func defaultName(spec SeriesSpec) string {
	switch {
	case spec.Category != "" && spec.Test != "":
		return fmt.Sprintf("%s %s", spec.Category, spec.Test.Label())
	case spec.Category != "":
		return spec.Category
	default:
		return spec.Test.Label()
	}
}
