package dataset

import (
	"sort"

	"sentencestats/domain/sentencing"
)

// FilterByYearRange keeps records with minYear <= SentenceYear <= maxYear,
// preserving order. No match yields an empty slice, not an error.
func FilterByYearRange(records []sentencing.Record, minYear, maxYear int) []sentencing.Record {
	out := make([]sentencing.Record, 0, len(records))
	for _, r := range records {
		if r.SentenceYear >= minYear && r.SentenceYear <= maxYear {
			out = append(out, r)
		}
	}
	return out
}

// Years returns the distinct observed sentence years in ascending order
func Years(records []sentencing.Record) []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range records {
		if !seen[r.SentenceYear] {
			seen[r.SentenceYear] = true
			years = append(years, r.SentenceYear)
		}
	}
	sort.Ints(years)
	return years
}
