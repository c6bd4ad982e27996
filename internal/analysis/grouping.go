package analysis

import (
	"sort"

	"sentencestats/domain/sentencing"
)

// GroupBy partitions records by the value of field. Every record lands in
// exactly one group; blank values are grouped under "".
func GroupBy(records []sentencing.Record, field sentencing.Field) map[string][]sentencing.Record {
	groups := make(map[string][]sentencing.Record)
	for _, r := range records {
		v, _ := r.Value(field)
		groups[v] = append(groups[v], r)
	}
	return groups
}

// GroupByYear partitions records by sentence year
func GroupByYear(records []sentencing.Record) map[int][]sentencing.Record {
	groups := make(map[int][]sentencing.Record)
	for _, r := range records {
		groups[r.SentenceYear] = append(groups[r.SentenceYear], r)
	}
	return groups
}

// GroupByYearThen partitions by year, then by field within each year
func GroupByYearThen(records []sentencing.Record, field sentencing.Field) map[int]map[string][]sentencing.Record {
	out := make(map[int]map[string][]sentencing.Record)
	for year, recs := range GroupByYear(records) {
		out[year] = GroupBy(recs, field)
	}
	return out
}

// SubgroupFor returns the records of one year. A year without records yields
// an empty subgroup rather than being skipped, so tests report it as
// degenerate and the year index stays aligned.
func SubgroupFor(byYear map[int][]sentencing.Record, year int) sentencing.Subgroup {
	recs, ok := byYear[year]
	if !ok {
		return sentencing.Subgroup{}
	}
	return sentencing.Subgroup(recs)
}

// GroupKeys returns the keys of a grouping in ascending order
func GroupKeys(groups map[string][]sentencing.Record) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
