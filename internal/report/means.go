package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"

	"sentencestats/domain/sentencing"
	"sentencestats/internal/analysis"
)

// GroupMean summarizes a numeric field within one category value
type GroupMean struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// GroupMeans averages numeric over every observed value of field, rounded to
// two decimals. Records with a blank group or no numeric value are left out;
// groups with no numeric values are omitted. Result is sorted by group.
func GroupMeans(records []sentencing.Record, field, numeric sentencing.Field) ([]GroupMean, error) {
	groups := analysis.GroupBy(records, field)

	out := make([]GroupMean, 0, len(groups))
	for _, key := range analysis.GroupKeys(groups) {
		if key == "" {
			continue
		}
		var data stats.Float64Data
		for _, r := range groups[key] {
			if v, ok := r.Numeric(numeric); ok {
				data = append(data, v)
			}
		}
		if len(data) == 0 {
			continue
		}

		gm, err := summarize(key, data)
		if err != nil {
			return nil, fmt.Errorf("%s=%s: %w", field, key, err)
		}
		out = append(out, gm)
	}

	return out, nil
}

func summarize(group string, data stats.Float64Data) (GroupMean, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return GroupMean{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return GroupMean{}, err
	}
	sd := 0.0
	if len(data) > 1 {
		if sd, err = stats.StandardDeviationSample(data); err != nil {
			return GroupMean{}, err
		}
	}

	gm := GroupMean{Group: group, Count: len(data)}
	if gm.Mean, err = stats.Round(mean, 2); err != nil {
		return GroupMean{}, err
	}
	if gm.Median, err = stats.Round(median, 2); err != nil {
		return GroupMean{}, err
	}
	if gm.StdDev, err = stats.Round(sd, 2); err != nil {
		return GroupMean{}, err
	}
	return gm, nil
}

// PrintGroupMeans writes the means as a two-column listing headed by the
// grouping field and trailed by the averaged field name:
//
//	GENDER
//	F    25.43
//	M    37.10
//	Name: SENTENCE_IMPOSED_MONTHS, dtype: float64
func PrintGroupMeans(w io.Writer, field, numeric sentencing.Field, means []GroupMean) error {
	width := len(field)
	for _, m := range means {
		width = max(width, len(m.Group))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", field)
	for _, m := range means {
		fmt.Fprintf(&b, "%-*s    %.2f\n", width, m.Group, m.Mean)
	}
	fmt.Fprintf(&b, "Name: %s, dtype: float64\n", numeric)

	_, err := io.WriteString(w, b.String())
	return err
}
