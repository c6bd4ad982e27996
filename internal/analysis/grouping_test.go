package analysis

import (
	"sort"
	"testing"

	"sentencestats/domain/sentencing"
	"sentencestats/internal/dataset"
	"sentencestats/internal/testkit"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBy(t *testing.T) {
	records := []sentencing.Record{
		{SentenceYear: 2010, Gender: "M"},
		{SentenceYear: 2010, Gender: "F"},
		{SentenceYear: 2011, Gender: "M"},
		{SentenceYear: 2011, Gender: ""},
	}

	groups := GroupBy(records, sentencing.FieldGender)
	assert.Equal(t, []string{"", "F", "M"}, GroupKeys(groups))
	assert.Len(t, groups["M"], 2)
	assert.Len(t, groups[""], 1, "blank values are kept, not dropped")
}

func TestGroupByYearThen(t *testing.T) {
	records := []sentencing.Record{
		{SentenceYear: 2010, Race: "Black"},
		{SentenceYear: 2010, Race: "White"},
		{SentenceYear: 2010, Race: "Black"},
		{SentenceYear: 2012, Race: "Asian"},
	}

	got := GroupByYearThen(records, sentencing.FieldRace)
	want := map[int]map[string][]sentencing.Record{
		2010: {
			"Black": {records[0], records[2]},
			"White": {records[1]},
		},
		2012: {"Asian": {records[3]}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupByYearThen mismatch (-want +got):\n%s", diff)
	}
}

func TestSubgroupForMissingYear(t *testing.T) {
	byYear := GroupByYear([]sentencing.Record{{SentenceYear: 2010}})

	assert.Len(t, SubgroupFor(byYear, 2010), 1)
	empty := SubgroupFor(byYear, 2011)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// Filtering to [2010, 2020] then grouping by year reproduces the original
// partition restricted to the range, with nothing lost and nothing extra.
func TestFilterThenGroupPreservesPartition(t *testing.T) {
	config := testkit.DefaultSentencingConfig()
	config.RecordsPerYear = 20
	records, err := testkit.NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)

	original := GroupByYear(records)
	filtered := GroupByYear(dataset.FilterByYearRange(records, 2010, 2020))

	var years []int
	total := 0
	for year, recs := range filtered {
		years = append(years, year)
		total += len(recs)
		if diff := cmp.Diff(original[year], recs); diff != "" {
			t.Errorf("year %d partition changed (-orig +filtered):\n%s", year, diff)
		}
	}
	sort.Ints(years)

	assert.Equal(t, []int{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019, 2020}, years)

	expected := 0
	for year, recs := range original {
		if year >= 2010 && year <= 2020 {
			expected += len(recs)
		}
	}
	assert.Equal(t, expected, total)
}

func TestGroupingCoversEveryRecordOnce(t *testing.T) {
	config := testkit.DefaultSentencingConfig()
	config.RecordsPerYear = 15
	records, err := testkit.NewSentencingDataGenerator(config).GenerateRecords()
	require.NoError(t, err)

	for _, field := range sentencing.DemographicFields {
		n := 0
		for _, byCat := range GroupByYearThen(records, field) {
			for _, recs := range byCat {
				n += len(recs)
			}
		}
		assert.Equal(t, len(records), n, "field %s", field)
	}
}
