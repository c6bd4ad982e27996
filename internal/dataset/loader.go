package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"sentencestats/adapters/excel"
	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/internal"
)

// LoadStats summarises what Load kept and dropped
type LoadStats struct {
	Rows           int
	Loaded         int
	BlankYear      int
	MissingMonths  int
	IgnoredColumns []string
}

// Load reads a CSV or XLSX sentencing table into records.
// Missing files, unreadable tables, absent required columns and malformed
// years fail with core.ErrDataLoad.
func Load(path string) ([]sentencing.Record, error) {
	records, _, err := LoadWithStats(path)
	return records, err
}

// LoadWithStats is Load plus row accounting
func LoadWithStats(path string) ([]sentencing.Record, LoadStats, error) {
	log := internal.DefaultLogger.WithComponent("Loader")

	data, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, LoadStats{}, core.NewDataLoadError(path, err.Error())
	}

	records, stats, err := Decode(data)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}

	if stats.BlankYear > 0 {
		log.Warn("%d rows without %s skipped", stats.BlankYear, sentencing.FieldSentenceYear)
	}
	if stats.MissingMonths > 0 {
		log.Debug("%d rows without numeric %s", stats.MissingMonths, sentencing.FieldSentenceImposedMonths)
	}
	log.Info("Loaded %d of %d rows from %s", stats.Loaded, stats.Rows, path)

	return records, stats, nil
}

// Decode converts raw table rows into records
func Decode(data *excel.TableData) ([]sentencing.Record, LoadStats, error) {
	stats := LoadStats{Rows: len(data.Rows)}

	var missing []string
	for _, f := range sentencing.RequiredFields {
		if !data.HasColumn(f.String()) {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: missing required columns %s", core.ErrDataLoad, strings.Join(missing, ", "))
	}
	stats.IgnoredColumns = ignoredColumns(data.Headers)

	records := make([]sentencing.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		yearRaw := row[sentencing.FieldSentenceYear.String()]
		if yearRaw == "" {
			stats.BlankYear++
			continue
		}
		year, err := parseYear(yearRaw)
		if err != nil {
			// header is line 1
			return nil, stats, fmt.Errorf("%w: line %d: %v", core.ErrDataLoad, i+2, err)
		}

		rec := sentencing.Record{
			SentenceYear:         year,
			SentenceType:         row[sentencing.FieldSentenceType.String()],
			MonthsRaw:            row[sentencing.FieldSentenceImposedMonths.String()],
			Race:                 row[sentencing.FieldRace.String()],
			Gender:               row[sentencing.FieldGender.String()],
			AgeGroup:             row[sentencing.FieldAgeGroup.String()],
			Offense:              row[sentencing.FieldOffense.String()],
			OffenseType:          row[sentencing.FieldOffenseType.String()],
			HomicideType:         row[sentencing.FieldHomicideType.String()],
			OffenseSeverityGroup: row[sentencing.FieldOffenseSeverityGroup.String()],
		}
		if m, ok := parseMonths(rec.MonthsRaw); ok {
			rec.SentenceImposedMonths = m
			rec.HasMonths = true
		} else {
			stats.MissingMonths++
		}

		records = append(records, rec)
	}
	stats.Loaded = len(records)

	return records, stats, nil
}

// parseYear accepts integer years and integral floats ("2015.0")
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s %q is not an integer year", sentencing.FieldSentenceYear, s)
	}
	return int(f), nil
}

func parseMonths(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	m, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return m, true
}

func ignoredColumns(headers []string) []string {
	known := make(map[string]bool)
	for _, f := range sentencing.RequiredFields {
		known[f.String()] = true
	}
	for _, f := range sentencing.OptionalFields {
		known[f.String()] = true
	}
	var ignored []string
	for _, h := range headers {
		if !known[h] {
			ignored = append(ignored, h)
		}
	}
	sort.Strings(ignored)
	return ignored
}
