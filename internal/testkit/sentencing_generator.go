package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"sentencestats/domain/sentencing"

	"github.com/xuri/excelize/v2"
)

// SentencingGeneratorConfig configures the synthetic felony sentencing generator
type SentencingGeneratorConfig struct {
	StartYear      int     `json:"start_year"`
	EndYear        int     `json:"end_year"`
	RecordsPerYear int     `json:"records_per_year"`
	Seed           int64   `json:"seed"`
	GenderEffect   float64 `json:"gender_effect"`   // extra months imposed on "M"
	PrisonRateM    float64 `json:"prison_rate_m"`   // P(Prison | M)
	PrisonRateF    float64 `json:"prison_rate_f"`   // P(Prison | F)
	MonthsBucketed bool    `json:"months_bucketed"` // round months to 12-month buckets
}

// DefaultSentencingConfig returns defaults spanning one year either side of
// the 2010..2020 analysis window
func DefaultSentencingConfig() SentencingGeneratorConfig {
	return SentencingGeneratorConfig{
		StartYear:      2009,
		EndYear:        2021,
		RecordsPerYear: 200,
		Seed:           42,
		GenderEffect:   12,
		PrisonRateM:    0.7,
		PrisonRateF:    0.45,
		MonthsBucketed: true,
	}
}

var (
	races          = []string{"Black", "White", "Hispanic", "Asian"}
	raceWeights    = []float64{0.55, 0.25, 0.15, 0.05}
	ageGroups      = []string{"Under 18", "18-24", "25-34", "35-44", "45+"}
	ageWeights     = []float64{0.05, 0.3, 0.35, 0.2, 0.1}
	offenses       = []string{"Robbery", "Burglary", "Assault", "Drug Distribution", "Homicide"}
	offenseTypes   = []string{"Violent", "Property", "Violent", "Drug", "Violent"}
	severityGroups = []string{"Group 1", "Group 2", "Group 3", "Group 4", "Group 5"}
)

// Headers is the column order written by WriteCSV and WriteXLSX
var Headers = []string{
	"SENTENCE_YEAR", "SENTENCE_TYPE", "SENTENCE_IMPOSED_MONTHS",
	"RACE", "GENDER", "AGE_GROUP",
	"OFFENSE", "OFFENSE_TYPE", "HOMICIDE_TYPE", "OFFENSE_SEVERITY_GROUP",
}

// SentencingDataGenerator generates synthetic sentencing records
type SentencingDataGenerator struct {
	config SentencingGeneratorConfig
	rng    *rand.Rand
}

// NewSentencingDataGenerator creates a new generator
func NewSentencingDataGenerator(config SentencingGeneratorConfig) *SentencingDataGenerator {
	return &SentencingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRecords produces RecordsPerYear records for every year in range
func (g *SentencingDataGenerator) GenerateRecords() ([]sentencing.Record, error) {
	if g.config.RecordsPerYear <= 0 {
		return nil, fmt.Errorf("records per year must be > 0")
	}
	if g.config.StartYear > g.config.EndYear {
		return nil, fmt.Errorf("start year %d after end year %d", g.config.StartYear, g.config.EndYear)
	}

	records := make([]sentencing.Record, 0, (g.config.EndYear-g.config.StartYear+1)*g.config.RecordsPerYear)
	for year := g.config.StartYear; year <= g.config.EndYear; year++ {
		for i := 0; i < g.config.RecordsPerYear; i++ {
			records = append(records, g.generateRecord(year))
		}
	}
	return records, nil
}

func (g *SentencingDataGenerator) generateRecord(year int) sentencing.Record {
	gender := "F"
	prisonRate := g.config.PrisonRateF
	if g.rng.Float64() < 0.8 {
		gender = "M"
		prisonRate = g.config.PrisonRateM
	}

	sentenceType := "Probation"
	if g.rng.Float64() < prisonRate {
		sentenceType = "Prison"
	}

	offenseIdx := g.rng.Intn(len(offenses))
	homicideType := ""
	if offenses[offenseIdx] == "Homicide" {
		homicideType = "Second Degree"
	}

	months := 24 + g.rng.NormFloat64()*8
	if gender == "M" {
		months += g.config.GenderEffect
	}
	months = math.Max(1, months)
	if g.config.MonthsBucketed {
		months = math.Max(12, math.Round(months/12)*12)
	} else {
		months = math.Round(months*10) / 10
	}

	return sentencing.Record{
		SentenceYear:          year,
		SentenceType:          sentenceType,
		SentenceImposedMonths: months,
		MonthsRaw:             strconv.FormatFloat(months, 'f', -1, 64),
		HasMonths:             true,
		Race:                  g.pick(races, raceWeights),
		Gender:                gender,
		AgeGroup:              g.pick(ageGroups, ageWeights),
		Offense:               offenses[offenseIdx],
		OffenseType:           offenseTypes[offenseIdx],
		HomicideType:          homicideType,
		OffenseSeverityGroup:  severityGroups[g.rng.Intn(len(severityGroups))],
	}
}

func (g *SentencingDataGenerator) pick(values []string, weights []float64) string {
	x := g.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if x < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// Rows formats records in Headers order
func Rows(records []sentencing.Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.Itoa(r.SentenceYear), r.SentenceType, r.MonthsRaw,
			r.Race, r.Gender, r.AgeGroup,
			r.Offense, r.OffenseType, r.HomicideType, r.OffenseSeverityGroup,
		}
	}
	return rows
}

// WriteCSV writes records as a CSV table
func WriteCSV(path string, records []sentencing.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers); err != nil {
		return err
	}
	if err := w.WriteAll(Rows(records)); err != nil {
		return err
	}
	return f.Close()
}

// WriteXLSX writes records to Sheet1 of a workbook
func WriteXLSX(path string, records []sentencing.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range Rows(records) {
		rowIdx := r + 2
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
