package excel

import (
	"fmt"

	"sentencestats/domain/stats"

	"github.com/xuri/excelize/v2"
)

// WorkbookMeta describes the run a results workbook belongs to
type WorkbookMeta struct {
	RunID       string
	InputFile   string
	InputDigest string
	GeneratedAt string
}

var resultHeaders = []string{"category", "year", "statistic", "p_value", "effect_size", "df1", "df2", "n", "status"}

// ResultSheet is one worksheet of test outcomes
type ResultSheet struct {
	Name    string
	Results stats.CategoryResults
}

// WriteResultsWorkbook writes a Run sheet with metadata followed by one sheet
// per ResultSheet, in order, with a row per (category, year) outcome.
func WriteResultsWorkbook(path string, meta WorkbookMeta, sheets []ResultSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Run"); err != nil {
		return err
	}
	metaRows := [][]interface{}{
		{"run_id", meta.RunID},
		{"input_file", meta.InputFile},
		{"input_sha256", meta.InputDigest},
		{"generated_at", meta.GeneratedAt},
	}
	for i, row := range metaRows {
		if err := setRow(f, "Run", i+1, row); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(resultHeaders))
	for i, h := range resultHeaders {
		header[i] = h
	}

	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
		if err := setRow(f, sheet.Name, 1, header); err != nil {
			return err
		}

		rowIdx := 2
		for _, category := range sheet.Results.Categories() {
			yr := sheet.Results[category]
			for _, year := range yr.Years() {
				if err := setRow(f, sheet.Name, rowIdx, resultRow(category, year, yr[year])); err != nil {
					return err
				}
				rowIdx++
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func resultRow(category string, year int, o stats.Outcome) []interface{} {
	if !o.Defined() {
		return []interface{}{category, year, "", "", "", "", "", "", "undefined: " + o.Err.Error()}
	}
	r := o.Result
	var statistic interface{} = ""
	if r.HasStatistic {
		statistic = r.Statistic
	}
	var effect interface{} = ""
	if r.EffectSize != 0 {
		effect = r.EffectSize
	}
	var df2 interface{} = ""
	if r.DF2 > 0 {
		df2 = r.DF2
	}
	return []interface{}{category, year, statistic, r.PValue, effect, r.DF1, df2, r.N, "ok"}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
