package app

import (
	"context"
	"time"

	"sentencestats/adapters/stats/engine"
	"sentencestats/adapters/stats/temporal"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal"
	"sentencestats/internal/analysis"
	"sentencestats/internal/dataset"
	"sentencestats/internal/errors"
	"sentencestats/internal/render"
)

// CombinedTests is the plotting order of the combined p-value chart
var CombinedTests = []stats.TestKind{stats.TestANOVA, stats.TestChiSquared, stats.TestFisher}

// CombinedPValueService runs ANOVA, chi-squared and their Fisher combination
// on sentence length for every observed year and charts all p-values together
type CombinedPValueService struct {
	engine   *engine.StatsEngine
	renderer *render.Renderer
	logger   *internal.Logger
}

// CombinedRequest defines one combined p-value run
type CombinedRequest struct {
	Records    []sentencing.Record
	Categories []sentencing.Field // defaults to GENDER, RACE
	Numeric    sentencing.Field   // defaults to SENTENCE_IMPOSED_MONTHS
	Alpha      float64
	DPI        float64
	ChartPath  string
}

// CombinedResult contains results per test kind and the plotted series
type CombinedResult struct {
	Years     []int                                    `json:"years"`
	Numeric   sentencing.Field                         `json:"numeric"`
	Alpha     float64                                  `json:"alpha"`
	Results   map[stats.TestKind]stats.CategoryResults `json:"-"`
	Series    []stats.Series                           `json:"-"`
	ChartPath string                                   `json:"chart_path,omitempty"`
	Undefined int                                      `json:"undefined"`
	RuntimeMs int64                                    `json:"runtime_ms"`
}

// DefaultCombinedCategories are the fields compared in the combined chart
var DefaultCombinedCategories = []sentencing.Field{sentencing.FieldGender, sentencing.FieldRace}

// NewCombinedPValueService creates a combined p-value service
func NewCombinedPValueService(eng *engine.StatsEngine, renderer *render.Renderer, logger *internal.Logger) *CombinedPValueService {
	return &CombinedPValueService{
		engine:   eng,
		renderer: renderer,
		logger:   logger.WithComponent("CombinedPValues"),
	}
}

// Run analyses every year present in the records, without a year window
func (s *CombinedPValueService) Run(ctx context.Context, req CombinedRequest) (*CombinedResult, error) {
	startTime := time.Now()

	categories := req.Categories
	if len(categories) == 0 {
		categories = DefaultCombinedCategories
	}
	numeric := req.Numeric
	if numeric == "" {
		numeric = sentencing.FieldSentenceImposedMonths
	}

	years := dataset.Years(req.Records)
	if len(years) == 0 {
		return nil, errors.InvalidInput("no records with a sentence year")
	}

	results, err := s.engine.RunCombined(ctx, analysis.GroupByYear(req.Records), years, categories, numeric)
	if err != nil {
		return nil, errors.Analysis("combined tests", err)
	}

	result := &CombinedResult{Years: years, Numeric: numeric, Alpha: req.Alpha, Results: results}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
		for _, kind := range CombinedTests {
			series, err := temporal.Assemble(results[kind][string(c)], years, temporal.SeriesSpec{
				Category: string(c), Test: kind, Stat: stats.StatPValue,
			})
			if err != nil {
				return nil, errors.Analysis("assemble combined series", err)
			}
			result.Series = append(result.Series, series)
		}
		for _, kind := range CombinedTests {
			result.Undefined += undefinedIn(results[kind][string(c)])
		}
	}
	if err := temporal.CheckAligned(result.Series...); err != nil {
		return nil, errors.Analysis("align combined series", err)
	}

	if req.ChartPath != "" {
		fig := render.CombinedFigure(result.Series, names, years, req.Alpha, req.DPI)
		if err := s.renderer.WriteFile(req.ChartPath, fig); err != nil {
			return nil, errors.Render(req.ChartPath, err)
		}
		result.ChartPath = req.ChartPath
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	if result.Undefined > 0 {
		s.logger.Warn("%d (test, category, year) points undefined and marked n/a", result.Undefined)
	}
	return result, nil
}

func undefinedIn(yr stats.YearResults) int {
	n := 0
	for _, o := range yr {
		if !o.Defined() {
			n++
		}
	}
	return n
}
