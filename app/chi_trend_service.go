package app

import (
	"context"
	"slices"
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

// ChiTrendService tests each demographic field against SENTENCE_TYPE for
// every year of a fixed window and charts statistic and p-value per field
type ChiTrendService struct {
	engine   *engine.StatsEngine
	renderer *render.Renderer
	logger   *internal.Logger
}

// ChiTrendRequest defines one chi-squared trend run
type ChiTrendRequest struct {
	Records    []sentencing.Record
	Years      []int              // the trend window, e.g. Config.Years()
	Categories []sentencing.Field // defaults to RACE, GENDER, AGE_GROUP
	Outcome    sentencing.Field   // defaults to SENTENCE_TYPE
	Alpha      float64
	DPI        float64
	ChartPath  string // no chart is written when empty
}

// ChiTrendResult contains the per-year results and the series plotted
type ChiTrendResult struct {
	Years     []int                 `json:"years"`
	Outcome   sentencing.Field      `json:"outcome"`
	Alpha     float64               `json:"alpha"`
	Records   int                   `json:"records"`
	Results   stats.CategoryResults `json:"-"`
	Panels    []render.TrendPanel   `json:"-"`
	ChartPath string                `json:"chart_path,omitempty"`
	Undefined int                   `json:"undefined"`
	RuntimeMs int64                 `json:"runtime_ms"`
}

// NewChiTrendService creates a chi-squared trend service
func NewChiTrendService(eng *engine.StatsEngine, renderer *render.Renderer, logger *internal.Logger) *ChiTrendService {
	return &ChiTrendService{
		engine:   eng,
		renderer: renderer,
		logger:   logger.WithComponent("ChiTrend"),
	}
}

// Run filters the records to the window spanned by Years, tests every
// (category, year) pair of the window and renders one panel per category
func (s *ChiTrendService) Run(ctx context.Context, req ChiTrendRequest) (*ChiTrendResult, error) {
	startTime := time.Now()

	if len(req.Years) == 0 {
		return nil, errors.InvalidInput("chi-squared trend needs a non-empty year window")
	}
	years := slices.Compact(slices.Sorted(slices.Values(req.Years)))
	first, last := years[0], years[len(years)-1]
	categories := req.Categories
	if len(categories) == 0 {
		categories = sentencing.DemographicFields
	}
	outcome := req.Outcome
	if outcome == "" {
		outcome = sentencing.FieldSentenceType
	}

	filtered := dataset.FilterByYearRange(req.Records, first, last)
	s.logger.Info("%d of %d records within %d..%d", len(filtered), len(req.Records), first, last)

	results, err := s.engine.RunChiSquared(ctx, analysis.GroupByYear(filtered), years, categories, outcome)
	if err != nil {
		return nil, errors.Analysis("chi-squared trend", err)
	}

	panels := make([]render.TrendPanel, 0, len(categories))
	var all []stats.Series
	for _, c := range categories {
		perYear := results[string(c)]
		statSeries, err := temporal.Assemble(perYear, years, temporal.SeriesSpec{
			Name: string(c) + " chi-squared", Category: string(c), Test: stats.TestChiSquared, Stat: stats.StatStatistic,
		})
		if err != nil {
			return nil, errors.Analysis("assemble chi-squared series", err)
		}
		pSeries, err := temporal.Assemble(perYear, years, temporal.SeriesSpec{
			Name: string(c) + " p-value", Category: string(c), Test: stats.TestChiSquared, Stat: stats.StatPValue,
		})
		if err != nil {
			return nil, errors.Analysis("assemble p-value series", err)
		}
		panels = append(panels, render.TrendPanel{Category: string(c), Statistic: statSeries, PValue: pSeries})
		all = append(all, statSeries, pSeries)
	}
	if err := temporal.CheckAligned(all...); err != nil {
		return nil, errors.Analysis("align chi-squared series", err)
	}

	result := &ChiTrendResult{
		Years:     years,
		Outcome:   outcome,
		Alpha:     req.Alpha,
		Records:   len(filtered),
		Results:   results,
		Panels:    panels,
		Undefined: results.Undefined(),
	}

	if req.ChartPath != "" {
		fig := render.ChiTrendFigure(panels, years, req.Alpha, req.DPI)
		if err := s.renderer.WriteFile(req.ChartPath, fig); err != nil {
			return nil, errors.Render(req.ChartPath, err)
		}
		result.ChartPath = req.ChartPath
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	if result.Undefined > 0 {
		s.logger.Warn("%d (category, year) points undefined and marked n/a", result.Undefined)
	}
	return result, nil
}
