package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"sentencestats/adapters/stats/senses"
	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal"
	"sentencestats/internal/analysis"
)

// Options configures a StatsEngine
type Options struct {
	Workers int  // concurrent (category, year) tests; <1 means NumCPU
	Yates   bool // continuity correction on 2x2 chi-squared tables
	Logger  *internal.Logger
}

// StatsEngine runs association tests for every (category, year) pair.
// Each pair is independent, so pairs are fanned out over a bounded pool.
type StatsEngine struct {
	chi     *senses.ChiSquareSense
	anova   *senses.AnovaSense
	workers int
	logger  *internal.Logger
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(opts Options) *StatsEngine {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &StatsEngine{
		chi:     senses.NewChiSquareSense(opts.Yates),
		anova:   senses.NewAnovaSense(),
		workers: workers,
		logger:  logger.WithComponent("StatsEngine"),
	}
}

// task is one (category, year) unit of work
type task struct {
	category sentencing.Field
	year     int
}

func tasks(categories []sentencing.Field, years []int) []task {
	out := make([]task, 0, len(categories)*len(years))
	for _, c := range categories {
		for _, y := range years {
			out = append(out, task{category: c, year: y})
		}
	}
	return out
}

// RunChiSquared tests each category against outcome within every year's
// subgroup. Years absent from byYear yield an undefined point, never a
// fabricated value. The only error returned is context cancellation.
func (e *StatsEngine) RunChiSquared(ctx context.Context, byYear map[int][]sentencing.Record, years []int, categories []sentencing.Field, outcome sentencing.Field) (stats.CategoryResults, error) {
	results := make(stats.CategoryResults, len(categories))
	for _, c := range categories {
		results[string(c)] = make(stats.YearResults, len(years))
	}

	var mu sync.Mutex
	err := e.fanOut(ctx, tasks(categories, years), func(t task) {
		subgroup := analysis.SubgroupFor(byYear, t.year)
		r, err := e.chi.Test(subgroup, t.category, outcome)
		o := stats.Outcome{Result: r, Err: core.NewPointError(string(stats.TestChiSquared), string(t.category), t.year, err)}
		if err != nil {
			e.logger.Debug("%s %d undefined: %v", t.category, t.year, err)
		}

		mu.Lock()
		results[string(t.category)][t.year] = o
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("chi-squared: %d categories x %d years, %d undefined", len(categories), len(years), results.Undefined())
	return results, nil
}

// RunCombined runs, per category and year, one-way ANOVA of the numeric
// outcome by category, a chi-squared test of category against the outcome
// treated as a category, and Fisher's combination of the two p-values. The Fisher point
// is undefined whenever either input is.
func (e *StatsEngine) RunCombined(ctx context.Context, byYear map[int][]sentencing.Record, years []int, categories []sentencing.Field, numericOutcome sentencing.Field) (map[stats.TestKind]stats.CategoryResults, error) {
	kinds := []stats.TestKind{stats.TestANOVA, stats.TestChiSquared, stats.TestFisher}
	results := make(map[stats.TestKind]stats.CategoryResults, len(kinds))
	for _, k := range kinds {
		results[k] = make(stats.CategoryResults, len(categories))
		for _, c := range categories {
			results[k][string(c)] = make(stats.YearResults, len(years))
		}
	}

	var mu sync.Mutex
	err := e.fanOut(ctx, tasks(categories, years), func(t task) {
		subgroup := analysis.SubgroupFor(byYear, t.year)
		cat := string(t.category)

		anova := e.outcome(stats.TestANOVA, t, func() (stats.TestResult, error) {
			return e.anova.Test(subgroup, t.category, numericOutcome)
		})
		chi := e.outcome(stats.TestChiSquared, t, func() (stats.TestResult, error) {
			return e.chi.Test(subgroup, t.category, numericOutcome)
		})
		fisher := e.outcome(stats.TestFisher, t, func() (stats.TestResult, error) {
			if !anova.Defined() {
				return stats.TestResult{}, fmt.Errorf("%w: ANOVA input undefined: %w", core.ErrInvalidInput, anova.Err)
			}
			if !chi.Defined() {
				return stats.TestResult{}, fmt.Errorf("%w: Chi-Square input undefined: %w", core.ErrInvalidInput, chi.Err)
			}
			return senses.CombineResult([]float64{anova.Result.PValue, chi.Result.PValue}, senses.MethodFisher)
		})

		mu.Lock()
		results[stats.TestANOVA][cat][t.year] = anova
		results[stats.TestChiSquared][cat][t.year] = chi
		results[stats.TestFisher][cat][t.year] = fisher
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	for _, k := range kinds {
		e.logger.Info("%s: %d categories x %d years, %d undefined", k.Label(), len(categories), len(years), results[k].Undefined())
	}
	return results, nil
}

func (e *StatsEngine) outcome(kind stats.TestKind, t task, run func() (stats.TestResult, error)) stats.Outcome {
	r, err := run()
	if err != nil {
		e.logger.Debug("%s %s %d undefined: %v", kind.Label(), t.category, t.year, err)
		return stats.Outcome{Err: core.NewPointError(string(kind), string(t.category), t.year, err)}
	}
	return stats.Outcome{Result: r}
}

// fanOut runs fn for every task with at most e.workers in flight
func (e *StatsEngine) fanOut(ctx context.Context, ts []task, fn func(task)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, t := range ts {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("analysis cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis cancelled: %w", err)
	}
	return nil
}
