package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"sentencestats/adapters/excel"
	"sentencestats/adapters/stats/engine"
	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal"
	"sentencestats/internal/config"
	"sentencestats/internal/dataset"
	"sentencestats/internal/errors"
	"sentencestats/internal/metrics"
	"sentencestats/internal/render"
	"sentencestats/internal/report"
)

// MeanFields are the groupings printed with their mean sentence length
var MeanFields = []sentencing.Field{sentencing.FieldGender, sentencing.FieldRace}

// Runner wires the pipelines to configuration and owns all file I/O
type Runner struct {
	cfg      *config.Config
	logger   *internal.Logger
	out      io.Writer
	chi      *ChiTrendService
	combined *CombinedPValueService
}

// Dataset is the loaded input of a run
type Dataset struct {
	Path    string
	Digest  core.Hash
	Records []sentencing.Record
	Stats   dataset.LoadStats
}

// RunSummary is everything a full batch run produced
type RunSummary struct {
	RunID        core.RunID
	Dataset      *Dataset
	ChiTrend     *ChiTrendResult
	Combined     *CombinedResult
	Means        []report.MeansTable
	WorkbookPath string
	ReportPath   string
	HTMLPath     string
	MetricsPath  string
	Duration     time.Duration
}

// NewRunner creates a runner. Console output (group means) goes to out.
func NewRunner(cfg *config.Config, logger *internal.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	eng := engine.NewStatsEngine(engine.Options{
		Workers: cfg.Analysis.Workers,
		Yates:   cfg.Analysis.YatesCorrection,
		Logger:  logger,
	})
	renderer := render.NewRenderer(logger)
	return &Runner{
		cfg:      cfg,
		logger:   logger.WithComponent("Runner"),
		out:      out,
		chi:      NewChiTrendService(eng, renderer, logger),
		combined: NewCombinedPValueService(eng, renderer, logger),
	}
}

// Load reads and fingerprints the configured input file
func (r *Runner) Load() (*Dataset, error) {
	path := r.cfg.Data.File
	records, loadStats, err := dataset.LoadWithStats(path)
	if err != nil {
		return nil, errors.DataLoad(err)
	}
	digest, err := core.HashFile(path)
	if err != nil {
		return nil, errors.DataLoad(err)
	}

	r.logger.Info("loaded %d records from %s (sha256 %s)", len(records), path, digest.Short())
	return &Dataset{Path: path, Digest: digest, Records: records, Stats: loadStats}, nil
}

// ChiTrend runs the demographic x sentence type trend and writes its chart
func (r *Runner) ChiTrend(ctx context.Context, ds *Dataset) (*ChiTrendResult, error) {
	result, err := r.chi.Run(ctx, ChiTrendRequest{
		Records:   ds.Records,
		Years:     r.cfg.Years(),
		Alpha:     r.cfg.Analysis.SignificanceLevel,
		DPI:       r.cfg.Output.DPI,
		ChartPath: r.cfg.OutputPath(r.cfg.Output.ChiChartFile),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "chi-squared trend %d..%d", r.cfg.Analysis.MinYear, r.cfg.Analysis.MaxYear)
	}
	return result, nil
}

// Combined runs the combined p-value pipeline and writes its chart
func (r *Runner) Combined(ctx context.Context, ds *Dataset) (*CombinedResult, error) {
	result, err := r.combined.Run(ctx, CombinedRequest{
		Records:   ds.Records,
		Alpha:     r.cfg.Analysis.SignificanceLevel,
		DPI:       r.cfg.Output.DPI,
		ChartPath: r.cfg.OutputPath(r.cfg.Output.CombinedChartFile),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "combined p-values over %d records", len(ds.Records))
	}
	return result, nil
}

// Means computes mean sentence length by gender and by race and prints them
func (r *Runner) Means(ds *Dataset) ([]report.MeansTable, error) {
	var tables []report.MeansTable
	for _, field := range MeanFields {
		means, err := report.GroupMeans(ds.Records, field, sentencing.FieldSentenceImposedMonths)
		if err != nil {
			return nil, errors.Analysis("group means", err)
		}
		if err := report.PrintGroupMeans(r.out, field, sentencing.FieldSentenceImposedMonths, means); err != nil {
			return nil, errors.Output("console", err)
		}
		tables = append(tables, report.MeansTable{Field: field, Numeric: sentencing.FieldSentenceImposedMonths, Means: means})
	}
	return tables, nil
}

// Run executes the full batch: load, both pipelines, console means, and the
// optional workbook, report and metrics file
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{RunID: core.NewRunID()}
	runMetrics := metrics.NewRunMetrics()
	r.logger.Info("run %s started", summary.RunID)

	ds, err := r.Load()
	if err != nil {
		return nil, err
	}
	summary.Dataset = ds
	runMetrics.RecordLoad(len(ds.Records), ds.Stats.BlankYear)

	if summary.ChiTrend, err = r.ChiTrend(ctx, ds); err != nil {
		return nil, err
	}
	runMetrics.RecordResults("trend", stats.TestChiSquared, summary.ChiTrend.Results)
	if summary.Combined, err = r.Combined(ctx, ds); err != nil {
		return nil, err
	}
	for _, kind := range CombinedTests {
		runMetrics.RecordResults("combined", kind, summary.Combined.Results[kind])
	}
	if summary.Means, err = r.Means(ds); err != nil {
		return nil, err
	}

	generatedAt := time.Now().UTC()
	if name := r.cfg.Output.ResultsWorkbook; name != "" {
		path := r.cfg.OutputPath(name)
		meta := excel.WorkbookMeta{
			RunID:       summary.RunID.String(),
			InputFile:   ds.Path,
			InputDigest: ds.Digest.String(),
			GeneratedAt: generatedAt.Format(time.RFC3339),
		}
		if err := excel.WriteResultsWorkbook(path, meta, resultSheets(summary)); err != nil {
			return nil, errors.Output(path, err)
		}
		summary.WorkbookPath = path
		r.logger.Info("wrote %s", path)
	}

	if name := r.cfg.Output.ReportFile; name != "" {
		path := r.cfg.OutputPath(name)
		md := report.Markdown(report.Summary{
			RunID:       summary.RunID,
			InputFile:   ds.Path,
			InputDigest: ds.Digest,
			GeneratedAt: generatedAt,
			Records:     len(ds.Records),
			Alpha:       r.cfg.Analysis.SignificanceLevel,
			ChiTrend:    summary.ChiTrend.Results,
			Combined:    summary.Combined.Results,
			Means:       summary.Means,
			Charts:      []string{summary.ChiTrend.ChartPath, summary.Combined.ChartPath},
		})
		htmlPath, err := report.WriteReport(path, md)
		if err != nil {
			return nil, errors.Output(path, err)
		}
		summary.ReportPath, summary.HTMLPath = path, htmlPath
		r.logger.Info("wrote %s and %s", path, htmlPath)
	}

	summary.Duration = time.Since(start)
	if name := r.cfg.Output.MetricsFile; name != "" {
		path := r.cfg.OutputPath(name)
		runMetrics.RecordRun(summary.Duration, time.Now())
		if err := runMetrics.WriteTextfile(path); err != nil {
			return nil, errors.Output(path, err)
		}
		summary.MetricsPath = path
	}
	r.logger.Info("run %s finished in %s", summary.RunID, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

func resultSheets(s *RunSummary) []excel.ResultSheet {
	sheets := []excel.ResultSheet{{Name: "trend_chi_squared", Results: s.ChiTrend.Results}}
	for _, kind := range CombinedTests {
		sheets = append(sheets, excel.ResultSheet{
			Name:    fmt.Sprintf("combined_%s", kind),
			Results: s.Combined.Results[kind],
		})
	}
	return sheets
}

// Undefined counts undefined points across every result of the run
func (s *RunSummary) Undefined() int {
	n := 0
	if s.ChiTrend != nil {
		n += s.ChiTrend.Undefined
	}
	if s.Combined != nil {
		n += s.Combined.Undefined
	}
	return n
}
