package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sentencestats/adapters/stats/senses"
	"sentencestats/app"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal"
	"sentencestats/internal/config"
	"sentencestats/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the flags shared by every analysis command; unset flags keep
// the environment/config value
type options struct {
	dataFile  string
	outputDir string
	minYear   int
	maxYear   int
	dpi       float64
	alpha     float64
	workers   int
	yates     bool
	workbook  string
	report    string
	metrics   string
	jsonOut   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "sentencestats",
		Short: "Felony sentencing association statistics by year",
		Long: `Tests whether demographic attributes are associated with sentencing
outcomes, year by year, and charts the resulting statistics and p-values.

Configuration is read from the environment (and a .env file), then
overridden by flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dataFile, "data", "d", "", "Input CSV/XLSX file (SENTENCE_DATA_FILE)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for charts and reports (OUTPUT_DIR)")
	flags.IntVar(&opts.minYear, "min-year", 0, "First year of the chi-squared trend window (MIN_YEAR)")
	flags.IntVar(&opts.maxYear, "max-year", 0, "Last year of the chi-squared trend window (MAX_YEAR)")
	flags.Float64Var(&opts.dpi, "dpi", 0, "Chart resolution, at least 300 (CHART_DPI)")
	flags.Float64Var(&opts.alpha, "alpha", 0, "Significance level drawn as the reference line (SIGNIFICANCE_LEVEL)")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent tests (ANALYSIS_WORKERS)")
	flags.BoolVar(&opts.yates, "yates", false, "Apply Yates continuity correction to 2x2 tables (YATES_CORRECTION)")
	flags.StringVar(&opts.workbook, "workbook", "", "Write per-year results to this XLSX file (RESULTS_WORKBOOK)")
	flags.StringVar(&opts.report, "report", "", "Write a markdown report and HTML copy (REPORT_FILE)")
	flags.StringVar(&opts.metrics, "metrics-file", "", "Write Prometheus textfile metrics after a run (METRICS_FILE)")
	flags.BoolVar(&opts.jsonOut, "json", false, "Print a JSON summary instead of text")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newChiCmd(opts),
		newCombinedCmd(opts),
		newMeansCmd(opts),
		newGenerateCmd(),
	)
	return rootCmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run both pipelines and print group means",
		Long: `Run the full batch: the chi-squared trend chart (chi-pvalue.png), the
combined p-value chart (result.png), and mean sentence length by gender and race.

Example: sentencestats run --data Felony_Sentences.csv --report report.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd.Context(), cmd, opts)
		},
	}
}

func newChiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chi",
		Short: "Chi-squared trend of RACE, GENDER, AGE_GROUP vs SENTENCE_TYPE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChi(cmd.Context(), cmd, opts)
		},
	}
}

func newCombinedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "combined",
		Short: "ANOVA, chi-squared and Fisher p-values of sentence length by GENDER and RACE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombined(cmd.Context(), cmd, opts)
		},
	}
}

func newMeansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "means",
		Short: "Print mean SENTENCE_IMPOSED_MONTHS by GENDER and by RACE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, opts)
			if err != nil {
				return err
			}
			ds, err := runner.Load()
			if err != nil {
				return err
			}
			_, err = runner.Means(ds)
			return err
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultSentencingConfig()

	cmd := &cobra.Command{
		Use:   "generate [output-file]",
		Short: "Write a synthetic sentencing dataset (.csv or .xlsx)",
		Long: `Generate a seeded synthetic felony sentencing dataset with the input
columns the analysis expects. The format follows the file extension.

Example: sentencestats generate Felony_Sentences.csv --start-year 2009 --end-year 2021 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.StartYear, "start-year", cfg.StartYear, "First sentence year")
	cmd.Flags().IntVar(&cfg.EndYear, "end-year", cfg.EndYear, "Last sentence year")
	cmd.Flags().IntVar(&cfg.RecordsPerYear, "records-per-year", cfg.RecordsPerYear, "Records generated per year")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic output")
	cmd.Flags().Float64Var(&cfg.GenderEffect, "gender-effect", cfg.GenderEffect, "Extra months imposed on male defendants")
	return cmd
}

// loadConfig applies changed flags over the environment configuration
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.File = opts.dataFile
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("min-year") {
		cfg.Analysis.MinYear = opts.minYear
	}
	if flags.Changed("max-year") {
		cfg.Analysis.MaxYear = opts.maxYear
	}
	if flags.Changed("dpi") {
		cfg.Output.DPI = opts.dpi
	}
	if flags.Changed("alpha") {
		cfg.Analysis.SignificanceLevel = opts.alpha
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = opts.workers
	}
	if flags.Changed("yates") {
		cfg.Analysis.YatesCorrection = opts.yates
	}
	if flags.Changed("workbook") {
		cfg.Output.ResultsWorkbook = opts.workbook
	}
	if flags.Changed("report") {
		cfg.Output.ReportFile = opts.report
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunner(cmd *cobra.Command, opts *options) (*app.Runner, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	return app.NewRunner(cfg, internal.NewDefaultLogger(), cmd.OutOrStdout()), nil
}

func runAll(ctx context.Context, cmd *cobra.Command, opts *options) error {
	runner, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}
	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return printJSON(cmd, map[string]interface{}{
			"run_id":    summary.RunID.String(),
			"records":   len(summary.Dataset.Records),
			"chi_trend": summary.ChiTrend,
			"combined":  summary.Combined,
			"means":     summary.Means,
			"workbook":  summary.WorkbookPath,
			"report":    summary.ReportPath,
			"metrics":   summary.MetricsPath,
			"undefined": summary.Undefined(),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRun %s\n", summary.RunID)
	fmt.Fprintf(out, "Records: %d\n", len(summary.Dataset.Records))
	fmt.Fprintf(out, "Charts: %s, %s\n", summary.ChiTrend.ChartPath, summary.Combined.ChartPath)
	if summary.WorkbookPath != "" {
		fmt.Fprintf(out, "Workbook: %s\n", summary.WorkbookPath)
	}
	if summary.ReportPath != "" {
		fmt.Fprintf(out, "Report: %s (%s)\n", summary.ReportPath, summary.HTMLPath)
	}
	if summary.MetricsPath != "" {
		fmt.Fprintf(out, "Metrics: %s\n", summary.MetricsPath)
	}
	fmt.Fprintf(out, "Undefined points: %d\n", summary.Undefined())
	return nil
}

func runChi(ctx context.Context, cmd *cobra.Command, opts *options) error {
	runner, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}
	ds, err := runner.Load()
	if err != nil {
		return err
	}
	result, err := runner.ChiTrend(ctx, ds)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	for _, p := range result.Panels {
		fmt.Fprintf(out, "%s\n", p.Category)
		printOutcomes(out, sentencing.Field(p.Category), result.Outcome, result.Results[p.Category], result.Years, result.Alpha)
	}
	fmt.Fprintf(out, "Chart: %s\n", result.ChartPath)
	return nil
}

// printOutcomes writes one line per year: the result summary, or n/a with
// the reason the point is undefined
func printOutcomes(w io.Writer, category, outcome sentencing.Field, yr stats.YearResults, years []int, alpha float64) {
	for _, year := range years {
		o, ok := yr[year]
		switch {
		case !ok:
			fmt.Fprintf(w, "  %d  n/a\n", year)
		case !o.Defined():
			fmt.Fprintf(w, "  %d  n/a (%v)\n", year, o.Err)
		default:
			fmt.Fprintf(w, "  %d  %s\n", year, senses.Describe(category, outcome, o.Result, alpha))
		}
	}
}

func runCombined(ctx context.Context, cmd *cobra.Command, opts *options) error {
	runner, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}
	ds, err := runner.Load()
	if err != nil {
		return err
	}
	result, err := runner.Combined(ctx, ds)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	for _, s := range result.Series {
		fmt.Fprintf(out, "%s: %s\n", s.Test.Label(), s.Category)
		printOutcomes(out, sentencing.Field(s.Category), result.Numeric, result.Results[s.Test][s.Category], result.Years, result.Alpha)
	}
	fmt.Fprintf(out, "Chart: %s\n", result.ChartPath)
	return nil
}

func runGenerate(cmd *cobra.Command, path string, cfg testkit.SentencingGeneratorConfig) error {
	records, err := testkit.NewSentencingDataGenerator(cfg).GenerateRecords()
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = testkit.WriteXLSX(path, records)
	case ".csv", "":
		err = testkit.WriteCSV(path, records)
	default:
		return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records (%d..%d, seed %d) to %s\n",
		len(records), cfg.StartYear, cfg.EndYear, cfg.Seed, path)
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
