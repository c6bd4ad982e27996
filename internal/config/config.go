package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"sentencestats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Output   OutputConfig
}

// DataConfig holds input settings
type DataConfig struct {
	File string
}

// AnalysisConfig holds statistical settings
type AnalysisConfig struct {
	MinYear           int
	MaxYear           int
	SignificanceLevel float64
	Workers           int
	YatesCorrection   bool
}

// OutputConfig holds output paths and chart resolution
type OutputConfig struct {
	Dir               string
	ChiChartFile      string
	CombinedChartFile string
	ResultsWorkbook   string // optional
	ReportFile        string // optional, markdown; an .html sibling is written too
	MetricsFile       string // optional, Prometheus textfile collector output
	DPI               float64
}

// Default returns the reference configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{File: "Felony_Sentences.csv"},
		Analysis: AnalysisConfig{
			MinYear:           2010,
			MaxYear:           2020,
			SignificanceLevel: 0.05,
			Workers:           runtime.NumCPU(),
		},
		Output: OutputConfig{
			Dir:               ".",
			ChiChartFile:      "chi-pvalue.png",
			CombinedChartFile: "result.png",
			DPI:               300,
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Data: DataConfig{
			File: getEnvOrDefault("SENTENCE_DATA_FILE", def.Data.File),
		},
		Analysis: AnalysisConfig{
			MinYear:           getEnvIntOrDefault("MIN_YEAR", def.Analysis.MinYear),
			MaxYear:           getEnvIntOrDefault("MAX_YEAR", def.Analysis.MaxYear),
			SignificanceLevel: getEnvFloatOrDefault("SIGNIFICANCE_LEVEL", def.Analysis.SignificanceLevel),
			Workers:           getEnvIntOrDefault("ANALYSIS_WORKERS", def.Analysis.Workers),
			YatesCorrection:   getEnvBoolOrDefault("YATES_CORRECTION", false),
		},
		Output: OutputConfig{
			Dir:               getEnvOrDefault("OUTPUT_DIR", def.Output.Dir),
			ChiChartFile:      getEnvOrDefault("CHI_CHART_FILE", def.Output.ChiChartFile),
			CombinedChartFile: getEnvOrDefault("COMBINED_CHART_FILE", def.Output.CombinedChartFile),
			ResultsWorkbook:   getEnvOrDefault("RESULTS_WORKBOOK", ""),
			ReportFile:        getEnvOrDefault("REPORT_FILE", ""),
			MetricsFile:       getEnvOrDefault("METRICS_FILE", ""),
			DPI:               getEnvFloatOrDefault("CHART_DPI", def.Output.DPI),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if c.Data.File == "" {
		return errors.ConfigInvalid("data file is required")
	}
	if c.Analysis.MinYear > c.Analysis.MaxYear {
		return errors.ConfigInvalid("MIN_YEAR must not exceed MAX_YEAR")
	}
	if c.Analysis.SignificanceLevel <= 0 || c.Analysis.SignificanceLevel >= 1 {
		return errors.ConfigInvalid("significance level must be in (0, 1)")
	}
	if c.Analysis.Workers < 1 {
		return errors.ConfigInvalid("analysis workers must be at least 1")
	}
	if c.Output.DPI < 300 {
		return errors.ConfigInvalid("chart DPI must be at least 300")
	}
	if c.Output.ChiChartFile == "" || c.Output.CombinedChartFile == "" {
		return errors.ConfigInvalid("chart file names are required")
	}
	return nil
}

// Years returns the configured inclusive year range
func (c *Config) Years() []int {
	years := make([]int, 0, c.Analysis.MaxYear-c.Analysis.MinYear+1)
	for y := c.Analysis.MinYear; y <= c.Analysis.MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// OutputPath resolves a file name against the output directory
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
