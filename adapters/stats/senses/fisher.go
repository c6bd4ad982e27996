package senses

import (
	"fmt"
	"math"

	"sentencestats/domain/core"
	"sentencestats/domain/stats"
	"sentencestats/internal/analysis/dist"
)

// MethodFisher selects Fisher's combined probability test
const MethodFisher = "fisher"

// CombinePValues merges independent p-values into one. With Fisher's method
// X = -2 Σ ln p_i follows a chi-squared distribution with 2k degrees of freedom.
func CombinePValues(pValues []float64, method string) (float64, error) {
	r, err := CombineResult(pValues, method)
	if err != nil {
		return math.NaN(), err
	}
	return r.PValue, nil
}

// CombineResult is CombinePValues returning the full result. The combination
// statistic is kept for reference but HasStatistic is false.
func CombineResult(pValues []float64, method string) (stats.TestResult, error) {
	if method == "" {
		method = MethodFisher
	}
	if method != MethodFisher {
		return stats.TestResult{}, core.NewInvalidInputError(fmt.Sprintf("unsupported combination method %q", method))
	}
	if len(pValues) == 0 {
		return stats.TestResult{}, core.NewInvalidInputError("no p-values to combine")
	}

	x := 0.0
	for i, p := range pValues {
		if math.IsNaN(p) || p <= 0 || p > 1 {
			return stats.TestResult{}, core.NewInvalidInputError(fmt.Sprintf("p-value %d is %v, want (0, 1]", i, p))
		}
		x += math.Log(p)
	}
	x *= -2
	df := 2 * len(pValues)

	return stats.TestResult{
		Kind:      stats.TestFisher,
		Statistic: x,
		PValue:    dist.NewDistributions().ChiSquarePValue(x, df),
		DF1:       df,
		N:         len(pValues),
	}, nil
}
