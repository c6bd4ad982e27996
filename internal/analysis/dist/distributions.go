package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides unified access to the reference
// distributions used for p-values
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// ChiSquarePValue is the upper tail probability of the chi-squared distribution
func (sd *StatisticalDistributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return math.NaN()
	}
	if chiSquare <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clampProbability(chiDist.Survival(chiSquare))
}

// FTestPValue is the upper tail probability of the F distribution (ANOVA)
func (sd *StatisticalDistributions) FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return math.NaN()
	}
	if fStatistic <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return clampProbability(fDist.Survival(fStatistic))
}

// CramersV computes the chi-square effect size sqrt(X² / (n * min(r-1, c-1)))
func (sd *StatisticalDistributions) CramersV(chiSquare float64, n, rows, cols int) float64 {
	minDim := math.Min(float64(rows-1), float64(cols-1))
	if n <= 0 || minDim <= 0 {
		return 0
	}
	return math.Sqrt(chiSquare / (float64(n) * minDim))
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
