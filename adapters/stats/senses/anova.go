package senses

import (
	"fmt"

	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
	"sentencestats/internal/analysis/dist"

	"gonum.org/v1/gonum/stat"
)

// AnovaSense runs a one-way analysis of variance of a numeric outcome across
// the levels of a single categorical factor
type AnovaSense struct {
	dists *dist.StatisticalDistributions
}

// NewAnovaSense creates an ANOVA sense
func NewAnovaSense() *AnovaSense {
	return &AnovaSense{dists: dist.NewDistributions()}
}

// Name returns the sense name
func (s *AnovaSense) Name() stats.TestKind {
	return stats.TestANOVA
}

// Description returns a human-readable description
func (s *AnovaSense) Description() string {
	return "One-way ANOVA: equality of outcome means across category levels"
}

// Test returns the F statistic of the category factor. Records without a
// category value or a numeric outcome are excluded.
func (s *AnovaSense) Test(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) (stats.TestResult, error) {
	groups := make(map[string][]float64)
	for _, r := range subgroup {
		level, ok := r.Value(categoryField)
		if !ok {
			continue
		}
		y, ok := r.Numeric(outcomeField)
		if !ok {
			continue
		}
		groups[level] = append(groups[level], y)
	}

	k := len(groups)
	if k < 2 {
		return stats.TestResult{}, core.NewInsufficientDataError(fmt.Sprintf("%s has %d level(s), need 2", categoryField, k))
	}

	levels := sortedLevels(groups)
	n := 0
	var all []float64
	for _, level := range levels {
		obs := groups[level]
		if len(obs) < 2 {
			return stats.TestResult{}, core.NewInsufficientDataError(
				fmt.Sprintf("%s=%s has %d observation(s), need 2", categoryField, level, len(obs)))
		}
		n += len(obs)
		all = append(all, obs...)
	}

	grandMean := stat.Mean(all, nil)
	ssBetween, ssWithin := 0.0, 0.0
	for _, level := range levels {
		obs := groups[level]
		mean, variance := stat.MeanVariance(obs, nil)
		d := mean - grandMean
		ssBetween += float64(len(obs)) * d * d
		ssWithin += variance * float64(len(obs)-1)
	}

	df1 := k - 1
	df2 := n - k
	if ssWithin <= 0 {
		return stats.TestResult{}, core.NewInsufficientDataError("zero within-group variance")
	}

	f := (ssBetween / float64(df1)) / (ssWithin / float64(df2))

	return stats.TestResult{
		Kind:         stats.TestANOVA,
		Statistic:    f,
		PValue:       s.dists.FTestPValue(f, df1, df2),
		EffectSize:   ssBetween / (ssBetween + ssWithin),
		DF1:          df1,
		DF2:          df2,
		N:            n,
		HasStatistic: true,
	}, nil
}

// AnovaTest runs a one-way ANOVA on a subgroup
func AnovaTest(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) (stats.TestResult, error) {
	return NewAnovaSense().Test(subgroup, categoryField, outcomeField)
}

func sortedLevels(groups map[string][]float64) []string {
	set := make(map[string]bool, len(groups))
	for k := range groups {
		set[k] = true
	}
	return sortedKeys(set)
}
