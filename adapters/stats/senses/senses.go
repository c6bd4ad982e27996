package senses

import (
	"fmt"

	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
)

// AssociationSense tests a category field against an outcome field within
// one subgroup. Implementations are pure and safe for concurrent use.
type AssociationSense interface {
	Name() stats.TestKind
	Description() string
	Test(subgroup sentencing.Subgroup, categoryField, outcomeField sentencing.Field) (stats.TestResult, error)
}

// Describe renders a one-line human-readable summary of a result
func Describe(category, outcome sentencing.Field, r stats.TestResult, alpha float64) string {
	verdict := "no significant association"
	if r.PValue < alpha {
		verdict = "significant association"
	}

	switch r.Kind {
	case stats.TestChiSquared:
		return fmt.Sprintf("%s between %s and %s (χ²=%.3f, df=%d, p=%.4f, V=%.3f, n=%d)",
			verdict, category, outcome, r.Statistic, r.DF1, r.PValue, r.EffectSize, r.N)
	case stats.TestANOVA:
		return fmt.Sprintf("%s between %s and mean %s (F=%.3f, df=%d/%d, p=%.4f, η²=%.3f, n=%d)",
			verdict, category, outcome, r.Statistic, r.DF1, r.DF2, r.PValue, r.EffectSize, r.N)
	case stats.TestFisher:
		return fmt.Sprintf("combined evidence: %s for %s (p=%.4f over %d tests)",
			verdict, category, r.PValue, r.N)
	default:
		return fmt.Sprintf("%s: p=%.4f", r.Kind, r.PValue)
	}
}
