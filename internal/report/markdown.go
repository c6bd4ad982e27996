package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"sentencestats/domain/core"
	"sentencestats/domain/sentencing"
	"sentencestats/domain/stats"
)

// MeansTable is one grouping of the numeric outcome
type MeansTable struct {
	Field   sentencing.Field
	Numeric sentencing.Field
	Means   []GroupMean
}

// Summary gathers everything a run produced
type Summary struct {
	RunID       core.RunID
	InputFile   string
	InputDigest core.Hash
	GeneratedAt time.Time
	Records     int
	Alpha       float64

	// ChiTrend holds the demographic x SENTENCE_TYPE chi-squared results
	ChiTrend stats.CategoryResults
	// Combined holds ANOVA, chi-squared and Fisher results on sentence months
	Combined map[stats.TestKind]stats.CategoryResults
	Means    []MeansTable
	Charts   []string
}

// Markdown renders the summary as a markdown document
func Markdown(s Summary) string {
	var b strings.Builder

	b.WriteString("# Felony sentencing association report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	if s.InputFile != "" {
		fmt.Fprintf(&b, "- Input: `%s`", s.InputFile)
		if !s.InputDigest.IsEmpty() {
			fmt.Fprintf(&b, " (sha256 `%s`)", s.InputDigest.Short())
		}
		b.WriteString("\n")
	}
	if !s.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- Generated: %s\n", s.GeneratedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- Records analysed: %d\n", s.Records)
	fmt.Fprintf(&b, "- Significance level: %g\n", s.Alpha)
	for _, c := range s.Charts {
		fmt.Fprintf(&b, "- Chart: `%s`\n", c)
	}
	b.WriteString("\n")

	if len(s.ChiTrend) > 0 {
		b.WriteString("## Chi-squared trend: demographics vs sentence type\n\n")
		writeResults(&b, s.ChiTrend, s.Alpha)
	}

	if len(s.Combined) > 0 {
		b.WriteString("## Combined tests on sentence length\n\n")
		b.WriteString("Fisher's method here merges the ANOVA and chi-squared p-values of the same data; ")
		b.WriteString("treat it as an exploratory summary, not an independent test.\n\n")
		kinds := make([]stats.TestKind, 0, len(s.Combined))
		for k := range s.Combined {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kindOrder(kinds[i]) < kindOrder(kinds[j]) })
		for _, k := range kinds {
			fmt.Fprintf(&b, "### %s\n\n", k.Label())
			writeResults(&b, s.Combined[k], s.Alpha)
		}
	}

	for _, m := range s.Means {
		fmt.Fprintf(&b, "## Mean %s by %s\n\n", m.Numeric, m.Field)
		fmt.Fprintf(&b, "| %s | n | mean | median | std dev |\n|---|---:|---:|---:|---:|\n", m.Field)
		for _, g := range m.Means {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f |\n", escape(g.Group), g.Count, g.Mean, g.Median, g.StdDev)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeResults(b *strings.Builder, results stats.CategoryResults, alpha float64) {
	for _, category := range results.Categories() {
		fmt.Fprintf(b, "**%s**\n\n", category)
		b.WriteString("| year | statistic | df | p-value | n | |\n|---:|---:|---|---:|---:|---|\n")

		yr := results[category]
		for _, year := range yr.Years() {
			o := yr[year]
			if !o.Defined() {
				fmt.Fprintf(b, "| %d | | | n/a | | undefined: %s |\n", year, escape(o.Err.Error()))
				continue
			}
			r := o.Result
			stat := ""
			if r.HasStatistic {
				stat = formatFloat(r.Statistic, 3)
			}
			fmt.Fprintf(b, "| %d | %s | %s | %s | %d | %s |\n",
				year, stat, degrees(r), formatFloat(r.PValue, 4), r.N, marker(r.PValue, alpha))
		}
		b.WriteString("\n")
	}
}

func degrees(r stats.TestResult) string {
	if r.DF2 > 0 {
		return fmt.Sprintf("%d, %d", r.DF1, r.DF2)
	}
	return fmt.Sprintf("%d", r.DF1)
}

func marker(p, alpha float64) string {
	if p < alpha {
		return "significant"
	}
	return ""
}

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func kindOrder(k stats.TestKind) int {
	switch k {
	case stats.TestANOVA:
		return 0
	case stats.TestChiSquared:
		return 1
	case stats.TestFisher:
		return 2
	default:
		return 3
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
