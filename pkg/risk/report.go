package risk

import (
	"math"
	"slices"

	"github.com/depscope/depscope/pkg/tree"
)

// topRiskCount is how many of the highest-scoring packages a report lists.
const topRiskCount = 10

// Entry is one package occurrence in a risk report.
type Entry struct {
	ID         string         `json:"id"` // name@version
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Depth      int            `json:"depth"`
	Score      int            `json:"score"`
	Level      tree.RiskLevel `json:"level"`
	License    string         `json:"license,omitempty"`
	Downloads  int            `json:"downloads"`
	Deprecated bool           `json:"deprecated"`
}

// Report summarizes the risk posture of an analyzed tree.
type Report struct {
	TotalPackages int                    `json:"total_packages"`
	AverageRisk   int                    `json:"average_risk"`
	OverallLevel  tree.RiskLevel         `json:"overall_level"`
	Distribution  map[tree.RiskLevel]int `json:"distribution"`
	TopRisks      []Entry                `json:"top_risks"`
	Deprecated    []Entry                `json:"deprecated,omitempty"`
	AllPackages   []Entry                `json:"all_packages"`
}

// GenerateReport flattens an analyzed tree into a report. Packages are
// sorted by descending score; the sort is stable so that nodes with equal
// scores keep their pre-order traversal order (score ties are common, since
// many nodes share default unknown-metadata scores). Trees that were never
// analyzed are annotated first.
func GenerateReport(root *tree.Node) *Report {
	if root != nil && root.Risk == nil {
		Analyze(root)
	}

	var entries []Entry
	tree.Walk(root, func(n *tree.Node) bool {
		entries = append(entries, Entry{
			ID:         n.ID(),
			Name:       n.Name,
			Version:    n.Version,
			Depth:      n.Depth,
			Score:      n.Risk.Score,
			Level:      n.Risk.Level,
			License:    n.Meta.License,
			Downloads:  n.Downloads,
			Deprecated: n.Meta.Deprecated,
		})
		return true
	})

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Score - a.Score
	})

	report := &Report{
		TotalPackages: len(entries),
		Distribution: map[tree.RiskLevel]int{
			tree.LevelLow:      0,
			tree.LevelMedium:   0,
			tree.LevelHigh:     0,
			tree.LevelCritical: 0,
		},
		AllPackages: entries,
	}

	total := 0
	for _, e := range entries {
		report.Distribution[e.Level]++
		total += e.Score
		if e.Deprecated {
			report.Deprecated = append(report.Deprecated, e)
		}
	}
	if len(entries) > 0 {
		report.AverageRisk = int(math.Round(float64(total) / float64(len(entries))))
	}
	report.OverallLevel = LevelFor(report.AverageRisk)
	report.TopRisks = entries[:min(topRiskCount, len(entries))]

	return report
}
