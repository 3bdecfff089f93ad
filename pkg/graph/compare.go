package graph

import "slices"

// Summary condenses one graph's aggregate stats for a comparison.
type Summary struct {
	Packages    int   `json:"packages"`
	TotalSize   int64 `json:"total_size"`
	MaxDepth    int   `json:"max_depth"`
	AverageRisk int   `json:"average_risk"`
}

// Comparison is the result of diffing two graphs by package name.
type Comparison struct {
	Shared   []string `json:"shared"`
	OnlyA    []string `json:"only_a"`
	OnlyB    []string `json:"only_b"`
	SummaryA Summary  `json:"summary_a"`
	SummaryB Summary  `json:"summary_b"`
}

// Compare diffs two graphs by node name, version-independently: two graphs
// depending on different versions of the same package still share it.
// Name lists are sorted for deterministic output.
func Compare(a, b *Graph) *Comparison {
	namesA := nameSet(a)
	namesB := nameSet(b)

	c := &Comparison{
		Shared:   []string{},
		OnlyA:    []string{},
		OnlyB:    []string{},
		SummaryA: summarize(a),
		SummaryB: summarize(b),
	}

	for name := range namesA {
		if namesB[name] {
			c.Shared = append(c.Shared, name)
		} else {
			c.OnlyA = append(c.OnlyA, name)
		}
	}
	for name := range namesB {
		if !namesA[name] {
			c.OnlyB = append(c.OnlyB, name)
		}
	}

	slices.Sort(c.Shared)
	slices.Sort(c.OnlyA)
	slices.Sort(c.OnlyB)
	return c
}

func nameSet(g *Graph) map[string]bool {
	names := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		names[n.Name] = true
	}
	return names
}

func summarize(g *Graph) Summary {
	return Summary{
		Packages:    g.Stats.NodeCount,
		TotalSize:   g.Stats.TotalSize,
		MaxDepth:    g.Stats.MaxDepth,
		AverageRisk: g.Stats.AverageRisk,
	}
}
