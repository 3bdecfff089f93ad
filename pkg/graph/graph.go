// Package graph converts annotated dependency trees into deduplicated
// node/edge graphs and answers path, dependents, and comparison queries.
//
// A tree may contain the same name@version at several positions (diamond
// dependencies); the graph carries exactly one node per unique id, with one
// edge per (parent, child) occurrence. Conversion is a pure, single-pass
// traversal with no I/O.
package graph

import (
	"math"

	"github.com/depscope/depscope/pkg/tree"
)

// Edge types. An edge is "direct" when its target sits at depth 1 (a root
// dependency), "transitive" otherwise, regardless of whether the edge was
// created on first encounter or as a dedup edge.
const (
	EdgeDirect     = "direct"
	EdgeTransitive = "transitive"
)

// Node is one deduplicated package in the graph, carrying the
// display-relevant fields of its first tree encounter.
type Node struct {
	ID          string         `json:"id"` // name@version
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Depth       int            `json:"depth"`
	Size        int64          `json:"size"`
	RiskScore   int            `json:"risk_score"`
	RiskLevel   tree.RiskLevel `json:"risk_level,omitempty"`
	License     string         `json:"license,omitempty"`
	Maintainers int            `json:"maintainers"`
	Downloads   int            `json:"downloads"`
	Deprecated  bool           `json:"deprecated,omitempty"`
	Circular    bool           `json:"circular,omitempty"`
	Truncated   bool           `json:"truncated,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Edge is one directed (parent, child) dependency occurrence.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Stats aggregates a converted graph.
type Stats struct {
	NodeCount      int                    `json:"node_count"`
	EdgeCount      int                    `json:"edge_count"`
	TotalSize      int64                  `json:"total_size"` // summed over first-encountered nodes only
	MaxDepth       int                    `json:"max_depth"`
	DirectDeps     int                    `json:"direct_deps"`     // nodes at depth 1
	TransitiveDeps int                    `json:"transitive_deps"` // nodes at depth > 1
	Distribution   map[tree.RiskLevel]int `json:"distribution"`
	AverageRisk    int                    `json:"average_risk"`
}

// Graph is the deduplicated node/edge form of a dependency tree.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// FromTree converts a tree into its graph form. The traversal is pre-order:
// the first encounter of an id creates its node and expands its children;
// any later encounter via a different parent emits only an edge, sharing the
// already-expanded subtree.
func FromTree(root *tree.Node) *Graph {
	g := &Graph{}
	if root == nil {
		g.Stats = computeStats(g)
		return g
	}

	seen := make(map[string]bool)

	var expand func(n *tree.Node)
	expand = func(n *tree.Node) {
		g.Nodes = append(g.Nodes, nodeFrom(n))
		seen[n.ID()] = true

		for _, child := range n.Dependencies {
			g.Edges = append(g.Edges, Edge{
				From: n.ID(),
				To:   child.ID(),
				Type: edgeType(child.Depth),
			})
			if !seen[child.ID()] {
				expand(child)
			}
		}
	}
	expand(root)

	g.Stats = computeStats(g)
	return g
}

func edgeType(childDepth int) string {
	if childDepth == 1 {
		return EdgeDirect
	}
	return EdgeTransitive
}

func nodeFrom(n *tree.Node) Node {
	out := Node{
		ID:          n.ID(),
		Name:        n.Name,
		Version:     n.Version,
		Depth:       n.Depth,
		Size:        n.Meta.UnpackedSize,
		License:     n.Meta.License,
		Maintainers: n.Meta.Maintainers,
		Downloads:   n.Downloads,
		Deprecated:  n.Meta.Deprecated,
		Circular:    n.Circular,
		Truncated:   n.Truncated,
		Error:       n.Error,
	}
	if n.Risk != nil {
		out.RiskScore = n.Risk.Score
		out.RiskLevel = n.Risk.Level
	}
	return out
}

func computeStats(g *Graph) Stats {
	stats := Stats{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		Distribution: map[tree.RiskLevel]int{
			tree.LevelLow:      0,
			tree.LevelMedium:   0,
			tree.LevelHigh:     0,
			tree.LevelCritical: 0,
		},
	}

	totalRisk := 0
	for _, n := range g.Nodes {
		stats.TotalSize += n.Size
		stats.MaxDepth = max(stats.MaxDepth, n.Depth)
		switch {
		case n.Depth == 1:
			stats.DirectDeps++
		case n.Depth > 1:
			stats.TransitiveDeps++
		}
		if n.RiskLevel != "" {
			stats.Distribution[n.RiskLevel]++
		}
		totalRisk += n.RiskScore
	}
	if len(g.Nodes) > 0 {
		stats.AverageRisk = int(math.Round(float64(totalRisk) / float64(len(g.Nodes))))
	}
	return stats
}
