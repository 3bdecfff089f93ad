// Package tree defines the resolved dependency tree data model.
//
// A tree is produced once by the resolver and never mutated afterward, with
// one exception: the risk analyzer attaches a [RiskAnnotation] to each node.
// Nodes are identified by their "name@version" string; the same package can
// appear at several tree positions (diamond dependencies), each occurrence
// being its own Node.
package tree

import (
	"time"
)

// UnknownDownloads marks a weekly download count that could not be fetched.
// It is distinct from a legitimate zero.
const UnknownDownloads = -1

// Metadata holds the registry-sourced fields of a resolved package version.
// A terminal leaf (circular, truncated, or errored) carries the zero value.
type Metadata struct {
	Description  string     `json:"description,omitempty"`
	License      string     `json:"license,omitempty"` // canonical string, empty when missing
	Maintainers  int        `json:"maintainers"`
	LastPublish  *time.Time `json:"last_publish,omitempty"`
	UnpackedSize int64      `json:"unpacked_size"`
	Deprecated   bool       `json:"deprecated"`
	Homepage     string     `json:"homepage,omitempty"`
	Repository   string     `json:"repository,omitempty"`
}

// Node is one resolved package+version occurrence within a specific tree path.
//
// Invariants maintained by the resolver:
//   - a child's Depth is exactly the parent's Depth+1
//   - a node with Circular or Truncated set has no Dependencies
//   - Error and Circular/Truncated are mutually exclusive
//   - all three terminal states suppress further recursion
type Node struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Depth        int      `json:"depth"`
	Dependencies []*Node  `json:"dependencies,omitempty"` // declaration order
	Meta         Metadata `json:"meta"`
	Downloads    int      `json:"downloads"` // weekly count, UnknownDownloads if unavailable

	Circular  bool   `json:"circular,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`

	// Risk is attached by the risk analyzer; nil until the tree is analyzed.
	Risk *RiskAnnotation `json:"risk,omitempty"`
}

// ID returns the canonical "name@version" identifier for the node.
func (n *Node) ID() string { return n.Name + "@" + n.Version }

// Terminal reports whether recursion was deliberately stopped at this node.
func (n *Node) Terminal() bool { return n.Circular || n.Truncated || n.Error != "" }

// RiskLevel buckets a composite risk score.
type RiskLevel string

// Risk levels from least to most severe.
const (
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// FactorScore is one named sub-score of the composite risk model.
type FactorScore struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`  // 0-100
	Weight float64 `json:"weight"` // contribution to the composite
}

// RiskAnnotation is the composite risk assessment of a single node.
// It is a deterministic pure function of the node's metadata and depth.
type RiskAnnotation struct {
	Score   int           `json:"score"` // 0-100
	Level   RiskLevel     `json:"level"`
	Factors []FactorScore `json:"factors"`
}

// Walk visits every node of the tree in pre-order (parent before children,
// children in declaration order). It stops early if fn returns false.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	var walk func(*Node) bool
	walk = func(n *Node) bool {
		for _, child := range n.Dependencies {
			if !fn(child) || !walk(child) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// Flatten returns all nodes of the tree in pre-order.
func Flatten(root *Node) []*Node {
	var nodes []*Node
	Walk(root, func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// Count returns the total number of nodes in the tree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}
