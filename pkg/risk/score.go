// Package risk scores dependency trees with a weighted multi-factor model.
//
// Every node receives a 0-100 composite computed purely from metadata already
// present on the node; no network access happens here. Seven factors
// contribute: publish age, maintainer count, tree depth, weekly downloads,
// unpacked size, deprecation, and license class. Scoring is deterministic
// and idempotent for a fixed reference time.
package risk

import (
	"math"
	"strings"
	"time"

	"github.com/depscope/depscope/pkg/tree"
)

// Factor names, as reported in each node's per-factor breakdown.
const (
	FactorPublishAge  = "publish_age"
	FactorMaintainers = "maintainers"
	FactorDepth       = "depth"
	FactorDownloads   = "downloads"
	FactorSize        = "size"
	FactorDeprecated  = "deprecated"
	FactorLicense     = "license"
)

// Factor weights. They sum to 1.0.
const (
	weightPublishAge  = 0.25
	weightMaintainers = 0.20
	weightDepth       = 0.15
	weightDownloads   = 0.15
	weightSize        = 0.10
	weightDeprecated  = 0.10
	weightLicense     = 0.05
)

// permissiveLicenses and copyleftLicenses are the fixed license classes,
// matched case-insensitively against the canonical license string.
var (
	permissiveLicenses = licenseSet("MIT", "Apache-2.0", "BSD-2-Clause", "BSD-3-Clause", "ISC", "0BSD", "Unlicense", "CC0-1.0")
	copyleftLicenses   = licenseSet("GPL-2.0", "GPL-3.0", "LGPL-2.1", "LGPL-3.0", "AGPL-3.0", "MPL-2.0", "EPL-2.0")
)

func licenseSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// Analyze walks the tree depth-first and attaches a RiskAnnotation to every
// node, terminal leaves included. Annotation is in place and idempotent:
// re-analyzing an unmodified tree yields identical scores and levels.
func Analyze(root *tree.Node) *tree.Node {
	return AnalyzeAt(root, time.Now())
}

// AnalyzeAt is Analyze with an explicit reference time for the publish-age
// factor, making the result fully deterministic.
func AnalyzeAt(root *tree.Node, now time.Time) *tree.Node {
	tree.Walk(root, func(n *tree.Node) bool {
		n.Risk = ScoreNode(n, now)
		return true
	})
	return root
}

// ScoreNode computes the composite risk annotation for a single node.
// The result depends only on the node's metadata and depth, never on
// traversal order or sibling state.
func ScoreNode(n *tree.Node, now time.Time) *tree.RiskAnnotation {
	factors := []tree.FactorScore{
		{Name: FactorPublishAge, Score: scorePublishAge(n.Meta.LastPublish, now), Weight: weightPublishAge},
		{Name: FactorMaintainers, Score: scoreMaintainers(n.Meta.Maintainers), Weight: weightMaintainers},
		{Name: FactorDepth, Score: scoreDepth(n.Depth), Weight: weightDepth},
		{Name: FactorDownloads, Score: scoreDownloads(n.Downloads), Weight: weightDownloads},
		{Name: FactorSize, Score: scoreSize(n.Meta.UnpackedSize), Weight: weightSize},
		{Name: FactorDeprecated, Score: scoreDeprecated(n.Meta.Deprecated), Weight: weightDeprecated},
		{Name: FactorLicense, Score: scoreLicense(n.Meta.License), Weight: weightLicense},
	}

	weighted := 0.0
	for _, f := range factors {
		weighted += float64(f.Score) * f.Weight
	}
	score := int(math.Round(weighted))

	return &tree.RiskAnnotation{
		Score:   score,
		Level:   LevelFor(score),
		Factors: factors,
	}
}

// LevelFor maps a composite score to its risk level.
func LevelFor(score int) tree.RiskLevel {
	switch {
	case score <= 25:
		return tree.LevelLow
	case score <= 50:
		return tree.LevelMedium
	case score <= 75:
		return tree.LevelHigh
	default:
		return tree.LevelCritical
	}
}

func scorePublishAge(published *time.Time, now time.Time) int {
	if published == nil {
		return 60
	}
	age := now.Sub(*published)
	switch {
	case age > 730*24*time.Hour:
		return 80
	case age > 365*24*time.Hour:
		return 50
	case age > 180*24*time.Hour:
		return 20
	default:
		return 0
	}
}

func scoreMaintainers(count int) int {
	switch {
	case count <= 1: // zero means unknown, scored like a single maintainer
		return 80
	case count == 2:
		return 50
	case count <= 5:
		return 20
	default:
		return 0
	}
}

func scoreDepth(depth int) int {
	return min(depth*12, 100)
}

func scoreDownloads(weekly int) int {
	switch {
	case weekly == tree.UnknownDownloads:
		return 40
	case weekly < 1_000:
		return 80
	case weekly < 10_000:
		return 50
	case weekly < 100_000:
		return 20
	default:
		return 0
	}
}

func scoreSize(bytes int64) int {
	switch {
	case bytes <= 0: // unknown
		return 10
	case bytes > 1_048_576:
		return 80
	case bytes > 524_288:
		return 50
	case bytes > 102_400:
		return 20
	default:
		return 0
	}
}

func scoreDeprecated(deprecated bool) int {
	if deprecated {
		return 100
	}
	return 0
}

func scoreLicense(license string) int {
	normalized := strings.ToLower(strings.TrimSpace(license))
	switch {
	case normalized == "" || normalized == "unknown" || normalized == "none":
		return 80
	case permissiveLicenses[normalized]:
		return 0
	case copyleftLicenses[normalized]:
		return 50
	default:
		return 20
	}
}
