package risk

import (
	"testing"
	"time"

	"github.com/depscope/depscope/pkg/tree"
)

var refTime = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(days int) *time.Time {
	t := refTime.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestScoreNode_UnknownMetadata(t *testing.T) {
	// A node with no metadata at all: nil publish time, zero maintainers,
	// depth 0, unknown downloads, zero size, no deprecation, no license.
	n := &tree.Node{Name: "mystery", Version: "1.0.0", Downloads: tree.UnknownDownloads}

	risk := ScoreNode(n, refTime)

	// 60*.25 + 80*.20 + 0*.15 + 40*.15 + 10*.10 + 0*.10 + 80*.05 = 42
	if risk.Score != 42 {
		t.Errorf("composite = %d, want 42", risk.Score)
	}
	if risk.Level != tree.LevelMedium {
		t.Errorf("level = %s, want medium", risk.Level)
	}
	if len(risk.Factors) != 7 {
		t.Errorf("expected 7 factors, got %d", len(risk.Factors))
	}
}

func TestScoreNode_DeprecatedButOtherwiseIdeal(t *testing.T) {
	n := &tree.Node{
		Name:    "oldie",
		Version: "9.0.0",
		Depth:   0,
		Meta: tree.Metadata{
			License:      "MIT",
			Maintainers:  10,
			LastPublish:  daysAgo(30),
			UnpackedSize: 50_000,
			Deprecated:   true,
		},
		Downloads: 5_000_000,
	}

	risk := ScoreNode(n, refTime)

	// Only the deprecation factor contributes: 100*.10 = 10.
	if risk.Score != 10 {
		t.Errorf("composite = %d, want 10", risk.Score)
	}
	if risk.Level != tree.LevelLow {
		t.Errorf("level = %s, want low", risk.Level)
	}
}

func TestScoreNode_Deterministic(t *testing.T) {
	n := &tree.Node{
		Name: "pkg", Version: "1.0.0", Depth: 3,
		Meta:      tree.Metadata{License: "ISC", Maintainers: 2, LastPublish: daysAgo(400)},
		Downloads: 2_000,
	}

	first := ScoreNode(n, refTime)
	second := ScoreNode(n, refTime)
	if first.Score != second.Score || first.Level != second.Level {
		t.Errorf("scoring is not deterministic: %d/%s vs %d/%s",
			first.Score, first.Level, second.Score, second.Level)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  tree.RiskLevel
	}{
		{0, tree.LevelLow},
		{25, tree.LevelLow},
		{26, tree.LevelMedium},
		{50, tree.LevelMedium},
		{51, tree.LevelHigh},
		{75, tree.LevelHigh},
		{76, tree.LevelCritical},
		{100, tree.LevelCritical},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScorePublishAge(t *testing.T) {
	tests := []struct {
		name      string
		published *time.Time
		want      int
	}{
		{"unknown", nil, 60},
		{"older than two years", daysAgo(800), 80},
		{"older than one year", daysAgo(400), 50},
		{"older than six months", daysAgo(200), 20},
		{"fresh", daysAgo(30), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorePublishAge(tt.published, refTime); got != tt.want {
				t.Errorf("scorePublishAge = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreMaintainers(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 80}, {1, 80}, {2, 50}, {3, 20}, {5, 20}, {6, 0},
	}
	for _, tt := range tests {
		if got := scoreMaintainers(tt.count); got != tt.want {
			t.Errorf("scoreMaintainers(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestScoreDepth(t *testing.T) {
	tests := []struct {
		depth int
		want  int
	}{
		{0, 0}, {1, 12}, {5, 60}, {8, 96}, {9, 100}, {20, 100},
	}
	for _, tt := range tests {
		if got := scoreDepth(tt.depth); got != tt.want {
			t.Errorf("scoreDepth(%d) = %d, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestScoreDownloads(t *testing.T) {
	tests := []struct {
		weekly int
		want   int
	}{
		{tree.UnknownDownloads, 40},
		{0, 80}, {999, 80},
		{1_000, 50}, {9_999, 50},
		{10_000, 20}, {99_999, 20},
		{100_000, 0},
	}
	for _, tt := range tests {
		if got := scoreDownloads(tt.weekly); got != tt.want {
			t.Errorf("scoreDownloads(%d) = %d, want %d", tt.weekly, got, tt.want)
		}
	}
}

func TestScoreSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  int
	}{
		{0, 10},
		{50_000, 0},
		{102_401, 20},
		{524_289, 50},
		{1_048_577, 80},
	}
	for _, tt := range tests {
		if got := scoreSize(tt.bytes); got != tt.want {
			t.Errorf("scoreSize(%d) = %d, want %d", tt.bytes, got, tt.want)
		}
	}
}

func TestScoreLicense(t *testing.T) {
	tests := []struct {
		license string
		want    int
	}{
		{"", 80},
		{"unknown", 80},
		{"NONE", 80},
		{"MIT", 0},
		{"mit", 0},
		{"Apache-2.0", 0},
		{"GPL-3.0", 50},
		{"agpl-3.0", 50},
		{"Proprietary-EULA", 20},
	}
	for _, tt := range tests {
		if got := scoreLicense(tt.license); got != tt.want {
			t.Errorf("scoreLicense(%q) = %d, want %d", tt.license, got, tt.want)
		}
	}
}

func TestAnalyzeAt_AnnotatesEveryNode(t *testing.T) {
	root := &tree.Node{
		Name: "root", Version: "1.0.0",
		Dependencies: []*tree.Node{
			{Name: "child", Version: "2.0.0", Depth: 1},
			{Name: "loop", Version: "*", Depth: 1, Circular: true, Downloads: tree.UnknownDownloads},
		},
	}

	AnalyzeAt(root, refTime)

	tree.Walk(root, func(n *tree.Node) bool {
		if n.Risk == nil {
			t.Errorf("node %s was not annotated", n.ID())
		}
		return true
	})
}

func TestAnalyzeAt_Idempotent(t *testing.T) {
	root := &tree.Node{Name: "pkg", Version: "1.0.0", Downloads: tree.UnknownDownloads}

	AnalyzeAt(root, refTime)
	first := root.Risk.Score
	AnalyzeAt(root, refTime)
	if root.Risk.Score != first {
		t.Errorf("re-analysis changed the score: %d -> %d", first, root.Risk.Score)
	}
}
