package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/risk"
	"github.com/depscope/depscope/pkg/tree"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	resolveOpts
	jsonOut bool // emit the full report as JSON instead of tables
	all     bool // list every package, not just the top risks
}

// newAnalyzeCmd creates the analyze command: resolve a package, score every
// node, and print a risk report.
func newAnalyzeCmd(cfg *fileConfig) *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze <package> [range]",
		Short: "Resolve a package and print its supply-chain risk report",
		Long: `Analyze resolves the full transitive dependency tree of an npm package,
scores every package on a weighted set of risk factors, and prints a report.

Examples:
  depscope analyze express              # Latest version
  depscope analyze express "^4.18.0"    # Constrained by a semver range
  depscope analyze express --json       # Machine-readable report`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			root, err := resolveTree(c.Context(), cfg, opts.resolveOpts, args[0], rangeArg(args))
			if err != nil {
				return err
			}

			risk.Analyze(root)
			report := risk.GenerateReport(root)

			if opts.jsonOut || opts.output != "" {
				return writeReport(report, opts.output)
			}
			printReport(root, report, opts.all)
			return nil
		},
	}

	opts.addResolveFlags(cmd)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output the full report as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "list every package instead of the top risks")

	return cmd
}

func writeReport(report *risk.Report, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printReport(root *tree.Node, report *risk.Report, all bool) {
	fmt.Println()
	fmt.Println(StyleTitle.Render(fmt.Sprintf("Risk report for %s", root.ID())))
	fmt.Println()

	printKeyValue("Packages", strconv.Itoa(report.TotalPackages))
	printKeyValue("Average risk", fmt.Sprintf("%d (%s)", report.AverageRisk, renderLevel(report.OverallLevel)))
	printKeyValue("Distribution", fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		renderLevel(tree.LevelLow), report.Distribution[tree.LevelLow],
		renderLevel(tree.LevelMedium), report.Distribution[tree.LevelMedium],
		renderLevel(tree.LevelHigh), report.Distribution[tree.LevelHigh],
		renderLevel(tree.LevelCritical), report.Distribution[tree.LevelCritical]))
	fmt.Println()

	entries := report.TopRisks
	heading := "Top risks"
	if all {
		entries = report.AllPackages
		heading = "All packages"
	}
	fmt.Println(StyleHighlight.Render(heading))
	fmt.Println(entryTable(entries).Render())

	if len(report.Deprecated) > 0 {
		fmt.Println()
		fmt.Println(StyleWarning.Render(fmt.Sprintf("%d deprecated package(s)", len(report.Deprecated))))
		for _, e := range report.Deprecated {
			printDetail("%s (depth %d)", e.ID, e.Depth)
		}
	}
}

func entryTable(entries []risk.Entry) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(entries))
	for i, e := range entries {
		downloads := "?"
		if e.Downloads >= 0 {
			downloads = strconv.Itoa(e.Downloads)
		}
		license := e.License
		if license == "" {
			license = "—"
		}
		rows[i] = []string{
			e.ID,
			strconv.Itoa(e.Depth),
			strconv.Itoa(e.Score),
			string(e.Level),
			license,
			downloads,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Depth", "Score", "Level", "License", "Weekly DL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && row < len(entries) {
				if style, ok := levelStyles[entries[row].Level]; ok {
					return style
				}
			}
			return lipgloss.NewStyle()
		})
}
