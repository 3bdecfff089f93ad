package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/risk"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	resolveOpts
	jsonOut bool
	files   bool // arguments are saved graph files, not package names
}

// newCompareCmd creates the compare command: diff the dependency graphs of
// two packages (or two saved graph files) by package name.
func newCompareCmd(cfg *fileConfig) *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare the dependency graphs of two packages",
		Long: `Compare resolves two packages (or loads two saved graphs with --files) and
diffs them by package name, version-independently: depending on different
versions of the same package still counts as shared.

Examples:
  depscope compare express fastify
  depscope compare --files express.json fastify.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			a, b, err := loadGraphs(c, cfg, &opts, args)
			if err != nil {
				return err
			}

			cmp := graph.Compare(a, b)
			if opts.jsonOut {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cmp)
			}
			printComparison(args[0], args[1], cmp)
			return nil
		},
	}

	opts.addResolveFlags(cmd)
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output the comparison as JSON")
	cmd.Flags().BoolVar(&opts.files, "files", false, "treat arguments as saved graph files")

	return cmd
}

func loadGraphs(c *cobra.Command, cfg *fileConfig, opts *compareOpts, args []string) (*graph.Graph, *graph.Graph, error) {
	if opts.files {
		a, err := graph.ReadGraphFile(args[0])
		if err != nil {
			return nil, nil, err
		}
		b, err := graph.ReadGraphFile(args[1])
		if err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}

	a, err := resolveGraph(c, cfg, opts.resolveOpts, args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := resolveGraph(c, cfg, opts.resolveOpts, args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func resolveGraph(c *cobra.Command, cfg *fileConfig, opts resolveOpts, name string) (*graph.Graph, error) {
	root, err := resolveTree(c.Context(), cfg, opts, name, "")
	if err != nil {
		return nil, err
	}
	risk.Analyze(root)
	return graph.FromTree(root), nil
}

func printComparison(nameA, nameB string, cmp *graph.Comparison) {
	fmt.Println()
	fmt.Println(StyleTitle.Render(fmt.Sprintf("%s vs %s", nameA, nameB)))
	fmt.Println()

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", nameA, nameB).
		Rows(
			[]string{"Packages", strconv.Itoa(cmp.SummaryA.Packages), strconv.Itoa(cmp.SummaryB.Packages)},
			[]string{"Total size", formatSize(cmp.SummaryA.TotalSize), formatSize(cmp.SummaryB.TotalSize)},
			[]string{"Max depth", strconv.Itoa(cmp.SummaryA.MaxDepth), strconv.Itoa(cmp.SummaryB.MaxDepth)},
			[]string{"Average risk", strconv.Itoa(cmp.SummaryA.AverageRisk), strconv.Itoa(cmp.SummaryB.AverageRisk)},
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
	fmt.Println(t.Render())

	fmt.Println()
	printKeyValue("Shared", strconv.Itoa(len(cmp.Shared)))
	printKeyValue("Only "+nameA, strconv.Itoa(len(cmp.OnlyA)))
	printKeyValue("Only "+nameB, strconv.Itoa(len(cmp.OnlyB)))
}

func formatSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
