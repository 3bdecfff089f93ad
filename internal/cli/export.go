package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/render"
	"github.com/depscope/depscope/pkg/risk"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	resolveOpts
	format   string
	detailed bool
	file     string // saved graph file to export instead of resolving
}

// newExportCmd creates the export command: render a dependency graph as a
// DOT, SVG, or PNG visualization.
func newExportCmd(cfg *fileConfig) *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <package> [range]",
		Short: "Render a dependency graph as DOT, SVG, or PNG",
		Long: `Export resolves a package (or loads a saved graph with --from) and renders
its dependency graph. Nodes are colored by risk level; circular, truncated,
and failed packages get dashed outlines.

Examples:
  depscope export express -f svg -o express.svg
  depscope export --from express.json -f dot`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(c *cobra.Command, args []string) error {
			g, err := exportGraph(c, cfg, &opts, args)
			if err != nil {
				return err
			}

			dot := render.ToDOT(g, render.Options{Detailed: opts.detailed})

			var data []byte
			switch opts.format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(dot)
			case "png":
				data, err = render.RenderPNG(dot)
			default:
				return fmt.Errorf("unknown format: %s (available: dot, svg, png)", opts.format)
			}
			if err != nil {
				return err
			}

			out, err := openOutput(opts.output)
			if err != nil {
				return err
			}
			defer out.Close()
			if _, err := out.Write(data); err != nil {
				return err
			}

			if opts.output != "" {
				printSuccess("Exported %d nodes as %s", g.Stats.NodeCount, opts.format)
				printFile(opts.output)
			}
			return nil
		},
	}

	opts.addResolveFlags(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "output format (dot, svg, png)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include license, downloads, and risk in node labels")
	cmd.Flags().StringVar(&opts.file, "from", "", "export a saved graph file instead of resolving")

	return cmd
}

func exportGraph(c *cobra.Command, cfg *fileConfig, opts *exportOpts, args []string) (*graph.Graph, error) {
	if opts.file != "" {
		return graph.ReadGraphFile(opts.file)
	}
	if len(args) == 0 {
		_ = c.Usage()
		return nil, fmt.Errorf("provide a package name or --from <graph.json>")
	}

	root, err := resolveTree(c.Context(), cfg, opts.resolveOpts, args[0], rangeArg(args))
	if err != nil {
		return nil, err
	}
	risk.Analyze(root)
	return graph.FromTree(root), nil
}
