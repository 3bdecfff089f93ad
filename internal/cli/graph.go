package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/risk"
)

// newGraphCmd creates the graph command: resolve a package and write its
// deduplicated dependency graph as JSON.
func newGraphCmd(cfg *fileConfig) *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "graph <package> [range]",
		Short: "Resolve a package and write its dependency graph as JSON",
		Long: `Graph resolves a package, scores it, and converts the dependency tree into
a deduplicated node/edge graph. The JSON output can be fed back into the
path, dependents, compare, and export commands.

Examples:
  depscope graph express -o express.json
  depscope graph lodash "^4.0.0"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			logger := loggerFromContext(c.Context())

			root, err := resolveTree(c.Context(), cfg, opts, args[0], rangeArg(args))
			if err != nil {
				return err
			}
			risk.Analyze(root)
			g := graph.FromTree(root)

			out, err := openOutput(opts.output)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := graph.WriteGraph(g, out); err != nil {
				return err
			}

			if opts.output != "" {
				logger.Infof("Wrote graph to %s", opts.output)
				printSuccess("%s", fmt.Sprintf("%d nodes, %d edges", g.Stats.NodeCount, g.Stats.EdgeCount))
				printFile(opts.output)
			}
			return nil
		},
	}

	opts.addResolveFlags(cmd)
	return cmd
}
