package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/graph"
)

// newPathCmd creates the path command: explain why a package is in the tree
// by finding a dependency chain from the root to it.
func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <graph.json> <from> <to>",
		Short: "Find a dependency chain between two packages in a saved graph",
		Long: `Path searches a saved dependency graph breadth-first for a chain from one
package to another. Package ids are name@version, as written by the graph
command.

Example:
  depscope path express.json express@4.18.2 ms@2.0.0`,
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			from, to := args[1], args[2]
			if err := requireNodes(g, from, to); err != nil {
				return err
			}

			path := graph.FindPath(g.Edges, from, to)
			if path == nil {
				printInfo("No path from %s to %s", from, to)
				return nil
			}

			printSuccess("Path with %d hop(s)", len(path)-1)
			fmt.Println("  " + StyleValue.Render(strings.Join(path, " "+iconArrow+" ")))
			return nil
		},
	}
}

// newDependentsCmd creates the dependents command: list the packages that
// directly depend on a given package.
func newDependentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dependents <graph.json> <package>",
		Short: "List the direct dependents of a package in a saved graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			target := args[1]
			if err := requireNodes(g, target); err != nil {
				return err
			}

			dependents := graph.Dependents(g.Edges, target)
			if len(dependents) == 0 {
				printInfo("Nothing depends on %s", target)
				return nil
			}

			printSuccess("%d package(s) depend on %s", len(dependents), target)
			for _, id := range dependents {
				printDetail("%s", id)
			}
			return nil
		},
	}
}

// requireNodes verifies that every id exists in the graph.
func requireNodes(g *graph.Graph, ids ...string) error {
	present := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		present[n.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return errors.New(errors.ErrCodeNodeNotFound, "package %s is not in the graph", id)
		}
	}
	return nil
}
