package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/npm"
	"github.com/depscope/depscope/pkg/resolver"
	"github.com/depscope/depscope/pkg/tree"
)

// resolveOpts holds the command-line flags shared by commands that resolve
// a dependency tree before doing anything else.
type resolveOpts struct {
	maxDepth int    // maximum dependency tree depth
	batch    int    // concurrent siblings per batch
	output   string // output file path (stdout if empty)
}

// addResolveFlags registers the shared resolution flags on cmd.
func (o *resolveOpts) addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", resolver.DefaultMaxDepth, "maximum dependency depth")
	cmd.Flags().IntVar(&o.batch, "batch", resolver.DefaultBatchSize, "concurrent fetches per batch")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (stdout if empty)")
}

// resolveTree runs the full resolution pipeline: build a registry client
// from config, resolve the tree with a live progress display, and log the
// elapsed time. Warnings from failed sub-resolutions go to the logger.
func resolveTree(ctx context.Context, cfg *fileConfig, opts resolveOpts, name, rangeSpec string) (*tree.Node, error) {
	logger := loggerFromContext(ctx)
	logger.Infof("Resolving %s", displayName(name, rangeSpec))

	ui := startProgress("Resolving " + name)
	prog := newProgress(logger)

	client := npm.NewClient(cfg.clientConfig())
	root, err := resolver.New(client).Resolve(ctx, name, rangeSpec, resolver.Options{
		MaxDepth:   opts.maxDepth,
		BatchSize:  opts.batch,
		OnProgress: ui.visit,
		Logger:     func(msg string, args ...any) { logger.Warnf(msg, args...) },
	})
	ui.stop()
	if err != nil {
		return nil, err
	}

	prog.done(fmt.Sprintf("Resolved %d packages", tree.Count(root)))
	return root, nil
}

func displayName(name, rangeSpec string) string {
	if rangeSpec == "" {
		return name
	}
	return name + "@" + rangeSpec
}

// rangeArg extracts the optional range spec from positional args.
func rangeArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

// nopCloser wraps an io.Writer with a no-op Close method, making os.Stdout
// compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout when path
// is empty. Existing files are overwritten.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
