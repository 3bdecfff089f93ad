package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/internal/server"
	"github.com/depscope/depscope/pkg/npm"
	"github.com/depscope/depscope/pkg/resolver"
	"github.com/depscope/depscope/pkg/tree"
)

// newServeCmd creates the serve command: run the HTTP analysis API.
func newServeCmd(cfg *fileConfig) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis API",
		Long: `Serve runs an HTTP server exposing the analysis pipeline:

  POST /api/analyze   {"package": "...", "range": "...", "max_depth": N}
  GET  /api/health

The registry record cache is shared across requests for the lifetime of
the process.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			logger := loggerFromContext(c.Context())

			if addr == "" {
				addr = cfg.Server.Addr
			}
			client := npm.NewClient(cfg.clientConfig())
			analyzer := &resolverAnalyzer{
				resolver: resolver.New(client),
				logger:   func(msg string, args ...any) { logger.Warnf(msg, args...) },
				defaults: resolver.Options{
					MaxDepth:  cfg.Resolve.MaxDepth,
					BatchSize: cfg.Resolve.BatchSize,
				},
			}

			srv := server.New(server.Config{Addr: addr, Logger: logger}, analyzer)
			return srv.ListenAndServe(c.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	return cmd
}

// resolverAnalyzer adapts the resolver to the server.Analyzer interface,
// applying per-request depth overrides on top of configured defaults.
type resolverAnalyzer struct {
	resolver *resolver.Resolver
	logger   func(string, ...any)
	defaults resolver.Options
}

func (a *resolverAnalyzer) Resolve(ctx context.Context, name, rangeSpec string, maxDepth int) (*tree.Node, error) {
	opts := a.defaults
	opts.Logger = a.logger
	if maxDepth > 0 {
		opts.MaxDepth = maxDepth
	}
	return a.resolver.Resolve(ctx, name, rangeSpec, opts)
}
