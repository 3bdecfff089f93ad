package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the depscope CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, loads the optional TOML config, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
		cfg        fileConfig
	)

	root := &cobra.Command{
		Use:          "depscope",
		Short:        "depscope analyzes npm dependency trees for supply-chain risk",
		Long:         `depscope resolves the full transitive dependency tree of an npm package, scores every package on a weighted set of risk factors, and answers structural queries over the resulting dependency graph.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))

			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("depscope %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: depscope.toml)")

	root.AddCommand(newAnalyzeCmd(&cfg))
	root.AddCommand(newGraphCmd(&cfg))
	root.AddCommand(newPathCmd())
	root.AddCommand(newDependentsCmd())
	root.AddCommand(newCompareCmd(&cfg))
	root.AddCommand(newExportCmd(&cfg))
	root.AddCommand(newServeCmd(&cfg))

	return root.ExecuteContext(ctx)
}
