package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neomap"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neomap",
	Short: "Inspect Neo4j query results as nodes and edges",
	Long: `neomap runs Cypher queries against a Neo4j database and prints the
distinct nodes and relationships they return. It is a raw graph inspector:
results are printed as generic nodes and edges and are not mapped onto
tagged Go types.

Connection settings are read from a YAML file (--config) and the
NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD and NEO4J_DATABASE variables.

Examples:
  # Check that the database is reachable
  neomap verify

  # Dump the graph returned by a query
  neomap graph -q 'MATCH (p:Person)-[r:ACTED_IN]->(m) RETURN p, r, m'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := neomap.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		level, _ := cfg.Level() // validated by LoadConfig
		if verbose {
			level = slog.LevelDebug
			cfg.LogQueries = true
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
		loaded = cfg
		return nil
	},
}

// loaded is the configuration resolved by PersistentPreRunE.
var loaded neomap.Config

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including executed queries")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(graphCmd)
}

// openExecutor connects with the loaded configuration. The caller closes it.
func openExecutor(ctx context.Context) (*neomap.Neo4jExecutor, error) {
	executor, err := neomap.NewNeo4jExecutorFromConfig(loaded, slog.Default())
	if err != nil {
		return nil, err
	}
	if err := executor.Verify(ctx); err != nil {
		executor.Close(ctx)
		return nil, err
	}
	return executor, nil
}
