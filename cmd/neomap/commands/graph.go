package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neomap"
)

var (
	graphQuery  string
	graphParams []string
	graphWrite  bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Run a query and print its distinct nodes and edges as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if graphQuery == "" {
			return errors.New("--query is required")
		}
		params, err := parseParams(graphParams)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		executor, err := openExecutor(ctx)
		if err != nil {
			return err
		}
		defer executor.Close(ctx)

		run := executor.Read
		if graphWrite {
			run = executor.Write
		}
		result, err := run(ctx, graphQuery, params)
		if err != nil {
			return err
		}

		graph := neomap.BuildGraph(result.Records)
		slog.Debug("graph built", "records", len(result.Records), "nodes", len(graph.Nodes), "edges", len(graph.Edges))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(graph)
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphQuery, "query", "q", "", "Cypher query to run")
	graphCmd.Flags().StringArrayVarP(&graphParams, "param", "p", nil, "query parameter as key=value (repeatable, values are strings)")
	graphCmd.Flags().BoolVar(&graphWrite, "write", false, "run the query in a write transaction")
}

// parseParams turns key=value pairs into query parameters.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
