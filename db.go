// Package neomap maps Neo4j query results onto tagged Go structs. Nodes,
// relationships and projected values of each record are rebuilt into nested,
// cycle-safe object graphs, and a thin wrapper around the official Neo4j Go
// driver feeds records into the translator.
package neomap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Read executes a query routed to readers and returns a fully-buffered result.
	Read(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
	// Write executes a query routed to writers and returns a fully-buffered result.
	Write(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

//---

// Neo4jExecutor is a concrete implementation of the DBRunner interface that uses the
// official Neo4j Go driver. It manages the driver instance and the target database name.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string

	logger *slog.Logger
}

// NewNeo4jExecutor creates and initializes a new Neo4jExecutor.
// It establishes a connection driver with the provided credentials.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username: The username for authentication.
//   - password: The password for authentication.
//   - dbName: The name of the database to connect to (e.g., "neo4j").
//
// Returns:
//
//	A pointer to the newly created Neo4jExecutor or an error if the driver creation fails.
func NewNeo4jExecutor(uri, username, password, dbName string) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName, logger: slog.Default()}, nil
}

// NewNeo4jExecutorFromConfig creates an executor from cfg. Queries are logged
// at debug level when cfg.LogQueries is set.
func NewNeo4jExecutorFromConfig(cfg Config, logger *slog.Logger) (*Neo4jExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := NewNeo4jExecutor(cfg.URI, cfg.Username, cfg.Password, cfg.Database)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		e.logger = logger
	}
	if !cfg.LogQueries {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Verify checks the connectivity to the Neo4j database.
//
// Returns:
//
//	An error if the connection cannot be established.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver and its connection pool.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Read executes a Cypher query in a read transaction routed to reader members
// of the cluster.
func (e *Neo4jExecutor) Read(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return e.run(ctx, query, params, neo4j.ExecuteQueryWithReadersRouting())
}

// Write executes a Cypher query in a write transaction.
func (e *Neo4jExecutor) Write(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	return e.run(ctx, query, params, neo4j.ExecuteQueryWithWritersRouting())
}

// run uses ExecuteQuery, which handles session and transaction management
// (including retries of transient failures) automatically.
func (e *Neo4jExecutor) run(ctx context.Context, query string, params map[string]any, routing neo4j.ExecuteQueryConfigurationOption) (*neo4j.EagerResult, error) {
	e.logger.DebugContext(ctx, "executing query", "db", e.DBName, "query", query, "params", len(params))

	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer, // Buffers all results in memory before returning.
		neo4j.ExecuteQueryWithDatabase(e.DBName),
		routing,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	e.logger.DebugContext(ctx, "query complete", "db", e.DBName, "records", len(result.Records))
	return result, nil
}
