package neomap

import (
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Mapper is the central entry point of the query layer. It runs queries
// through a DBRunner and hands the records to a Translator.
type Mapper struct {
	runner     DBRunner
	translator *Translator
}

// NewMapper creates a Mapper. Options configure its Translator.
func NewMapper(runner DBRunner, opts ...Option) *Mapper {
	return &Mapper{runner: runner, translator: NewTranslator(opts...)}
}

// Translator returns the translator used by m.
func (m *Mapper) Translator() *Translator {
	return m.translator
}

// RepositoryFor is a generic function that creates and returns a repository
// for a specific struct type T, managed by the given Mapper.
func RepositoryFor[T any](m *Mapper) (*Repository[T], error) {
	return NewRepository[T](m)
}

// ReadAs runs query in a read transaction and translates every record into a T.
func ReadAs[T any](ctx context.Context, m *Mapper, query string, params map[string]any) ([]T, error) {
	result, err := m.runner.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return Translate[T](m.translator, result.Records)
}

// WriteAs runs query in a write transaction and translates every record into a T.
func WriteAs[T any](ctx context.Context, m *Mapper, query string, params map[string]any) ([]T, error) {
	result, err := m.runner.Write(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return Translate[T](m.translator, result.Records)
}

// Write runs query in a write transaction and discards its records.
func (m *Mapper) Write(ctx context.Context, query string, params map[string]any) error {
	_, err := m.runner.Write(ctx, query, params)
	return err
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and maps the result
// into a generic graph structure composed of nodes and edges.
//
// This method is domain-agnostic; it does not need to know about specific Go structs.
// The caller is responsible for constructing a valid query via the QueryBuilder, including
// a RETURN clause that specifies which nodes and relationships should be included in the
// final graph. For example, `RETURN u, r, p`.
//
// Returns:
//   - A pointer to a GraphResult containing the de-duplicated nodes and edges from the query.
//   - An ErrNotFound error if the query executes successfully but returns zero records.
//   - Any other error encountered during query building or execution.
func (m *Mapper) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*GraphResult, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	eagerResult, err := m.runner.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}
	return BuildGraph(eagerResult.Records), nil
}
