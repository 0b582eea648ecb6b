package neomap

import (
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Repository provides typed read access to the nodes of one entity type T.
// Queries are built with gocypher and their records translated into T.
type Repository[T any] struct {
	mapper *Mapper
	desc   *TypeDescriptor
}

// NewRepository creates a new generic repository for the type T.
// It describes T up front so tag errors surface here rather than on the first query.
//
// Returns:
//
//	A new Repository instance, or an error if T cannot be described or
//	declares no node label.
func NewRepository[T any](m *Mapper) (*Repository[T], error) {
	desc, err := Describe[T](m.translator.Registry())
	if err != nil {
		return nil, err
	}
	if len(desc.Labels) == 0 {
		return nil, fmt.Errorf("%w: %s declares no node label", ErrInvalidTag, desc.Type)
	}
	return &Repository[T]{mapper: m, desc: desc}, nil
}

// Label returns the node label the repository matches on.
func (r *Repository[T]) Label() string {
	return r.desc.Labels[0]
}

// FindAll returns every node carrying the entity's primary label.
// Relationship fields are only populated by queries that return the edges,
// so FindAll suits entities without required relationships.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.Label())).
		Return("n")
	return r.Find(ctx, qb)
}

// FindByProperty returns the nodes whose property key equals value.
func (r *Repository[T]) FindByProperty(ctx context.Context, key string, value any) ([]T, error) {
	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.Label()).WithProperties(map[string]any{key: value})).
		Return("n")
	return r.Find(ctx, qb)
}

// Find executes a custom query and translates every record into T.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - qb: A configured query builder; its RETURN clause must include a node
//     carrying one of T's labels, plus any edges T's relationship fields follow.
func (r *Repository[T]) Find(ctx context.Context, qb *gocypher.QueryBuilder) ([]T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	return ReadAs[T](ctx, r.mapper, query, params)
}

// FindOne executes a query expected to return exactly one record.
//
// Returns:
//
//	The translated entity, ErrNotFound when the query returns no records, or
//	an error when it returns more than one.
func (r *Repository[T]) FindOne(ctx context.Context, qb *gocypher.QueryBuilder) (*T, error) {
	results, err := r.Find(ctx, qb)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	if len(results) > 1 {
		// This indicates a data integrity issue or a query that is too broad.
		return nil, fmt.Errorf("expected 1 record but found %d", len(results))
	}
	return &results[0], nil
}
