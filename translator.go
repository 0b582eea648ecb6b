package neomap

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"
)

// Translator turns driver records into typed values. It owns the descriptor
// registry; everything else it touches is per record, so a Translator may be
// used from many goroutines at once.
type Translator struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithRegistry shares a descriptor registry between translators.
func WithRegistry(r *Registry) Option {
	return func(t *Translator) { t.registry = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) { t.logger = l }
}

// NewTranslator creates a Translator with its own registry.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = NewRegistry()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// Registry returns the descriptor registry of t.
func (t *Translator) Registry() *Registry {
	return t.registry
}

// Translate converts each record into a T, preserving order. T is a struct
// with `neo` tags, or a pointer to one. The first failing record aborts the
// whole call.
func Translate[T any](tr *Translator, records []*neo4j.Record) ([]T, error) {
	desc, err := tr.registry.Describe(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for i, record := range records {
		v, err := tr.translateRecord(record, desc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, as[T](v))
	}
	tr.logger.Debug("translated records", "type", desc.Type.String(), "count", len(out))
	return out, nil
}

// TranslateConcurrent is Translate with records spread over at most workers
// goroutines. Output order matches input order.
func TranslateConcurrent[T any](ctx context.Context, tr *Translator, records []*neo4j.Record, workers int) ([]T, error) {
	desc, err := tr.registry.Describe(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	out := make([]T, len(records))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, record := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := tr.translateRecord(record, desc)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = as[T](v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tr.logger.Debug("translated records", "type", desc.Type.String(), "count", len(out), "workers", workers)
	return out, nil
}

// translateRecord indexes record, extracts its projections, finds the anchor
// for desc and materializes it.
func (t *Translator) translateRecord(record *neo4j.Record, desc *TypeDescriptor) (reflect.Value, error) {
	index := NewRecordIndex(record)
	projections, err := ExtractProjections(record)
	if err != nil {
		return reflect.Value{}, err
	}
	anchor, err := findAnchor(record, desc)
	if err != nil {
		return reflect.Value{}, err
	}
	m := &materializer{index: index, projections: projections}
	return m.materialize(anchor, desc, path{})
}

// as converts a *struct produced by the materializer into T.
func as[T any](ptr reflect.Value) T {
	if reflect.TypeFor[T]().Kind() == reflect.Pointer {
		return ptr.Interface().(T)
	}
	return ptr.Elem().Interface().(T)
}
