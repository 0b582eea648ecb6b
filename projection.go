package neomap

import (
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Projections maps the names of a record's non-graph cells to their values.
type Projections map[string]any

// ExtractProjections collects every cell of record that holds neither graph
// elements nor a list of them.
func ExtractProjections(record *neo4j.Record) (Projections, error) {
	projections := make(Projections)
	if record == nil {
		return projections, nil
	}
	for i, value := range record.Values {
		if isGraphValue(value) {
			continue
		}
		var name string
		if i < len(record.Keys) {
			name = record.Keys[i]
		}
		if _, dup := projections[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProjectionName, name)
		}
		projections[name] = value
	}
	return projections, nil
}

// bindProjections fills the ProjectionFields of inst from source. For graph
// values source is the record's projection map; for projected entities it is
// the map the entity is being built from.
func bindProjections(inst reflect.Value, desc *TypeDescriptor, source map[string]any) error {
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if f.Kind != ProjectionField {
			continue
		}
		value, err := lookupProjection(inst, f, source)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if value == nil {
			continue
		}
		if err := setProjection(inst.FieldByIndex(f.Index), f, value); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

// lookupProjection resolves the value a projection field refers to. A
// correlated projection selects the list element whose key entry equals the
// owner's matchOn field, both compared as strings. No match yields nil.
func lookupProjection(owner reflect.Value, f *FieldDescriptor, source map[string]any) (any, error) {
	spec := f.Projection
	raw, ok := source[spec.Name]
	if !ok || spec.Key == "" {
		return raw, nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a list of maps to match on %s", ErrMalformedProjection, spec.Name, spec.MatchOn)
	}
	field, err := owner.FieldByIndexErr(spec.matchOnIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnresolvedMatchOnField, spec.MatchOn, err)
	}
	want := stringify(field)

	entries := make([]map[string]any, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q element %d is %T, not a map", ErrMalformedProjection, spec.Name, i, item)
		}
		entries = append(entries, entry)
	}
	for _, entry := range entries {
		if got, ok := entry[spec.Key]; ok && got != nil && fmt.Sprint(got) == want {
			return entry, nil
		}
	}
	return nil, nil
}

func stringify(v reflect.Value) string {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return fmt.Sprint(v.Interface())
}

// setProjection stores value in dst, building projected entities from maps
// and coercing everything else.
func setProjection(dst reflect.Value, f *FieldDescriptor, value any) error {
	if f.Elem == nil {
		return coerceInto(dst, value)
	}

	if f.shape.container == single {
		entry, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s needs a map, got %T", ErrMalformedProjection, f.Elem.Type, value)
		}
		v, err := buildProjectedEntity(f.Elem, entry)
		if err != nil {
			return err
		}
		dst.Set(f.shape.element(v))
		return nil
	}

	list, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%w: %s needs a list of maps, got %T", ErrMalformedProjection, f.Type, value)
	}
	items := make([]reflect.Value, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: element %d is %T, not a map", ErrMalformedProjection, i, item)
		}
		v, err := buildProjectedEntity(f.Elem, entry)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, v)
	}
	dst.Set(f.shape.collect(f.Type, items))
	return nil
}

// buildProjectedEntity builds a *desc.Type from a map. Property fields read
// the map by key; projection fields resolve inside the same map, so nesting
// may go arbitrarily deep.
func buildProjectedEntity(desc *TypeDescriptor, source map[string]any) (reflect.Value, error) {
	target := reflect.New(desc.Type)
	inst := target.Elem()

	for i := range desc.Fields {
		f := &desc.Fields[i]
		if f.Kind != PropertyField {
			continue
		}
		value, ok := source[f.Key]
		if !ok {
			continue
		}
		if err := coerceInto(inst.FieldByIndex(f.Index), value); err != nil {
			return reflect.Value{}, fmt.Errorf("%s.%s: %w", desc.Type.Name(), f.Name, err)
		}
	}

	if err := bindProjections(inst, desc, source); err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", desc.Type.Name(), err)
	}
	return target, nil
}
