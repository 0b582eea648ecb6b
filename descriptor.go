package neomap

import (
	"fmt"
	"reflect"
	"sync"
)

// FieldKind tells the materializer where a field takes its value from.
type FieldKind int

const (
	// PropertyField reads a node, relationship or projection map entry by key.
	PropertyField FieldKind = iota + 1
	// LabelsField receives the labels of the node.
	LabelsField
	// RelationshipField receives the node(s) reached over an edge type.
	RelationshipField
	// TargetField holds the endpoint entity of a relationship entity.
	TargetField
	// ProjectionField reads a non-graph value of the row.
	ProjectionField
)

// Cardinality is the number of related entities a relationship field holds.
type Cardinality int

const (
	// One requires exactly one related entity.
	One Cardinality = iota + 1
	// Many accepts any number of related entities.
	Many
)

// RelationshipSpec describes the edge a RelationshipField follows.
type RelationshipSpec struct {
	Type        string
	Direction   Direction
	Cardinality Cardinality
}

// ProjectionSpec describes where a ProjectionField finds its value. Key and
// MatchOn are either both empty (direct) or both set (correlated).
type ProjectionSpec struct {
	Name    string
	Key     string
	MatchOn string

	matchOnIndex []int
}

// FieldDescriptor is the mapping of one struct field.
type FieldDescriptor struct {
	Name  string
	Index []int
	Type  reflect.Type
	Kind  FieldKind

	// Key is the property key of a PropertyField.
	Key          string
	Relationship RelationshipSpec
	Projection   ProjectionSpec

	// Elem is the descriptor of the struct a RelationshipField, TargetField
	// or ProjectionField holds, nil for scalar projections.
	Elem  *TypeDescriptor
	shape shape
}

// TypeDescriptor is the mapping of a struct type, derived once from its `neo`
// tags. It is immutable after construction and safe for concurrent use.
type TypeDescriptor struct {
	Type   reflect.Type
	Labels []string
	Fields []FieldDescriptor

	// Projected marks a type that is only ever built from projection maps.
	Projected bool
	// RelationshipEntity marks a type that reifies an edge; it has exactly
	// one TargetField.
	RelationshipEntity bool

	labelSet map[string]struct{}
	target   int
}

// MatchesLabels reports whether any of labels is declared by the type.
func (d *TypeDescriptor) MatchesLabels(labels []string) bool {
	for _, label := range labels {
		if _, ok := d.labelSet[label]; ok {
			return true
		}
	}
	return false
}

// endpoint returns the entity a relationship entity points at, or d itself.
func (d *TypeDescriptor) endpoint() *TypeDescriptor {
	if !d.RelationshipEntity {
		return d
	}
	return d.Fields[d.target].Elem
}

func (d *TypeDescriptor) addLabel(label string) {
	if _, ok := d.labelSet[label]; ok {
		return
	}
	d.labelSet[label] = struct{}{}
	d.Labels = append(d.Labels, label)
}

// Registry memoizes type descriptors. Builds are serialized; lookups are
// lock-free once a descriptor has been published.
type Registry struct {
	mu    sync.Mutex
	cache sync.Map // reflect.Type -> *TypeDescriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Describe returns the descriptor of t, building it and every type reachable
// from it on first use. Pointer types describe their element type.
func (r *Registry) Describe(t reflect.Type) (*TypeDescriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotConstructible)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := r.cache.Load(t); ok {
		return cached.(*TypeDescriptor), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is a %s, not a struct", ErrNotConstructible, t, t.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache.Load(t); ok {
		return cached.(*TypeDescriptor), nil
	}

	b := &descriptorBuilder{registry: r, pending: make(map[reflect.Type]*TypeDescriptor)}
	desc, err := b.build(t)
	if err != nil {
		return nil, err
	}
	// Publish the whole closure at once so readers never see a partial build.
	for typ, d := range b.pending {
		r.cache.Store(typ, d)
	}
	return desc, nil
}

// Describe is a generic convenience wrapper around Registry.Describe.
func Describe[T any](r *Registry) (*TypeDescriptor, error) {
	return r.Describe(reflect.TypeFor[T]())
}

type descriptorBuilder struct {
	registry *Registry
	pending  map[reflect.Type]*TypeDescriptor
}

func (b *descriptorBuilder) build(t reflect.Type) (*TypeDescriptor, error) {
	if cached, ok := b.registry.cache.Load(t); ok {
		return cached.(*TypeDescriptor), nil
	}
	if d, ok := b.pending[t]; ok {
		// Recursive types resolve to the descriptor under construction.
		return d, nil
	}

	desc := &TypeDescriptor{Type: t, labelSet: make(map[string]struct{}), target: -1}
	b.pending[t] = desc

	if err := b.collect(desc, t, nil); err != nil {
		return nil, err
	}
	if err := b.finish(desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// collect walks the fields of t, flattening anonymous embedded structs.
func (b *descriptorBuilder) collect(desc *TypeDescriptor, t reflect.Type, prefix []int) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, tagged := field.Tag.Lookup(tagName)
		index := append(append([]int(nil), prefix...), i)

		if field.Name == "_" {
			if err := b.marker(desc, tag); err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
			continue
		}
		if tag == "-" {
			continue
		}
		if field.Anonymous && !tagged && field.Type.Kind() == reflect.Struct {
			if err := b.collect(desc, field.Type, index); err != nil {
				return err
			}
			continue
		}
		if !field.IsExported() || !tagged {
			continue
		}

		fd, err := b.field(field, index, tag)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		desc.Fields = append(desc.Fields, fd)
	}
	return nil
}

func (b *descriptorBuilder) marker(desc *TypeDescriptor, tag string) error {
	if tag == "" {
		return nil
	}
	opts, err := parseTag(tag)
	if err != nil {
		return err
	}
	if opts.kinds() > 0 {
		return fmt.Errorf("%w: marker field accepts only node and projected", ErrInvalidTag)
	}
	for _, label := range opts.labels {
		desc.addLabel(label)
	}
	if opts.projected {
		desc.Projected = true
	}
	return nil
}

func (b *descriptorBuilder) field(field reflect.StructField, index []int, tag string) (FieldDescriptor, error) {
	fd := FieldDescriptor{Name: field.Name, Index: index, Type: field.Type}

	opts, err := parseTag(tag)
	if err != nil {
		return fd, err
	}
	if len(opts.labels) > 0 || opts.projected {
		return fd, fmt.Errorf("%w: node and projected belong on the blank marker field", ErrInvalidTag)
	}

	switch {
	case opts.property != "":
		fd.Kind = PropertyField
		fd.Key = opts.property
	case opts.labelsField:
		fd.Kind = LabelsField
	case opts.relType != "":
		s, ok := shapeOf(field.Type)
		if !ok {
			return fd, fmt.Errorf("%w: relationship field must be a struct, pointer or collection of structs, got %s", ErrInvalidTag, field.Type)
		}
		fd.Kind = RelationshipField
		fd.shape = s
		fd.Relationship = RelationshipSpec{Type: opts.relType, Direction: opts.direction, Cardinality: One}
		if s.container != single {
			fd.Relationship.Cardinality = Many
		}
		if fd.Elem, err = b.build(s.elem); err != nil {
			return fd, err
		}
	case opts.target:
		s, ok := shapeOf(field.Type)
		if !ok || s.container != single {
			return fd, fmt.Errorf("%w: target field must be a struct or pointer to struct, got %s", ErrInvalidTag, field.Type)
		}
		fd.Kind = TargetField
		fd.shape = s
		if fd.Elem, err = b.build(s.elem); err != nil {
			return fd, err
		}
	case opts.projection != "":
		fd.Kind = ProjectionField
		fd.Projection = ProjectionSpec{Name: opts.projection, Key: opts.key, MatchOn: opts.matchOn}
		if s, ok := shapeOf(field.Type); ok {
			elem, err := b.build(s.elem)
			if err != nil {
				return fd, err
			}
			if elem.Projected {
				fd.Elem = elem
				fd.shape = s
			}
		}
	default:
		return fd, fmt.Errorf("%w: %q selects no mapping", ErrInvalidTag, tag)
	}
	return fd, nil
}

// finish validates the cross-field rules of a fully collected type.
func (b *descriptorBuilder) finish(desc *TypeDescriptor) error {
	for i := range desc.Fields {
		f := &desc.Fields[i]
		switch f.Kind {
		case TargetField:
			if desc.target >= 0 {
				return fmt.Errorf("%w: %s has more than one target field", ErrInvalidTag, desc.Type)
			}
			desc.target = i
			desc.RelationshipEntity = true
		case ProjectionField:
			if f.Projection.MatchOn == "" {
				continue
			}
			sf, ok := desc.Type.FieldByName(f.Projection.MatchOn)
			if !ok {
				return fmt.Errorf("%w: %s has no field %q for projection %q",
					ErrUnresolvedMatchOnField, desc.Type, f.Projection.MatchOn, f.Projection.Name)
			}
			f.Projection.matchOnIndex = sf.Index
		}
	}
	return nil
}

type container int

const (
	single container = iota
	sliceOf
	arrayOf
)

// shape is how a field wraps the struct it holds: directly, through a
// pointer, or as elements of a slice or array.
type shape struct {
	container container
	ptr       bool
	elem      reflect.Type
}

func shapeOf(t reflect.Type) (shape, bool) {
	s := shape{container: single}
	switch t.Kind() {
	case reflect.Slice:
		s.container = sliceOf
		t = t.Elem()
	case reflect.Array:
		s.container = arrayOf
		t = t.Elem()
	}
	if t.Kind() == reflect.Pointer {
		s.ptr = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return s, false
	}
	s.elem = t
	return s, true
}

// element converts a freshly allocated *elem into the field's element type.
func (s shape) element(ptr reflect.Value) reflect.Value {
	if s.ptr {
		return ptr
	}
	return ptr.Elem()
}

// collect assembles items into a value of the collection type t. Arrays keep
// at most their length.
func (s shape) collect(t reflect.Type, items []reflect.Value) reflect.Value {
	if s.container == arrayOf {
		out := reflect.New(t).Elem()
		for i := 0; i < len(items) && i < t.Len(); i++ {
			out.Index(i).Set(s.element(items[i]))
		}
		return out
	}
	out := reflect.MakeSlice(t, 0, len(items))
	for _, item := range items {
		out = reflect.Append(out, s.element(item))
	}
	return out
}
