package neomap

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	r := NewRegistry()

	desc, err := Describe[actorWithRoles](r)
	require.NoError(t, err)

	assert.Equal(t, []string{"Person"}, desc.Labels, "labels are inherited from the embedded struct")
	require.Len(t, desc.Fields, 3)
	assert.Equal(t, PropertyField, desc.Fields[0].Kind)
	assert.Equal(t, "name", desc.Fields[0].Key)
	assert.Equal(t, []int{0, 1}, desc.Fields[0].Index)

	rel := desc.Fields[2]
	assert.Equal(t, RelationshipField, rel.Kind)
	assert.Equal(t, RelationshipSpec{Type: "ACTED_IN", Direction: Outgoing, Cardinality: Many}, rel.Relationship)
	require.NotNil(t, rel.Elem)
	assert.True(t, rel.Elem.RelationshipEntity)
	assert.Equal(t, reflect.TypeFor[movie](), rel.Elem.endpoint().Type)
}

func TestDescribeCardinality(t *testing.T) {
	r := NewRegistry()

	one, err := Describe[actorWithMovie](r)
	require.NoError(t, err)
	assert.Equal(t, One, one.Fields[2].Relationship.Cardinality)

	many, err := Describe[actorWithMovies](r)
	require.NoError(t, err)
	assert.Equal(t, Many, many.Fields[2].Relationship.Cardinality)
}

func TestDescribeRecursiveType(t *testing.T) {
	r := NewRegistry()

	desc, err := Describe[person](r)
	require.NoError(t, err)

	var follows *FieldDescriptor
	for i := range desc.Fields {
		if desc.Fields[i].Name == "Follows" {
			follows = &desc.Fields[i]
		}
	}
	require.NotNil(t, follows)
	assert.Same(t, desc, follows.Elem, "self reference resolves to the same descriptor")
	assert.True(t, follows.shape.ptr)

	for _, f := range desc.Fields {
		assert.NotEqual(t, "Extra", f.Name, "fields tagged - are skipped")
	}
}

func TestDescribeIsMemoized(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	results := make([]*TypeDescriptor, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := Describe[*movieWithStaff](r)
			assert.NoError(t, err)
			results[i] = d
		}()
	}
	wg.Wait()

	for _, d := range results[1:] {
		assert.Same(t, results[0], d)
	}

	// Types reached from the root are published too.
	staffDesc, err := Describe[staff](r)
	require.NoError(t, err)
	assert.Same(t, staffDesc, results[0].Fields[len(results[0].Fields)-1].Elem)
	assert.True(t, staffDesc.Projected)
}

func TestDescribeProjection(t *testing.T) {
	desc, err := Describe[movieWithStaff](NewRegistry())
	require.NoError(t, err)

	f := desc.Fields[len(desc.Fields)-1]
	assert.Equal(t, ProjectionField, f.Kind)
	assert.Equal(t, ProjectionSpec{Name: "staff", Key: "gKey", MatchOn: "Title", matchOnIndex: []int{0, 1}}, f.Projection)
	require.NotNil(t, f.Elem)
}

type noMatchOn struct {
	Value string `neo:"projection:things,key:id,matchOn:Missing"`
}

type halfCorrelated struct {
	Value string `neo:"projection:things,key:id"`
}

type twoTargets struct {
	A movie `neo:"target"`
	B movie `neo:"target"`
}

type badDirection struct {
	M movie `neo:"rel:ACTED_IN,dir:sideways"`
}

type scalarRelationship struct {
	M string `neo:"rel:ACTED_IN"`
}

type doubleMapping struct {
	M string `neo:"property:m,labels"`
}

type unknownOption struct {
	M string `neo:"prop:m"`
}

type labelOnField struct {
	M string `neo:"node:Movie"`
}

type brokenElem struct {
	Items []unknownOption `neo:"rel:HAS"`
}

func TestDescribeErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want error
	}{
		{"not a struct", reflect.TypeFor[int](), ErrNotConstructible},
		{"pointer to pointer", reflect.TypeFor[**movie](), ErrNotConstructible},
		{"map", reflect.TypeFor[map[string]any](), ErrNotConstructible},
		{"unresolved matchOn", reflect.TypeFor[noMatchOn](), ErrUnresolvedMatchOnField},
		{"key without matchOn", reflect.TypeFor[halfCorrelated](), ErrInvalidTag},
		{"two targets", reflect.TypeFor[twoTargets](), ErrInvalidTag},
		{"bad direction", reflect.TypeFor[badDirection](), ErrInvalidDirection},
		{"scalar relationship", reflect.TypeFor[scalarRelationship](), ErrInvalidTag},
		{"two kinds", reflect.TypeFor[doubleMapping](), ErrInvalidTag},
		{"unknown option", reflect.TypeFor[unknownOption](), ErrInvalidTag},
		{"label on a field", reflect.TypeFor[labelOnField](), ErrInvalidTag},
		{"broken related type", reflect.TypeFor[brokenElem](), ErrInvalidTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := r.Describe(tt.typ)
			assert.ErrorIs(t, err, tt.want)

			// A failed build publishes nothing.
			_, cached := r.cache.Load(tt.typ)
			assert.False(t, cached)
		})
	}
}

func TestParseTag(t *testing.T) {
	opts, err := parseTag("rel:FOLLOWS,dir:incoming")
	require.NoError(t, err)
	assert.Equal(t, "FOLLOWS", opts.relType)
	assert.Equal(t, Incoming, opts.direction)

	opts, err = parseTag("rel:FOLLOWS")
	require.NoError(t, err)
	assert.Equal(t, Outgoing, opts.direction, "direction defaults to outgoing")

	opts, err = parseTag("node:Person,node:Actor,projected")
	require.NoError(t, err)
	assert.Equal(t, []string{"Person", "Actor"}, opts.labels)
	assert.True(t, opts.projected)

	_, err = parseTag("property:")
	assert.ErrorIs(t, err, ErrInvalidTag)

	_, err = parseTag("dir:in")
	assert.ErrorIs(t, err, ErrInvalidTag)
}
