package neomap

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProjections(t *testing.T) {
	tom := newNode(map[string]any{"name": "Tom Hanks"}, "Person")

	rec := record(
		"a", tom,
		"others", list(tom),
		"title", "Big",
		"empty", list(),
		"missing", nil,
		"staff", list(map[string]any{"gKey": "M1"}),
	)
	projections, err := ExtractProjections(rec)
	require.NoError(t, err)

	assert.Equal(t, Projections{
		"title":   "Big",
		"empty":   []any{},
		"missing": nil,
		"staff":   []any{map[string]any{"gKey": "M1"}},
	}, projections)
}

func TestExtractProjectionsDuplicateName(t *testing.T) {
	_, err := ExtractProjections(record("x", int64(1), "x", int64(2)))
	assert.ErrorIs(t, err, ErrDuplicateProjectionName)

	// Graph cells never collide with projections.
	tom := newNode(nil, "Person")
	_, err = ExtractProjections(record("x", tom, "x", int64(2)))
	assert.NoError(t, err)
}

func TestExtractProjectionsNilRecord(t *testing.T) {
	projections, err := ExtractProjections(nil)
	require.NoError(t, err)
	assert.Empty(t, projections)
}

func staffEntry(key string, actors ...string) map[string]any {
	people := make([]any, 0, len(actors))
	for _, name := range actors {
		people = append(people, map[string]any{"name": name, "born": int64(1956)})
	}
	return map[string]any{
		"gKey":      key,
		"actors":    people,
		"directors": list(map[string]any{"name": "D1"}, map[string]any{"name": "D2"}, map[string]any{"name": "D3"}),
		"nested":    map[string]any{"example": "deep " + key},
	}
}

func TestCorrelatedProjection(t *testing.T) {
	desc, err := Describe[movieWithStaff](NewRegistry())
	require.NoError(t, err)

	owner := &movieWithStaff{}
	owner.Title = "M1"

	source := map[string]any{"staff": list(staffEntry("M2", "Meg Ryan"), staffEntry("M1", "Tom Hanks"))}
	require.NoError(t, bindProjections(reflect.ValueOf(owner).Elem(), desc, source))

	assert.Equal(t, "M1", owner.Staff.Key)
	require.Len(t, owner.Staff.Actors, 1)
	assert.Equal(t, projectedPerson{Name: "Tom Hanks", Born: 1956}, owner.Staff.Actors[0])
	assert.Equal(t, "D1", owner.Staff.Directors[0].Name)
	assert.Equal(t, "D2", owner.Staff.Directors[1].Name, "fixed-size collections keep their length")
	assert.Nil(t, owner.Staff.Missing)
	require.NotNil(t, owner.Staff.Nested)
	assert.Equal(t, "deep M1", owner.Staff.Nested.Example)
}

func TestCorrelatedProjectionNoMatch(t *testing.T) {
	desc, err := Describe[movieWithStaff](NewRegistry())
	require.NoError(t, err)

	var m movieWithStaff
	m.Title = "M3"
	source := map[string]any{"staff": list(staffEntry("M1"), staffEntry("M2"))}
	require.NoError(t, bindProjections(reflect.ValueOf(&m).Elem(), desc, source))
	assert.Zero(t, m.Staff)
}

type numberedMovie struct {
	_ struct{} `neo:"node:Movie"`

	ID    int64             `neo:"property:id"`
	Award map[string]string `neo:"projection:awards,key:movieId,matchOn:ID"`
}

func TestCorrelatedProjectionComparesAsStrings(t *testing.T) {
	desc, err := Describe[numberedMovie](NewRegistry())
	require.NoError(t, err)

	m := numberedMovie{ID: 7}
	source := map[string]any{"awards": list(
		map[string]any{"movieId": "7", "name": "Oscar"},
		map[string]any{"movieId": int64(8), "name": "Bafta"},
	)}
	require.NoError(t, bindProjections(reflect.ValueOf(&m).Elem(), desc, source))
	assert.Equal(t, map[string]string{"movieId": "7", "name": "Oscar"}, m.Award)
}

func TestProjectionErrors(t *testing.T) {
	desc, err := Describe[movieWithStaff](NewRegistry())
	require.NoError(t, err)
	withFeels, err := Describe[actorWithProjections](NewRegistry())
	require.NoError(t, err)

	tests := []struct {
		name   string
		desc   *TypeDescriptor
		source map[string]any
	}{
		{"correlated source is not a list", desc, map[string]any{"staff": "M1"}},
		{"correlated element is not a map", desc, map[string]any{"staff": list("M1")}},
		{"non-map after the matching element", desc, map[string]any{"staff": list(staffEntry(""), "junk")}},
		{"projected entity from a scalar", withFeels, map[string]any{"feels": "happy"}},
		{"nested collection is not a list", desc, map[string]any{"staff": list(map[string]any{"gKey": "", "actors": "all"})}},
		{"nested element is not a map", desc, map[string]any{"staff": list(map[string]any{"gKey": "", "actors": list("Tom")})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := reflect.New(tt.desc.Type).Elem()
			err := bindProjections(inst, tt.desc, tt.source)
			assert.ErrorIs(t, err, ErrMalformedProjection)
		})
	}
}

func TestDirectProjections(t *testing.T) {
	desc, err := Describe[actorWithProjections](NewRegistry())
	require.NoError(t, err)

	var a actorWithProjections
	source := Projections{
		"feels":      map[string]any{"feels": "happy"},
		"surprise":   int64(42),
		"dictionary": map[string]any{"a": "b"},
		"anything":   map[string]any{"n": int64(1), "l": list("x")},
	}
	require.NoError(t, bindProjections(reflect.ValueOf(&a).Elem(), desc, source))

	assert.Equal(t, feels{Feels: "happy"}, a.Feels)
	assert.Equal(t, int64(42), a.Surprise)
	assert.Equal(t, map[string]string{"a": "b"}, a.Dictionary)
	assert.Equal(t, map[string]any{"n": int64(1), "l": []any{"x"}}, a.Anything)
}
