package neomap

import (
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func newNode(props map[string]any, labels ...string) dbtype.Node {
	if props == nil {
		props = map[string]any{}
	}
	return dbtype.Node{ElementId: uuid.NewString(), Labels: labels, Props: props}
}

func newRel(relType string, from, to dbtype.Node, props map[string]any) dbtype.Relationship {
	if props == nil {
		props = map[string]any{}
	}
	return dbtype.Relationship{
		ElementId:      uuid.NewString(),
		StartElementId: from.ElementId,
		EndElementId:   to.ElementId,
		Type:           relType,
		Props:          props,
	}
}

// record builds a record from alternating key, value pairs.
func record(pairs ...any) *neo4j.Record {
	r := &neo4j.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Keys = append(r.Keys, pairs[i].(string))
		r.Values = append(r.Values, pairs[i+1])
	}
	return r
}

// list builds a list cell. Like the driver, it never yields a nil slice.
func list(items ...any) []any {
	return append([]any{}, items...)
}

// Test models.

type movie struct {
	_ struct{} `neo:"node:Movie"`

	Title    string `neo:"property:title"`
	Released int64  `neo:"property:released"`
}

type actor struct {
	_ struct{} `neo:"node:Person"`

	Name string `neo:"property:name"`
	Born int    `neo:"property:born"`
}

type actorWithMovie struct {
	actor

	Movie movie `neo:"rel:ACTED_IN,dir:out"`
}

type actorWithMovies struct {
	actor

	Movies []movie `neo:"rel:ACTED_IN,dir:out"`
}

type actingRole struct {
	Roles []string `neo:"property:roles"`
	Movie *movie   `neo:"target"`
}

type actorWithRoles struct {
	actor

	Roles []actingRole `neo:"rel:ACTED_IN"`
}

type person struct {
	_ struct{} `neo:"node:Person"`

	Name      string           `neo:"property:name"`
	Labels    map[string]bool  `neo:"labels"`
	Follows   []*person        `neo:"rel:FOLLOWS,dir:out"`
	Followers []person         `neo:"rel:FOLLOWS,dir:in"`
	Movies    []movieWithCast  `neo:"rel:ACTED_IN,dir:out"`
	Extra     map[string]int64 `neo:"-"`
}

type movieWithCast struct {
	movie

	Cast []person `neo:"rel:ACTED_IN,dir:in"`
}

type projectedPerson struct {
	_ struct{} `neo:"projected"`

	Name string `neo:"property:name"`
	Born int64  `neo:"property:born"`
}

type nested struct {
	_ struct{} `neo:"projected"`

	Example string `neo:"property:example"`
}

type staff struct {
	_ struct{} `neo:"projected"`

	Key       string             `neo:"property:gKey"`
	Actors    []projectedPerson  `neo:"projection:actors"`
	Directors [2]projectedPerson `neo:"projection:directors"`
	Missing   []projectedPerson  `neo:"projection:missing"`
	Nested    *nested            `neo:"projection:nested"`
}

type movieWithStaff struct {
	movie

	Staff staff `neo:"projection:staff,key:gKey,matchOn:Title"`
}

type feels struct {
	_ struct{} `neo:"projected"`

	Feels string `neo:"property:feels"`
}

type actorWithProjections struct {
	actor

	Movies     []movieWithStaff  `neo:"rel:ACTED_IN"`
	Feels      feels             `neo:"projection:feels"`
	Surprise   int64             `neo:"projection:surprise"`
	Dictionary map[string]string `neo:"projection:dictionary"`
	Anything   map[string]any    `neo:"projection:anything"`
}

type taggedPerson struct {
	_ struct{} `neo:"node:Person"`

	Name    string         `neo:"property:name"`
	Labels  []string       `neo:"labels"`
	Tags    []any          `neo:"property:tags"`
	Extra   map[string]any `neo:"property:extra"`
	Follows []taggedPerson `neo:"rel:FOLLOWS"`
}
