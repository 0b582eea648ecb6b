package neomap

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// valueKind classifies the native values a driver record can carry.
type valueKind int

const (
	nullValue valueKind = iota
	scalarValue
	nodeValue
	relationshipValue
	pathValue
	listValue
	mapValue
)

func kindOf(v any) valueKind {
	switch v.(type) {
	case nil:
		return nullValue
	case dbtype.Node:
		return nodeValue
	case dbtype.Relationship:
		return relationshipValue
	case dbtype.Path:
		return pathValue
	case []any:
		return listValue
	case map[string]any:
		return mapValue
	default:
		return scalarValue
	}
}

// isGraphValue reports whether a cell holds graph elements rather than a
// projection: a node, a relationship, a path, or a list whose first element
// is one of those.
func isGraphValue(v any) bool {
	switch kindOf(v) {
	case nodeValue, relationshipValue, pathValue:
		return true
	case listValue:
		list := v.([]any)
		if len(list) == 0 {
			return false
		}
		switch kindOf(list[0]) {
		case nodeValue, relationshipValue, pathValue:
			return true
		}
	}
	return false
}

// graphVisitor receives the graph elements of a cell in cell order.
type graphVisitor struct {
	node         func(dbtype.Node)
	relationship func(dbtype.Relationship)
}

// walk visits the nodes and relationships held by a graph-valued cell.
// Projection cells are ignored.
func (g graphVisitor) walk(v any) {
	switch kindOf(v) {
	case nodeValue:
		if g.node != nil {
			g.node(v.(dbtype.Node))
		}
	case relationshipValue:
		if g.relationship != nil {
			g.relationship(v.(dbtype.Relationship))
		}
	case pathValue:
		p := v.(dbtype.Path)
		for _, n := range p.Nodes {
			g.walk(n)
		}
		for _, r := range p.Relationships {
			g.walk(r)
		}
	case listValue:
		if !isGraphValue(v) {
			return
		}
		for _, item := range v.([]any) {
			g.walk(item)
		}
	}
}
