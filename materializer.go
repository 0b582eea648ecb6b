package neomap

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// path is the set of node ids visited on the current materialization branch.
// It is copied on every descent and never shared between sibling branches.
type path map[string]struct{}

// with returns a fork of p that includes id, and whether id is new to p.
func (p path) with(id string) (path, bool) {
	_, seen := p[id]
	next := make(path, len(p)+1)
	maps.Copy(next, p)
	next[id] = struct{}{}
	return next, !seen
}

// materializer rebuilds typed values from the graph of a single record.
type materializer struct {
	index       *RecordIndex
	projections Projections
}

// findAnchor returns the first node of record, in cell order and list order,
// that carries one of the labels of desc.
func findAnchor(record *neo4j.Record, desc *TypeDescriptor) (dbtype.Node, error) {
	var (
		anchor dbtype.Node
		found  bool
	)
	visitor := graphVisitor{node: func(n dbtype.Node) {
		if !found && desc.MatchesLabels(n.Labels) {
			anchor, found = n, true
		}
	}}
	if record != nil {
		for _, value := range record.Values {
			visitor.walk(value)
			if found {
				return anchor, nil
			}
		}
	}
	return dbtype.Node{}, fmt.Errorf("%w: no node labelled %v for %s", ErrAnchorNotFound, desc.Labels, desc.Type)
}

// materialize builds a new *desc.Type from node. Relationship fields are only
// followed the first time node appears on the branch, which is what stops
// cyclic graphs from recursing forever; a revisit still yields a fresh value
// with its properties and labels set.
func (m *materializer) materialize(node dbtype.Node, desc *TypeDescriptor, visited path) (reflect.Value, error) {
	if desc.Type.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotConstructible, desc.Type)
	}

	visited, firstVisit := visited.with(node.ElementId)
	target := reflect.New(desc.Type)
	inst := target.Elem()

	for i := range desc.Fields {
		f := &desc.Fields[i]
		var err error
		switch f.Kind {
		case LabelsField:
			err = coerceInto(inst.FieldByIndex(f.Index), node.Labels)
		case PropertyField:
			if value, ok := node.Props[f.Key]; ok {
				err = coerceInto(inst.FieldByIndex(f.Index), value)
			}
		case RelationshipField:
			if firstVisit {
				err = m.bindRelationship(node, inst.FieldByIndex(f.Index), f, visited)
			}
		}
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s.%s: %w", desc.Type.Name(), f.Name, err)
		}
	}

	if err := bindProjections(inst, desc, m.projections); err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", desc.Type.Name(), err)
	}
	return target, nil
}
