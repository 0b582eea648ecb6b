package neomap

import (
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// related is an endpoint node paired with the edge that reached it.
type related struct {
	node dbtype.Node
	rel  dbtype.Relationship
}

// endpoints orients rel relative to dir, returning (source, target) ids.
func endpoints(rel dbtype.Relationship, dir Direction) (string, string, error) {
	switch dir {
	case Outgoing:
		return rel.StartElementId, rel.EndElementId, nil
	case Incoming:
		return rel.EndElementId, rel.StartElementId, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}
}

// findRelated returns the nodes reachable from source over spec, keeping
// only endpoints labelled as endpoint. Order follows the record index.
func (m *materializer) findRelated(source dbtype.Node, spec RelationshipSpec, endpoint *TypeDescriptor) ([]related, error) {
	var out []related
	for _, rel := range m.index.Relationships(spec.Type) {
		sourceID, targetID, err := endpoints(rel, spec.Direction)
		if err != nil {
			return nil, err
		}
		if sourceID != source.ElementId {
			continue
		}
		node, ok := m.index.Node(targetID)
		// The same edge type may join different kinds of nodes.
		if !ok || !endpoint.MatchesLabels(node.Labels) {
			continue
		}
		out = append(out, related{node: node, rel: rel})
	}
	return out, nil
}

// bindRelationship fills a RelationshipField of the value built from source.
func (m *materializer) bindRelationship(source dbtype.Node, dst reflect.Value, f *FieldDescriptor, visited path) error {
	matches, err := m.findRelated(source, f.Relationship, f.Elem.endpoint())
	if err != nil {
		return err
	}

	switch f.Relationship.Cardinality {
	case One:
		switch len(matches) {
		case 0:
			return fmt.Errorf("%w: no %s %q edge from %s", ErrMissingRequiredRelationship,
				f.Relationship.Direction, f.Relationship.Type, source.ElementId)
		case 1:
		default:
			return fmt.Errorf("%w: %d %s %q edges from %s", ErrAmbiguousRelationship,
				len(matches), f.Relationship.Direction, f.Relationship.Type, source.ElementId)
		}
		v, err := m.translateRelated(matches[0], f.Elem, visited)
		if err != nil {
			return err
		}
		dst.Set(f.shape.element(v))
	case Many:
		items := make([]reflect.Value, 0, len(matches))
		for _, match := range matches {
			v, err := m.translateRelated(match, f.Elem, visited)
			if err != nil {
				return err
			}
			items = append(items, v)
		}
		dst.Set(f.shape.collect(f.Type, items))
	}
	return nil
}

// translateRelated materializes the endpoint of match, wrapping it in a
// relationship entity when desc reifies the edge.
func (m *materializer) translateRelated(match related, desc *TypeDescriptor, visited path) (reflect.Value, error) {
	endpoint, err := m.materialize(match.node, desc.endpoint(), visited)
	if err != nil {
		return reflect.Value{}, err
	}
	if !desc.RelationshipEntity {
		return endpoint, nil
	}
	return relationshipEntity(match.rel, desc, endpoint)
}

// relationshipEntity builds a *desc.Type holding endpoint in its target field
// and the properties of rel in its property fields.
func relationshipEntity(rel dbtype.Relationship, desc *TypeDescriptor, endpoint reflect.Value) (reflect.Value, error) {
	wrapper := reflect.New(desc.Type)
	inst := wrapper.Elem()
	for i := range desc.Fields {
		f := &desc.Fields[i]
		switch f.Kind {
		case TargetField:
			inst.FieldByIndex(f.Index).Set(f.shape.element(endpoint))
		case PropertyField:
			value, ok := rel.Props[f.Key]
			if !ok {
				continue
			}
			if err := coerceInto(inst.FieldByIndex(f.Index), value); err != nil {
				return reflect.Value{}, fmt.Errorf("%s.%s: %w", desc.Type.Name(), f.Name, err)
			}
		}
	}
	return wrapper, nil
}
