package neomap

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// RecordIndex holds the nodes and relationships of one record, each
// deduplicated by element id and kept in first-seen order. It is built per
// record and never shared between translations.
type RecordIndex struct {
	nodesByID  map[string]dbtype.Node
	nodes      []dbtype.Node
	relsByType map[string][]dbtype.Relationship
	rels       []dbtype.Relationship
	seenRels   map[string]struct{}
}

// NewRecordIndex scans every value of record, descending into lists and
// paths. A nil record yields an empty index.
func NewRecordIndex(record *neo4j.Record) *RecordIndex {
	idx := &RecordIndex{
		nodesByID:  make(map[string]dbtype.Node),
		relsByType: make(map[string][]dbtype.Relationship),
		seenRels:   make(map[string]struct{}),
	}
	if record == nil {
		return idx
	}

	visitor := graphVisitor{node: idx.addNode, relationship: idx.addRelationship}
	for _, value := range record.Values {
		visitor.walk(value)
	}
	return idx
}

func (idx *RecordIndex) addNode(n dbtype.Node) {
	// The same node is commonly returned under several keys; first wins.
	if _, ok := idx.nodesByID[n.ElementId]; ok {
		return
	}
	idx.nodesByID[n.ElementId] = n
	idx.nodes = append(idx.nodes, n)
}

func (idx *RecordIndex) addRelationship(r dbtype.Relationship) {
	if _, ok := idx.seenRels[r.ElementId]; ok {
		return
	}
	idx.seenRels[r.ElementId] = struct{}{}
	idx.relsByType[r.Type] = append(idx.relsByType[r.Type], r)
	idx.rels = append(idx.rels, r)
}

// Node returns the node with the given element id.
func (idx *RecordIndex) Node(id string) (dbtype.Node, bool) {
	n, ok := idx.nodesByID[id]
	return n, ok
}

// Relationships returns the relationships of the given type in first-seen order.
func (idx *RecordIndex) Relationships(relType string) []dbtype.Relationship {
	return idx.relsByType[relType]
}

// Nodes returns every distinct node in first-seen order.
func (idx *RecordIndex) Nodes() []dbtype.Node {
	return idx.nodes
}

// AllRelationships returns every distinct relationship in first-seen order.
func (idx *RecordIndex) AllRelationships() []dbtype.Relationship {
	return idx.rels
}
