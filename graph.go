package neomap

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphNode represents a generic node from a Neo4j graph.
// It is a domain-agnostic representation, capturing the essential components of any node:
// its unique internal ID, its labels, and its properties. This struct is designed to be
// easily serialized to JSON.
type GraphNode struct {
	// ID is the unique internal identifier assigned by Neo4j to the node (ElementId).
	ID string `json:"id"`

	// Labels is a slice of strings containing all the labels attached to the node (e.g., ["User", "Person"]).
	Labels []string `json:"labels"`

	// Properties is a map containing the key-value properties of the node.
	Properties map[string]any `json:"properties"`
}

// Edge represents a generic relationship (or edge) between two nodes in a Neo4j graph.
type Edge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphResult is a top-level container for a generic graph query result.
// It is composed of a list of nodes and a list of edges, which is a standard
// format consumed by most frontend graph visualization libraries (e.g., D3.js, Cytoscape.js).
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}

// BuildGraph collects the distinct nodes and relationships of records. Each
// record is indexed on its own and the results are merged, so an element
// returned in several rows appears once, at its first position.
func BuildGraph(records []*neo4j.Record) *GraphResult {
	graph := &GraphResult{
		Nodes: make([]*GraphNode, 0),
		Edges: make([]*Edge, 0),
	}
	seenNodeIDs := make(map[string]bool)
	seenEdgeIDs := make(map[string]bool)

	for _, record := range records {
		index := NewRecordIndex(record)

		for _, n := range index.Nodes() {
			if seenNodeIDs[n.ElementId] {
				continue
			}
			seenNodeIDs[n.ElementId] = true
			graph.Nodes = append(graph.Nodes, &GraphNode{
				ID:         n.ElementId,
				Labels:     n.Labels,
				Properties: n.Props,
			})
		}

		for _, r := range index.AllRelationships() {
			if seenEdgeIDs[r.ElementId] {
				continue
			}
			seenEdgeIDs[r.ElementId] = true
			graph.Edges = append(graph.Edges, &Edge{
				ID:         r.ElementId,
				Source:     r.StartElementId,
				Target:     r.EndElementId,
				Type:       r.Type,
				Properties: r.Props,
			})
		}
	}
	return graph
}
