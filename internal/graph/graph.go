package graph

// Position is the editor placement of a node. It participates in the source
// hash (it is part of the authored document) but is dropped during lowering.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single node of an authored agent graph.
//
// Type holds the tag exactly as authored; use CanonicalType for any semantic
// decision so that surface aliases never influence validation or lowering.
type Node struct {
	ID            string            `json:"id"`
	Type          NodeType          `json:"type"`
	Position      Position          `json:"position"`
	Label         string            `json:"label,omitempty"`
	Config        map[string]any    `json:"config,omitempty"`
	Data          map[string]any    `json:"data,omitempty"`
	InputMappings map[string]string `json:"input_mappings,omitempty"`
}

// CanonicalType returns the node's canonical type tag.
func (n *Node) CanonicalType() NodeType {
	return Normalize(string(n.Type))
}

// EdgeType distinguishes control-flow edges from data edges.
type EdgeType string

// Edge types. An empty type is treated as control.
const (
	EdgeControl EdgeType = "control"
	EdgeData    EdgeType = "data"
)

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Type         EdgeType `json:"type,omitempty"`
	SourceHandle string   `json:"source_handle,omitempty"`
	TargetHandle string   `json:"target_handle,omitempty"`
	Label        string   `json:"label,omitempty"`
	Condition    string   `json:"condition,omitempty"`
}

// CanonicalType returns the edge type, defaulting empty to control.
func (e *Edge) CanonicalType() EdgeType {
	if e.Type == "" {
		return EdgeControl
	}
	return e.Type
}

// Graph is an authored agent graph. SpecVersion is the DSL version tag;
// empty means "1.0". Graphs are immutable inputs to the compiler.
type Graph struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	SpecVersion string `json:"spec_version,omitempty"`
}

// EffectiveSpecVersion returns SpecVersion with the "1.0" default applied.
func (g *Graph) EffectiveSpecVersion() string {
	if g.SpecVersion == "" {
		return "1.0"
	}
	return g.SpecVersion
}

// Node returns the node with the given id, if present.
// The returned copy is safe against slice reallocation; note that Config,
// Data, and InputMappings still alias the source maps and must not be
// mutated.
func (g *Graph) Node(id string) (Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return g.Nodes[i], true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodesOfType returns all nodes whose canonical type equals t, in authored
// order.
func (g *Graph) NodesOfType(t NodeType) []Node {
	var out []Node
	for i := range g.Nodes {
		if g.Nodes[i].CanonicalType() == t {
			out = append(out, g.Nodes[i])
		}
	}
	return out
}

// StartNodes returns all start-type nodes in authored order.
func (g *Graph) StartNodes() []Node {
	return g.NodesOfType(TypeStart)
}

// EndNodes returns all end-type nodes in authored order.
func (g *Graph) EndNodes() []Node {
	return g.NodesOfType(TypeEnd)
}

// Outgoing returns the edges whose source is the given node, in authored
// order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for i := range g.Edges {
		if g.Edges[i].Source == id {
			out = append(out, g.Edges[i])
		}
	}
	return out
}

// Incoming returns the edges whose target is the given node, in authored
// order.
func (g *Graph) Incoming(id string) []Edge {
	var out []Edge
	for i := range g.Edges {
		if g.Edges[i].Target == id {
			out = append(out, g.Edges[i])
		}
	}
	return out
}

// Adjacency builds the forward adjacency list of the graph. Every node id
// appears as a key, even when it has no outgoing edges. Edges referencing
// unknown node ids are included as-is; structural validation flags them.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for i := range g.Nodes {
		adj[g.Nodes[i].ID] = nil
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// ReverseAdjacency builds the backward adjacency list (target -> sources).
func (g *Graph) ReverseAdjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for i := range g.Nodes {
		adj[g.Nodes[i].ID] = nil
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	return adj
}
