package validate

import (
	"github.com/quiltflow/quilt/internal/graph"
)

// Structural checks the shape of the graph: unique node ids, edge endpoints
// that exist, exactly one start node, at least one end node, and full
// reachability from the start.
//
// Reachability is skipped when the start count is not exactly one: it cannot
// be well-defined without a unique root.
func Structural(g *graph.Graph, _ *Context) []Diagnostic {
	var diags []Diagnostic

	seen := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		id := g.Nodes[i].ID
		if seen[id] {
			diags = append(diags, nodeError(id, CodeDuplicateID, "duplicate node id %q", id))
			continue
		}
		seen[id] = true
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if !seen[e.Source] {
			diags = append(diags, edgeError(e.ID, CodeDanglingEdge, "edge source %q does not exist", e.Source))
		}
		if !seen[e.Target] {
			diags = append(diags, edgeError(e.ID, CodeDanglingEdge, "edge target %q does not exist", e.Target))
		}
	}

	starts := g.StartNodes()
	if len(starts) != 1 {
		diags = append(diags, graphError(CodeStartCount,
			"graph must have exactly one Start node, found %d", len(starts)))
	}
	if len(g.EndNodes()) == 0 {
		diags = append(diags, graphError(CodeNoEnd, "graph must have at least one End node"))
	}

	if len(starts) != 1 {
		return diags
	}

	// BFS over forward adjacency from the unique start.
	adj := g.Adjacency()
	visited := map[string]bool{starts[0].ID: true}
	queue := []string{starts[0].ID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	for i := range g.Nodes {
		if !visited[g.Nodes[i].ID] {
			diags = append(diags, nodeError(g.Nodes[i].ID, CodeUnreachable,
				"node %q is unreachable from Start", g.Nodes[i].ID))
		}
	}

	return diags
}
