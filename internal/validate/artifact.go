package validate

import (
	"strings"

	"github.com/quiltflow/quilt/internal/graph"
)

// ArtifactMapping checks each node's input_mappings. A mapping value names
// an upstream node, optionally with an output field: "node_id" or
// "node_id.field". Empty keys or values and references to unknown nodes are
// errors. A referenced node that exists but is not an ancestor of the
// consuming node is a warning: the mapping can still resolve at run time
// when the producer executes on another path, but it usually indicates a
// wiring mistake.
func ArtifactMapping(g *graph.Graph, _ *Context) []Diagnostic {
	var diags []Diagnostic
	var ancestors map[string]map[string]bool

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if len(n.InputMappings) == 0 {
			continue
		}

		for key, value := range n.InputMappings {
			if key == "" || value == "" {
				diags = append(diags, nodeError(n.ID, CodeMappingEmpty,
					"input mapping must have a non-empty key and value"))
				continue
			}

			sourceID := value
			if dot := strings.Index(value, "."); dot >= 0 {
				sourceID = value[:dot]
			}
			if sourceID == "" || !g.HasNode(sourceID) {
				diags = append(diags, nodeError(n.ID, CodeMappingUnknown,
					"input mapping %q references unknown node %q", key, sourceID))
				continue
			}

			if ancestors == nil {
				ancestors = ancestorSets(g)
			}
			if sourceID != n.ID && !ancestors[n.ID][sourceID] {
				diags = append(diags, nodeWarning(n.ID, CodeMappingNotUpstream,
					"input mapping %q references node %q which is not upstream", key, sourceID))
			}
		}
	}

	return diags
}

// ancestorSets computes, per node, the set of nodes with a forward path to
// it. BFS over the reverse adjacency per node; graphs are small enough that
// the quadratic bound does not matter.
func ancestorSets(g *graph.Graph) map[string]map[string]bool {
	rev := g.ReverseAdjacency()
	sets := make(map[string]map[string]bool, len(g.Nodes))

	for i := range g.Nodes {
		id := g.Nodes[i].ID
		seen := map[string]bool{}
		queue := []string{id}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, prev := range rev[cur] {
				if !seen[prev] {
					seen[prev] = true
					queue = append(queue, prev)
				}
			}
		}
		sets[id] = seen
	}
	return sets
}
