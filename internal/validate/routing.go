package validate

import (
	"strings"

	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/routing"
)

// Routing checks every branching node against its computed handle set:
// outgoing edges must carry a source_handle, the handle must be a member of
// the set, no handle is used twice, and every computed handle is covered by
// an edge. Uncovered handles are reported as one error per node listing
// them all.
func Routing(g *graph.Graph, _ *Context) []Diagnostic {
	var diags []Diagnostic

	for i := range g.Nodes {
		n := &g.Nodes[i]
		handles := routing.Handles(n)
		if len(handles) == 0 {
			continue
		}

		valid := make(map[string]bool, len(handles))
		for _, h := range handles {
			valid[h] = true
		}

		covered := make(map[string]bool, len(handles))
		for _, e := range g.Outgoing(n.ID) {
			if e.SourceHandle == "" {
				diags = append(diags, edgeError(e.ID, CodeMissingHandle,
					"outgoing edge from branching node %q must carry a source_handle", n.ID))
				continue
			}
			if !valid[e.SourceHandle] {
				diags = append(diags, edgeError(e.ID, CodeInvalidHandle,
					"invalid branch handle %q on node %q, valid handles: %s",
					e.SourceHandle, n.ID, strings.Join(handles, ", ")))
				continue
			}
			if covered[e.SourceHandle] {
				diags = append(diags, edgeError(e.ID, CodeDuplicateHandle,
					"branch handle %q on node %q is used by more than one edge",
					e.SourceHandle, n.ID))
				continue
			}
			covered[e.SourceHandle] = true
		}

		var missing []string
		for _, h := range handles {
			if !covered[h] {
				missing = append(missing, h)
			}
		}
		if len(missing) > 0 {
			diags = append(diags, nodeError(n.ID, CodeUncoveredHandle,
				"missing branch edges for handles: %s", strings.Join(missing, ", ")))
		}
	}

	return diags
}
