package validate

import (
	"sort"
	"strings"

	"github.com/quiltflow/quilt/internal/graph"
)

// ambientFields are always available at run time: the runtime populates them
// before any node executes, so no upstream producer is required.
var ambientFields = map[string]bool{
	"memory":          true,
	"message_history": true,
}

// DataFlow cross-checks declared reads against the union of all declared
// writes in the graph. A node reading a field nothing writes is a data-flow
// risk, not a structural defect, so the finding is a warning.
func DataFlow(g *graph.Graph, ctx *Context) []Diagnostic {
	allWrites := make(map[string]bool)
	for i := range g.Nodes {
		if spec := ctx.Registry.Get(g.Nodes[i].CanonicalType()); spec != nil {
			for _, w := range spec.Writes {
				allWrites[w] = true
			}
		}
	}

	var diags []Diagnostic
	for i := range g.Nodes {
		n := &g.Nodes[i]
		spec := ctx.Registry.Get(n.CanonicalType())
		if spec == nil {
			continue
		}

		var missing []string
		for _, r := range spec.Reads {
			if !allWrites[r] && !ambientFields[r] {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			diags = append(diags, nodeWarning(n.ID, CodeMissingProducer,
				"node reads fields with no upstream producer: %s", strings.Join(missing, ", ")))
		}
	}

	return diags
}
