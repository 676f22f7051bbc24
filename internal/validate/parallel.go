package validate

import (
	"sort"
	"strings"

	"github.com/quiltflow/quilt/internal/graph"
)

// ParallelSafety detects write conflicts between the branches of a parallel
// node. Only the immediate branch targets are inspected, not the full
// subgraph up to the join point. Conflicts in deeper branch nodes are
// under-reported; tightening the analysis would change observable
// validation output. Analysis stops at the first conflicting pair per
// parallel node.
func ParallelSafety(g *graph.Graph, ctx *Context) []Diagnostic {
	var diags []Diagnostic

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.CanonicalType() != graph.TypeParallel {
			continue
		}
		branches := g.Outgoing(n.ID)
		if len(branches) < 2 {
			continue
		}

		writeSets := make([]map[string]bool, len(branches))
		for j, e := range branches {
			writeSets[j] = map[string]bool{}
			target, ok := g.Node(e.Target)
			if !ok {
				continue
			}
			if spec := ctx.Registry.Get(target.CanonicalType()); spec != nil {
				for _, w := range spec.Writes {
					writeSets[j][w] = true
				}
			}
		}

		if conflict := firstConflict(writeSets); len(conflict) > 0 {
			sort.Strings(conflict)
			diags = append(diags, nodeWarning(n.ID, CodeParallelConflict,
				"parallel branches write to shared fields: %s", strings.Join(conflict, ", ")))
		}
	}

	return diags
}

// firstConflict returns the intersection of the first pair of write sets
// that overlap, or nil.
func firstConflict(sets []map[string]bool) []string {
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			var shared []string
			for field := range sets[i] {
				if sets[j][field] {
					shared = append(shared, field)
				}
			}
			if len(shared) > 0 {
				return shared
			}
		}
	}
	return nil
}
