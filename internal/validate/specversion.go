package validate

import (
	"github.com/quiltflow/quilt/internal/graph"
)

// OrchestrationSpecVersion is the DSL version that unlocks orchestration
// primitives.
const OrchestrationSpecVersion = "2.0"

// SpecVersion checks the graph's DSL version tag against the supported set
// and gates orchestration-v2 node types on both the version tag and the
// tenant's feature flag.
func SpecVersion(g *graph.Graph, ctx *Context) []Diagnostic {
	var diags []Diagnostic

	if g.SpecVersion != "" && !ctx.supportsVersion(g.SpecVersion) {
		diags = append(diags, graphError(CodeUnsupportedVersion,
			"unsupported spec_version %q", g.SpecVersion))
	}

	var orchestration []string
	for i := range g.Nodes {
		if g.Nodes[i].CanonicalType().IsOrchestration() {
			orchestration = append(orchestration, g.Nodes[i].ID)
		}
	}
	if len(orchestration) == 0 {
		return diags
	}

	if g.EffectiveSpecVersion() != OrchestrationSpecVersion {
		diags = append(diags, graphError(CodeOrchestrationVersion,
			"orchestration node types require spec_version %q, graph declares %q",
			OrchestrationSpecVersion, g.EffectiveSpecVersion()))
	}
	if !ctx.OrchestrationEnabled {
		diags = append(diags, graphError(CodeOrchestrationDisabled,
			"orchestration nodes present but the orchestration feature is not enabled for this tenant"))
	}

	return diags
}
