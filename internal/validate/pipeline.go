package validate

import (
	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/policy"
	"github.com/quiltflow/quilt/internal/registry"
)

// Context carries the read-only inputs the passes evaluate against. All
// fields are snapshots fetched before the pipeline runs; no pass performs
// I/O.
type Context struct {
	Registry registry.Registry

	// SupportedVersions is the accepted spec_version set.
	SupportedVersions []string

	// OrchestrationEnabled is the tenant's orchestration-v2 feature flag.
	OrchestrationEnabled bool

	// Policy is the pre-fetched orchestration policy bundle. nil means the
	// compile runs without tenant context; defaults apply and target
	// eligibility degrades to a warning.
	Policy *policy.Inputs
}

// policyInputs returns the policy bundle, falling back to defaults.
func (c *Context) policyInputs() *policy.Inputs {
	if c.Policy != nil {
		return c.Policy
	}
	return policy.DefaultInputs()
}

// supportsVersion reports whether v is an accepted spec_version tag.
func (c *Context) supportsVersion(v string) bool {
	versions := c.SupportedVersions
	if len(versions) == 0 {
		versions = []string{"1.0", "2.0"}
	}
	for _, s := range versions {
		if s == v {
			return true
		}
	}
	return false
}

// Pass is one validation pass: a pure function of the graph and context.
type Pass struct {
	Name string
	Run  func(g *graph.Graph, ctx *Context) []Diagnostic
}

// Passes returns the full pipeline in its canonical order. Each pass is
// independent; order only affects diagnostic grouping in the output.
func Passes() []Pass {
	return []Pass{
		{Name: "structural", Run: Structural},
		{Name: "configuration", Run: Configuration},
		{Name: "data-flow", Run: DataFlow},
		{Name: "parallel-safety", Run: ParallelSafety},
		{Name: "spec-version", Run: SpecVersion},
		{Name: "routing", Run: Routing},
		{Name: "artifact-mapping", Run: ArtifactMapping},
		{Name: "orchestration-policy", Run: OrchestrationPolicy},
	}
}

// Run executes every pass and concatenates the diagnostics. Passes run to
// completion even when earlier passes report errors, so the caller sees all
// findings in one round-trip.
func Run(g *graph.Graph, ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, pass := range Passes() {
		diags = append(diags, pass.Run(g, ctx)...)
	}
	return diags
}
