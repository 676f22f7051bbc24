package compiler

import (
	"context"

	"github.com/quiltflow/quilt/internal/graph"
)

// ToolResolver resolves a tool id to a concrete implementation. Compile
// only needs existence; the returned descriptor is opaque to the compiler.
type ToolResolver interface {
	ResolveTool(ctx context.Context, id string) (any, error)
}

// PipelineResolver resolves a retrieval pipeline id.
type PipelineResolver interface {
	ResolvePipeline(ctx context.Context, id string) (any, error)
}

// AgentResolver resolves a sub-agent id for agent-call nodes.
type AgentResolver interface {
	ResolveAgent(ctx context.Context, id string) (any, error)
}

// externalRef is one external dependency reference found in node config.
type externalRef struct {
	nodeID string
	kind   string
	ref    string
}

// collectRefs extracts the external references the graph depends on: tool
// nodes name a tool_id, rag nodes a pipeline_id, agent nodes an agent_id.
// Missing ids are not reported here; the configuration pass owns schema
// completeness.
func collectRefs(g *graph.Graph) []externalRef {
	var refs []externalRef
	for i := range g.Nodes {
		n := &g.Nodes[i]
		switch n.CanonicalType() {
		case graph.TypeTool:
			if id, _ := n.Config["tool_id"].(string); id != "" {
				refs = append(refs, externalRef{nodeID: n.ID, kind: "tool", ref: id})
			}
		case graph.TypeRAG:
			if id, _ := n.Config["pipeline_id"].(string); id != "" {
				refs = append(refs, externalRef{nodeID: n.ID, kind: "pipeline", ref: id})
			}
		case graph.TypeAgent:
			if id, _ := n.Config["agent_id"].(string); id != "" {
				refs = append(refs, externalRef{nodeID: n.ID, kind: "agent", ref: id})
			}
		}
	}
	return refs
}

// resolveRefs resolves every external reference, stopping at the first
// failure. A nil resolver skips its reference kind: the deployment does not
// use that dependency class and resolution is deferred to the runtime.
func (c *Compiler) resolveRefs(ctx context.Context, refs []externalRef) error {
	for _, r := range refs {
		var err error
		switch r.kind {
		case "tool":
			if c.tools == nil {
				continue
			}
			_, err = c.tools.ResolveTool(ctx, r.ref)
		case "pipeline":
			if c.pipelines == nil {
				continue
			}
			_, err = c.pipelines.ResolvePipeline(ctx, r.ref)
		case "agent":
			if c.agents == nil {
				continue
			}
			_, err = c.agents.ResolveAgent(ctx, r.ref)
		}
		if err != nil {
			return &ResolutionError{NodeID: r.nodeID, Kind: r.kind, Ref: r.ref, Err: err}
		}
	}
	return nil
}
