package compiler

import (
	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/ir"
	"github.com/quiltflow/quilt/internal/routing"
)

// lower builds the GraphIR from a validated graph. The IR is fully
// self-describing: node types are canonical, editor-only fields are dropped,
// and routing decisions are precomputed so the engine never re-derives them.
//
// inputParams is the resumption payload, if any. With no payload every
// human-in-the-loop node is an interrupt point; with a payload a node
// interrupts only while its expected key is still absent.
func lower(g *graph.Graph, inputParams map[string]any) *ir.GraphIR {
	out := &ir.GraphIR{
		SchemaVersion:   ir.SchemaVersion,
		Nodes:           make([]ir.IRNode, 0, len(g.Nodes)),
		Edges:           make([]ir.IREdge, 0, len(g.Edges)),
		ExitNodes:       []string{},
		RoutingMaps:     map[string]ir.RoutingMap{},
		InterruptBefore: []string{},
		Metadata:        map[string]any{},
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		out.Nodes = append(out.Nodes, ir.IRNode{
			ID:            n.ID,
			Type:          string(n.CanonicalType()),
			Label:         n.Label,
			Config:        n.Config,
			Data:          n.Data,
			InputMappings: n.InputMappings,
		})

		if handles := routing.Handles(n); len(handles) > 0 {
			out.RoutingMaps[n.ID] = routingMap(g, n.ID, handles)
		}
		if interruptsBefore(n, inputParams) {
			out.InterruptBefore = append(out.InterruptBefore, n.ID)
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		out.Edges = append(out.Edges, ir.IREdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			Type:         string(e.CanonicalType()),
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Label:        e.Label,
			Condition:    e.Condition,
		})
	}

	if starts := g.StartNodes(); len(starts) == 1 {
		out.EntryPoint = starts[0].ID
	}
	for _, end := range g.EndNodes() {
		out.ExitNodes = append(out.ExitNodes, end.ID)
	}

	return out
}

// routingMap precomputes the branch table of one routing-capable node.
func routingMap(g *graph.Graph, nodeID string, handles []string) ir.RoutingMap {
	edges := map[string]string{}
	for _, e := range g.Outgoing(nodeID) {
		if e.SourceHandle != "" {
			edges[e.SourceHandle] = e.Target
		}
	}
	return ir.RoutingMap{
		Handles:       handles,
		Edges:         edges,
		DefaultHandle: routing.DefaultHandle(handles),
	}
}

// interruptsBefore reports whether execution must pause before this node.
func interruptsBefore(n *graph.Node, inputParams map[string]any) bool {
	if !n.CanonicalType().IsInterrupt() {
		return false
	}
	if inputParams == nil {
		return true
	}
	switch n.CanonicalType() {
	case graph.TypeUserApproval:
		_, ok := inputParams["approval"]
		return !ok
	case graph.TypeHumanInput:
		_, hasInput := inputParams["input"]
		_, hasMessage := inputParams["message"]
		return !hasInput && !hasMessage
	}
	return true
}
