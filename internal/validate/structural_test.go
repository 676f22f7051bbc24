package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/registry"
)

// testContext builds a pass context backed by the embedded operator catalog.
func testContext(t *testing.T) *Context {
	t.Helper()
	reg, err := registry.Load()
	require.NoError(t, err)
	return &Context{Registry: reg}
}

// codesOf extracts diagnostic codes in order.
func codesOf(diags []Diagnostic) []string {
	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

// withCode filters diagnostics by code.
func withCode(diags []Diagnostic, code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func linearGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "s", Type: "start"},
			{ID: "m", Type: "llm", Config: map[string]any{"model": "gpt-4o"}},
			{ID: "e", Type: "end"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "s", Target: "m"},
			{ID: "e2", Source: "m", Target: "e"},
		},
	}
}

func TestStructuralValidLinearGraph(t *testing.T) {
	diags := Structural(linearGraph(), testContext(t))
	assert.Empty(t, diags)
}

func TestStructuralNoStartNode(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "e", Type: "end"}},
	}
	diags := withCode(Structural(g, testContext(t)), CodeStartCount)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "found 0")
}

func TestStructuralTwoStartNodes(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "s1", Type: "start"},
			{ID: "s2", Type: "input"},
			{ID: "e", Type: "end"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "s1", Target: "e"},
			{ID: "e2", Source: "s2", Target: "e"},
		},
	}
	diags := withCode(Structural(g, testContext(t)), CodeStartCount)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "found 2")
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestStructuralNoEndNode(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "s", Type: "start"}},
	}
	diags := Structural(g, testContext(t))
	assert.Contains(t, codesOf(diags), CodeNoEnd)
}

func TestStructuralDuplicateNodeID(t *testing.T) {
	g := linearGraph()
	g.Nodes = append(g.Nodes, graph.Node{ID: "m", Type: "llm"})
	diags := withCode(Structural(g, testContext(t)), CodeDuplicateID)
	require.Len(t, diags, 1)
	assert.Equal(t, "m", diags[0].NodeID)
}

func TestStructuralDanglingEdge(t *testing.T) {
	g := linearGraph()
	g.Edges = append(g.Edges, graph.Edge{ID: "bad", Source: "m", Target: "ghost"})
	diags := withCode(Structural(g, testContext(t)), CodeDanglingEdge)
	require.Len(t, diags, 1)
	assert.Equal(t, "bad", diags[0].EdgeID)
	assert.Contains(t, diags[0].Message, "ghost")
}

func TestStructuralUnreachableNode(t *testing.T) {
	g := linearGraph()
	g.Nodes = append(g.Nodes, graph.Node{ID: "island", Type: "llm", Config: map[string]any{"model": "gpt-4o"}})
	diags := withCode(Structural(g, testContext(t)), CodeUnreachable)
	require.Len(t, diags, 1)
	assert.Equal(t, "island", diags[0].NodeID)
}

func TestStructuralReachabilitySkippedWithoutUniqueStart(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Type: "llm", Config: map[string]any{"model": "gpt-4o"}},
			{ID: "e", Type: "end"},
		},
		Edges: []graph.Edge{{ID: "e1", Source: "a", Target: "e"}},
	}
	diags := Structural(g, testContext(t))
	assert.Empty(t, withCode(diags, CodeUnreachable))
	assert.Len(t, withCode(diags, CodeStartCount), 1)
}
