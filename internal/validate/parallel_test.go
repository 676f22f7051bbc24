package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltflow/quilt/internal/graph"
)

func parallelGraph(branchTypes ...graph.NodeType) *graph.Graph {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "p", Type: "parallel"}},
	}
	for i, bt := range branchTypes {
		id := string(rune('a' + i))
		g.Nodes = append(g.Nodes, graph.Node{ID: id, Type: bt})
		g.Edges = append(g.Edges, graph.Edge{ID: "e" + id, Source: "p", Target: id})
	}
	return g
}

func TestParallelSafetyConflictingBranches(t *testing.T) {
	// Two llm branches both write llm_response.
	g := parallelGraph(graph.TypeLLM, graph.TypeLLM)
	diags := ParallelSafety(g, testContext(t))
	require.Len(t, diags, 1)
	assert.Equal(t, CodeParallelConflict, diags[0].Code)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "p", diags[0].NodeID)
	assert.Contains(t, diags[0].Message, "llm_response")
}

func TestParallelSafetyDisjointBranches(t *testing.T) {
	g := parallelGraph(graph.TypeLLM, graph.TypeTool, graph.TypeRAG)
	assert.Empty(t, ParallelSafety(g, testContext(t)))
}

func TestParallelSafetySingleBranchIgnored(t *testing.T) {
	g := parallelGraph(graph.TypeLLM)
	assert.Empty(t, ParallelSafety(g, testContext(t)))
}

func TestParallelSafetyStopsAtFirstConflict(t *testing.T) {
	// Three conflicting llm branches still produce one warning.
	g := parallelGraph(graph.TypeLLM, graph.TypeLLM, graph.TypeLLM)
	diags := ParallelSafety(g, testContext(t))
	assert.Len(t, diags, 1)
}

func TestParallelSafetyNonParallelNodesIgnored(t *testing.T) {
	assert.Empty(t, ParallelSafety(linearGraph(), testContext(t)))
}
