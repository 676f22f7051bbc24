package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "s", Type: "input"},
			{ID: "a", Type: "llm_call", Config: map[string]any{"model": "gpt-4o"}},
			{ID: "b", Type: "tool_call"},
			{ID: "e", Type: "output"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "s", Target: "a"},
			{ID: "e2", Source: "a", Target: "b"},
			{ID: "e3", Source: "b", Target: "e"},
		},
	}
}

func TestCanonicalTypeResolvesAliases(t *testing.T) {
	g := testGraph()
	n, ok := g.Node("s")
	require.True(t, ok)
	assert.Equal(t, NodeType("input"), n.Type)
	assert.Equal(t, TypeStart, n.CanonicalType())
}

func TestEdgeCanonicalTypeDefaultsToControl(t *testing.T) {
	e := Edge{ID: "e1", Source: "a", Target: "b"}
	assert.Equal(t, EdgeControl, e.CanonicalType())

	e.Type = EdgeData
	assert.Equal(t, EdgeData, e.CanonicalType())
}

func TestEffectiveSpecVersion(t *testing.T) {
	g := &Graph{}
	assert.Equal(t, "1.0", g.EffectiveSpecVersion())

	g.SpecVersion = "2.0"
	assert.Equal(t, "2.0", g.EffectiveSpecVersion())
}

func TestNodeLookup(t *testing.T) {
	g := testGraph()
	_, ok := g.Node("nope")
	assert.False(t, ok)
	assert.True(t, g.HasNode("a"))
	assert.False(t, g.HasNode("nope"))
}

func TestStartAndEndNodes(t *testing.T) {
	g := testGraph()
	starts := g.StartNodes()
	require.Len(t, starts, 1)
	assert.Equal(t, "s", starts[0].ID)

	ends := g.EndNodes()
	require.Len(t, ends, 1)
	assert.Equal(t, "e", ends[0].ID)
}

func TestOutgoingIncoming(t *testing.T) {
	g := testGraph()
	out := g.Outgoing("a")
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Target)

	in := g.Incoming("a")
	require.Len(t, in, 1)
	assert.Equal(t, "s", in[0].Source)

	assert.Empty(t, g.Outgoing("e"))
	assert.Empty(t, g.Incoming("s"))
}

func TestAdjacencyIncludesIsolatedNodes(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "b"}},
	}
	adj := g.Adjacency()
	assert.Equal(t, []string{"b"}, adj["a"])
	assert.Contains(t, adj, "b")
	assert.Empty(t, adj["b"])

	rev := g.ReverseAdjacency()
	assert.Equal(t, []string{"a"}, rev["b"])
	assert.Empty(t, rev["a"])
}
