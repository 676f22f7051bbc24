package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/ir"
)

func TestLowerDropsEditorFields(t *testing.T) {
	g := linearGraph()
	g.Nodes[1].Position = graph.Position{X: 120, Y: 340}
	g.Nodes[1].Label = "Draft reply"

	out := lower(g, nil)
	require.Len(t, out.Nodes, 3)
	assert.Equal(t, "Draft reply", out.Nodes[1].Label)
	assert.Equal(t, ir.SchemaVersion, out.SchemaVersion)
}

func TestLowerEntryAndExitNodes(t *testing.T) {
	out := lower(linearGraph(), nil)
	assert.Equal(t, "s", out.EntryPoint)
	assert.Equal(t, []string{"e"}, out.ExitNodes)
}

func TestLowerNoEntryPointWithoutUniqueStart(t *testing.T) {
	g := linearGraph()
	g.Nodes = append(g.Nodes, graph.Node{ID: "s2", Type: "input"})
	out := lower(g, nil)
	assert.Empty(t, out.EntryPoint)
}

func TestLowerHumanInputInterruptKeys(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "s", Type: "start"},
			{ID: "hi", Type: "human_input"},
			{ID: "e", Type: "end"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "s", Target: "hi"},
			{ID: "e2", Source: "hi", Target: "e"},
		},
	}

	assert.Equal(t, []string{"hi"}, lower(g, nil).InterruptBefore)

	// Either expected key satisfies the resumption contract.
	assert.Empty(t, lower(g, map[string]any{"input": "hello"}).InterruptBefore)
	assert.Empty(t, lower(g, map[string]any{"message": "hello"}).InterruptBefore)
	assert.Equal(t, []string{"hi"}, lower(g, map[string]any{"other": 1}).InterruptBefore)
}

func TestLowerRoutingMapIncludesDefaultHandle(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "r", Type: "router", Config: map[string]any{"routes": []any{"a"}}},
			{ID: "ta", Type: "end"},
			{ID: "td", Type: "end"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "r", Target: "ta", SourceHandle: "a"},
			{ID: "e2", Source: "r", Target: "td", SourceHandle: "default"},
		},
	}
	out := lower(g, nil)
	rm, ok := out.RoutingMaps["r"]
	require.True(t, ok)
	assert.Equal(t, []string{"a", "default"}, rm.Handles)
	assert.Equal(t, "default", rm.DefaultHandle)
	assert.Equal(t, map[string]string{"a": "ta", "default": "td"}, rm.Edges)
}

func TestLowerEmptyCollectionsNotNil(t *testing.T) {
	out := lower(linearGraph(), nil)
	assert.NotNil(t, out.RoutingMaps)
	assert.NotNil(t, out.InterruptBefore)
	assert.NotNil(t, out.ExitNodes)
	assert.NotNil(t, out.Metadata)
}
