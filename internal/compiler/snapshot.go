package compiler

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/quiltflow/quilt/internal/graph"
	"github.com/quiltflow/quilt/internal/ir"
)

// CompiledSnapshot captures the exact source of a successful compile for
// caching and audit. It is created once per compile and never mutated.
type CompiledSnapshot struct {
	AgentID string          `json:"agent_id"`
	Version int             `json:"version"`
	DAG     json.RawMessage `json:"dag"`
	Config  map[string]any  `json:"config,omitempty"`
	// Hash is the domain-separated SHA-256 of the canonical graph form.
	Hash string `json:"hash"`
}

// buildSnapshot canonicalizes the source graph and hashes it. The canonical
// form sorts nodes and edges by id, so two graphs differing only in
// authoring order hash identically; any change to node config, wiring, or
// spec_version changes the hash.
func buildSnapshot(g *graph.Graph, agentID string, version int, cfg map[string]any) (*CompiledSnapshot, error) {
	canonical, err := canonicalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing graph: %w", err)
	}
	return &CompiledSnapshot{
		AgentID: agentID,
		Version: version,
		DAG:     canonical,
		Config:  cfg,
		Hash:    ir.HashWithDomain(ir.DomainGraph, canonical),
	}, nil
}

// canonicalGraph produces the canonical JSON form of a graph. The graph is
// round-tripped through encoding/json so the canonical encoder sees only
// JSON-native value types.
func canonicalGraph(g *graph.Graph) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	sortByID(doc, "nodes")
	sortByID(doc, "edges")
	return ir.MarshalCanonical(doc)
}

// sortByID orders a list of objects under the given key by their "id" field.
func sortByID(doc map[string]any, key string) {
	list, ok := doc[key].([]any)
	if !ok {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		return objectID(list[i]) < objectID(list[j])
	})
}

func objectID(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := obj["id"].(string)
	return id
}
